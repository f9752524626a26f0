// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		severity Severity
		rank     int
	}{
		{SeverityLow, 0},
		{SeverityMedium, 1},
		{SeverityHigh, 2},
		{SeverityCritical, 3},
		{Severity("bogus"), 0},
		{Severity(""), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			if got := tt.severity.Rank(); got != tt.rank {
				t.Errorf("Rank() = %d, want %d", got, tt.rank)
			}
		})
	}

	if Severity(SeverityCritical).Rank() <= Severity(SeverityHigh).Rank() {
		t.Error("critical should rank above high")
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if !s.Valid() {
			t.Errorf("Valid() = false for %q", s)
		}
	}
	if Severity("warning").Valid() {
		t.Error("Valid() = true for unknown severity")
	}
}

func TestSeverityOrDefault(t *testing.T) {
	if got := Severity("").OrDefault(); got != SeverityLow {
		t.Errorf("OrDefault() on empty = %q, want %q", got, SeverityLow)
	}
	if got := Severity(SeverityHigh).OrDefault(); got != SeverityHigh {
		t.Errorf("OrDefault() = %q, want %q", got, SeverityHigh)
	}
}
