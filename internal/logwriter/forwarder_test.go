// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logwriter

import (
	"strings"
	"sync"
	"testing"

	"github.com/olegiv/posaudit-go/internal/model"
	"github.com/olegiv/posaudit-go/internal/testutil"
)

// recordingSubmitter captures forwarded audit entries.
type recordingSubmitter struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (s *recordingSubmitter) Submit(entry model.AuditLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func TestForwardNonCriticalDropped(t *testing.T) {
	sink := &recordingSubmitter{}
	f := NewForwarder(sink, testutil.TestLoggerSilent())

	f.Forward(model.ActivityLog{
		CompanyID:    "co-1",
		UserID:       "user-1",
		ActivityType: model.ActivityCartCleared,
		Description:  "Cart cleared",
	})

	if len(sink.entries) != 0 {
		t.Errorf("forwarded %d entries for non-critical kind, want 0", len(sink.entries))
	}
}

// Shift events are in the critical allowlist but have no audit action mapping;
// they must never produce an audit record.
func TestForwardUnmappedKindDropped(t *testing.T) {
	sink := &recordingSubmitter{}
	f := NewForwarder(sink, testutil.TestLoggerSilent())

	for _, kind := range []model.ActivityType{model.ActivityShiftStarted, model.ActivityShiftEnded} {
		f.Forward(model.ActivityLog{
			CompanyID:    "co-1",
			UserID:       "user-1",
			ActivityType: kind,
			Description:  "Shift started",
		})
	}

	if len(sink.entries) != 0 {
		t.Errorf("forwarded %d entries for unmapped kinds, want 0", len(sink.entries))
	}
}

func TestForwardSaleCompleted(t *testing.T) {
	sink := &recordingSubmitter{}
	f := NewForwarder(sink, testutil.TestLoggerSilent())

	f.Forward(model.ActivityLog{
		CompanyID:    "co-1",
		UserID:       "user-1",
		ActivityType: model.ActivitySaleCompleted,
		Description:  "Sale completed - $52.03",
		Metadata:     map[string]any{"sale_id": "sale-9", "amount": 52.03},
	})

	if len(sink.entries) != 1 {
		t.Fatalf("forwarded %d entries, want 1", len(sink.entries))
	}
	entry := sink.entries[0]
	if entry.Action != model.AuditSaleCreate {
		t.Errorf("action = %q, want %q", entry.Action, model.AuditSaleCreate)
	}
	if entry.Severity != model.SeverityMedium {
		t.Errorf("severity = %q, want %q", entry.Severity, model.SeverityMedium)
	}
	if !strings.Contains(entry.Description, "52.03") {
		t.Errorf("description %q does not contain the sale amount", entry.Description)
	}
	if entry.Metadata["sale_id"] != "sale-9" {
		t.Errorf("metadata not reused: %v", entry.Metadata)
	}
	if entry.CompanyID != "co-1" || entry.UserID != "user-1" {
		t.Errorf("scope not carried over: company=%q user=%q", entry.CompanyID, entry.UserID)
	}
}

func TestForwardMappings(t *testing.T) {
	tests := []struct {
		kind     model.ActivityType
		action   model.AuditAction
		severity model.Severity
	}{
		{model.ActivityUserLogin, model.AuditLogin, model.SeverityLow},
		{model.ActivityUserLogout, model.AuditLogout, model.SeverityLow},
		{model.ActivitySaleRefunded, model.AuditPaymentRefund, model.SeverityHigh},
		{model.ActivitySaleCancelled, model.AuditSaleVoid, model.SeverityHigh},
		{model.ActivityInventoryAdjustment, model.AuditInventoryAdjustment, model.SeverityMedium},
		{model.ActivityErrorOccurred, model.AuditSuspiciousActivity, model.SeverityHigh},
		{model.ActivityPaymentFailed, model.AuditPaymentRefund, model.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			sink := &recordingSubmitter{}
			f := NewForwarder(sink, testutil.TestLoggerSilent())

			f.Forward(model.ActivityLog{
				CompanyID:    "co-1",
				UserID:       "user-1",
				ActivityType: tt.kind,
				Description:  "event",
			})

			if len(sink.entries) != 1 {
				t.Fatalf("forwarded %d entries, want 1", len(sink.entries))
			}
			if sink.entries[0].Action != tt.action {
				t.Errorf("action = %q, want %q", sink.entries[0].Action, tt.action)
			}
			if sink.entries[0].Severity != tt.severity {
				t.Errorf("severity = %q, want %q", sink.entries[0].Severity, tt.severity)
			}
		})
	}
}
