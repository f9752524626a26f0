// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the event taxonomy and record shapes shared by the
// activity and audit logging pipelines.
package model

// Severity tiers, ordered from least to most important.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Severity is one of the four tiers above. The zero value is treated as
// SeverityLow at persistence time.
type Severity string

// severityRanks orders severities for comparisons and reporting weight.
var severityRanks = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the numeric ordering of a severity. Unknown values rank
// alongside SeverityLow.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// Valid reports whether s is one of the four known tiers.
func (s Severity) Valid() bool {
	_, ok := severityRanks[s]
	return ok
}

// OrDefault returns s, or SeverityLow when s is empty.
func (s Severity) OrDefault() Severity {
	if s == "" {
		return SeverityLow
	}
	return s
}

// SystemUser is the actor recorded when no human actor exists, e.g. for
// background errors or scheduled maintenance.
const SystemUser = "system"
