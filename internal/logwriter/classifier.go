// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logwriter

import "github.com/olegiv/posaudit-go/internal/model"

// criticalTables are the entities whose mutations always warrant high severity.
var criticalTables = map[string]struct{}{
	"users":     {},
	"companies": {},
	"sales":     {},
}

// sensitiveTables are operationally sensitive entities warranting medium severity.
var sensitiveTables = map[string]struct{}{
	"inventory": {},
	"payments":  {},
	"customers": {},
}

// auditActionSeverities overrides table-tier inference for specific actions.
// This is the single severity rule for the audit pipeline: both direct audit
// call sites and the activity forwarder consult it, so the same action can
// never be classified two different ways.
var auditActionSeverities = map[model.AuditAction]model.Severity{
	model.AuditLogin:               model.SeverityLow,
	model.AuditLogout:              model.SeverityLow,
	model.AuditFailedLogin:         model.SeverityMedium,
	model.AuditSaleCreate:          model.SeverityMedium,
	model.AuditSaleUpdate:          model.SeverityMedium,
	model.AuditSaleVoid:            model.SeverityHigh,
	model.AuditSaleReturn:          model.SeverityHigh,
	model.AuditPaymentProcess:      model.SeverityMedium,
	model.AuditPaymentRefund:       model.SeverityHigh,
	model.AuditInventoryAdjustment: model.SeverityMedium,
	model.AuditSuspiciousActivity:  model.SeverityHigh,
}

// ClassifyAudit maps an audit action and the affected table to a severity.
// Action-specific overrides win; otherwise the table tier decides; anything
// unmapped defaults to low. Pure and total.
func ClassifyAudit(action model.AuditAction, tableName string) model.Severity {
	if severity, ok := auditActionSeverities[action]; ok {
		return severity
	}
	if _, ok := criticalTables[tableName]; ok {
		return model.SeverityHigh
	}
	if _, ok := sensitiveTables[tableName]; ok {
		return model.SeverityMedium
	}
	return model.SeverityLow
}

// highSeverityActivities is the fixed allowlist of activity kinds classified
// high; everything else is low. The activity pipeline's internal low/high
// split is expressed on the shared four-level scale.
var highSeverityActivities = map[model.ActivityType]struct{}{
	model.ActivityErrorOccurred: {},
	model.ActivityPaymentFailed: {},
	model.ActivityHardwareError: {},
	model.ActivitySaleRefunded:  {},
	model.ActivitySaleCancelled: {},
}

// ClassifyActivity maps an activity kind to a severity. Pure and total.
func ClassifyActivity(kind model.ActivityType) model.Severity {
	if _, ok := highSeverityActivities[kind]; ok {
		return model.SeverityHigh
	}
	return model.SeverityLow
}
