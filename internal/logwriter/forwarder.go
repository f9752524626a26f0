// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logwriter

import (
	"log/slog"

	"github.com/olegiv/posaudit-go/internal/model"
)

// criticalActivities is the fixed allowlist of activity kinds that must also
// appear in the audit trail.
var criticalActivities = map[model.ActivityType]struct{}{
	model.ActivityUserLogin:           {},
	model.ActivityUserLogout:          {},
	model.ActivitySaleCompleted:       {},
	model.ActivitySaleRefunded:        {},
	model.ActivitySaleCancelled:       {},
	model.ActivityInventoryAdjustment: {},
	model.ActivityShiftStarted:        {},
	model.ActivityShiftEnded:          {},
	model.ActivityErrorOccurred:       {},
	model.ActivityPaymentFailed:       {},
}

// activityAuditActions maps activity kinds to audit actions. The mapping is
// deliberately partial: critical kinds without an entry (shift start/end) are
// dropped silently, producing no audit record.
var activityAuditActions = map[model.ActivityType]model.AuditAction{
	model.ActivityUserLogin:           model.AuditLogin,
	model.ActivityUserLogout:          model.AuditLogout,
	model.ActivitySaleCompleted:       model.AuditSaleCreate,
	model.ActivitySaleRefunded:        model.AuditPaymentRefund,
	model.ActivitySaleCancelled:       model.AuditSaleVoid,
	model.ActivityInventoryAdjustment: model.AuditInventoryAdjustment,
	model.ActivityErrorOccurred:       model.AuditSuspiciousActivity,
	model.ActivityPaymentFailed:       model.AuditPaymentRefund,
}

// CriticalActivity reports whether an activity kind belongs to the audit-trail
// allowlist.
func CriticalActivity(kind model.ActivityType) bool {
	_, ok := criticalActivities[kind]
	return ok
}

// AuditActionFor returns the audit action an activity kind forwards to, if any.
func AuditActionFor(kind model.ActivityType) (model.AuditAction, bool) {
	action, ok := activityAuditActions[kind]
	return action, ok
}

// AuditSubmitter accepts audit entries for buffered delivery.
type AuditSubmitter interface {
	Submit(entry model.AuditLog)
}

// Forwarder copies select activity events into the audit log so compliance
// needs are met without duplicating call-site logic.
type Forwarder struct {
	audit  AuditSubmitter
	logger *slog.Logger
}

// NewForwarder creates a forwarder that submits through the given audit writer.
func NewForwarder(audit AuditSubmitter, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{audit: audit, logger: logger}
}

// Forward maps an activity event to an audit entry and submits it. Kinds
// outside the critical allowlist, and critical kinds without an audit action
// mapping, produce no audit record.
func (f *Forwarder) Forward(activity model.ActivityLog) {
	if !CriticalActivity(activity.ActivityType) {
		return
	}

	action, ok := AuditActionFor(activity.ActivityType)
	if !ok {
		f.logger.Debug("no audit mapping for activity kind, skipping",
			"activity_type", activity.ActivityType)
		return
	}

	f.audit.Submit(model.AuditLog{
		CompanyID:   activity.CompanyID,
		UserID:      activity.UserID,
		Action:      action,
		Severity:    ClassifyAudit(action, ""),
		Description: activity.Description,
		Metadata:    activity.Metadata,
		IPAddress:   activity.IPAddress,
		UserAgent:   activity.UserAgent,
	})
}
