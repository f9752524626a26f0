// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logwriter

import (
	"testing"

	"github.com/olegiv/posaudit-go/internal/model"
)

func TestClassifyAudit(t *testing.T) {
	tests := []struct {
		name   string
		action model.AuditAction
		table  string
		want   model.Severity
	}{
		{"failed login overrides table tier", model.AuditFailedLogin, "users", model.SeverityMedium},
		{"sale void is high", model.AuditSaleVoid, "", model.SeverityHigh},
		{"sale return is high", model.AuditSaleReturn, "sales", model.SeverityHigh},
		{"payment refund is high", model.AuditPaymentRefund, "", model.SeverityHigh},
		{"suspicious activity is high", model.AuditSuspiciousActivity, "", model.SeverityHigh},
		{"sale create is medium", model.AuditSaleCreate, "", model.SeverityMedium},
		{"payment process is medium", model.AuditPaymentProcess, "", model.SeverityMedium},
		{"inventory adjustment is medium", model.AuditInventoryAdjustment, "", model.SeverityMedium},
		{"login is low", model.AuditLogin, "", model.SeverityLow},
		{"logout is low", model.AuditLogout, "", model.SeverityLow},
		{"critical table infers high", model.AuditUserDelete, "users", model.SeverityHigh},
		{"companies table infers high", model.AuditSystemConfigChange, "companies", model.SeverityHigh},
		{"sensitive table infers medium", model.AuditCustomerUpdate, "customers", model.SeverityMedium},
		{"payments table infers medium", model.AuditDataAccess, "payments", model.SeverityMedium},
		{"unknown table defaults low", model.AuditDataExport, "reports", model.SeverityLow},
		{"no table defaults low", model.AuditBackupCreate, "", model.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAudit(tt.action, tt.table); got != tt.want {
				t.Errorf("ClassifyAudit(%q, %q) = %q, want %q", tt.action, tt.table, got, tt.want)
			}
		})
	}
}

// Classification must be deterministic: the same input always yields the same
// severity.
func TestClassifyIdempotent(t *testing.T) {
	actions := []model.AuditAction{
		model.AuditLogin, model.AuditFailedLogin, model.AuditSaleVoid,
		model.AuditUserDelete, model.AuditDataExport,
	}
	for _, action := range actions {
		first := ClassifyAudit(action, "users")
		second := ClassifyAudit(action, "users")
		if first != second {
			t.Errorf("ClassifyAudit(%q) not deterministic: %q != %q", action, first, second)
		}
	}

	kinds := []model.ActivityType{
		model.ActivityUserLogin, model.ActivityErrorOccurred, model.ActivityCartCleared,
	}
	for _, kind := range kinds {
		first := ClassifyActivity(kind)
		second := ClassifyActivity(kind)
		if first != second {
			t.Errorf("ClassifyActivity(%q) not deterministic: %q != %q", kind, first, second)
		}
	}
}

func TestClassifyActivity(t *testing.T) {
	highKinds := []model.ActivityType{
		model.ActivityErrorOccurred,
		model.ActivityPaymentFailed,
		model.ActivityHardwareError,
		model.ActivitySaleRefunded,
		model.ActivitySaleCancelled,
	}
	for _, kind := range highKinds {
		if got := ClassifyActivity(kind); got != model.SeverityHigh {
			t.Errorf("ClassifyActivity(%q) = %q, want %q", kind, got, model.SeverityHigh)
		}
	}

	lowKinds := []model.ActivityType{
		model.ActivityUserLogin,
		model.ActivitySaleCompleted,
		model.ActivityCartCleared,
		model.ActivityShiftStarted,
		model.ActivityType("UNKNOWN_KIND"),
	}
	for _, kind := range lowKinds {
		if got := ClassifyActivity(kind); got != model.SeverityLow {
			t.Errorf("ClassifyActivity(%q) = %q, want %q", kind, got, model.SeverityLow)
		}
	}
}
