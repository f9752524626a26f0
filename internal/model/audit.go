// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// AuditAction identifies the compliance-relevant action an audit entry records.
type AuditAction string

// Audit actions. The set is closed: call sites must use one of these.
const (
	// Authentication and authorization
	AuditLogin            AuditAction = "LOGIN"
	AuditLogout           AuditAction = "LOGOUT"
	AuditPasswordChange   AuditAction = "PASSWORD_CHANGE"
	AuditPermissionChange AuditAction = "PERMISSION_CHANGE"

	// User management
	AuditUserCreate     AuditAction = "USER_CREATE"
	AuditUserUpdate     AuditAction = "USER_UPDATE"
	AuditUserDelete     AuditAction = "USER_DELETE"
	AuditUserRoleChange AuditAction = "USER_ROLE_CHANGE"

	// Product management
	AuditProductCreate      AuditAction = "PRODUCT_CREATE"
	AuditProductUpdate      AuditAction = "PRODUCT_UPDATE"
	AuditProductDelete      AuditAction = "PRODUCT_DELETE"
	AuditProductPriceChange AuditAction = "PRODUCT_PRICE_CHANGE"

	// Inventory management
	AuditInventoryAdjustment AuditAction = "INVENTORY_ADJUSTMENT"
	AuditInventoryTransfer   AuditAction = "INVENTORY_TRANSFER"
	AuditStockCount          AuditAction = "STOCK_COUNT"

	// Sales and transactions
	AuditSaleCreate     AuditAction = "SALE_CREATE"
	AuditSaleUpdate     AuditAction = "SALE_UPDATE"
	AuditSaleVoid       AuditAction = "SALE_VOID"
	AuditSaleReturn     AuditAction = "SALE_RETURN"
	AuditPaymentProcess AuditAction = "PAYMENT_PROCESS"
	AuditPaymentRefund  AuditAction = "PAYMENT_REFUND"

	// Customer management
	AuditCustomerCreate AuditAction = "CUSTOMER_CREATE"
	AuditCustomerUpdate AuditAction = "CUSTOMER_UPDATE"
	AuditCustomerDelete AuditAction = "CUSTOMER_DELETE"

	// System operations
	AuditBackupCreate       AuditAction = "BACKUP_CREATE"
	AuditBackupRestore      AuditAction = "BACKUP_RESTORE"
	AuditSystemConfigChange AuditAction = "SYSTEM_CONFIG_CHANGE"
	AuditDataExport         AuditAction = "DATA_EXPORT"
	AuditDataImport         AuditAction = "DATA_IMPORT"

	// Security events
	AuditFailedLogin        AuditAction = "FAILED_LOGIN"
	AuditSuspiciousActivity AuditAction = "SUSPICIOUS_ACTIVITY"
	AuditDataAccess         AuditAction = "DATA_ACCESS"
	AuditPermissionDenied   AuditAction = "PERMISSION_DENIED"
)

// AuditLog is a compliance-oriented log entry, always tied to a company and
// typically to a specific data mutation. OldValues/NewValues hold optional
// before/after snapshots when the entry records a mutation. ID and CreatedAt
// are assigned by the store at insert time.
type AuditLog struct {
	ID          int64
	CompanyID   string
	UserID      string
	Action      AuditAction
	TableName   sql.NullString
	RecordID    sql.NullString
	OldValues   map[string]any
	NewValues   map[string]any
	IPAddress   string
	UserAgent   string
	Severity    Severity
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}
