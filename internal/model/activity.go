// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// ActivityType identifies the kind of an activity log entry.
type ActivityType string

// Activity types. The set is closed: call sites must use one of these.
const (
	// User activities
	ActivityUserLogin          ActivityType = "USER_LOGIN"
	ActivityUserLogout         ActivityType = "USER_LOGOUT"
	ActivityUserProfileUpdate  ActivityType = "USER_PROFILE_UPDATE"
	ActivityUserPasswordChange ActivityType = "USER_PASSWORD_CHANGE"

	// Sales activities
	ActivitySaleStarted         ActivityType = "SALE_STARTED"
	ActivitySaleCompleted       ActivityType = "SALE_COMPLETED"
	ActivitySaleCancelled       ActivityType = "SALE_CANCELLED"
	ActivitySaleRefunded        ActivityType = "SALE_REFUNDED"
	ActivityItemAddedToCart     ActivityType = "ITEM_ADDED_TO_CART"
	ActivityItemRemovedFromCart ActivityType = "ITEM_REMOVED_FROM_CART"
	ActivityCartCleared         ActivityType = "CART_CLEARED"

	// Inventory activities
	ActivityInventoryCountStarted   ActivityType = "INVENTORY_COUNT_STARTED"
	ActivityInventoryCountCompleted ActivityType = "INVENTORY_COUNT_COMPLETED"
	ActivityInventoryAdjustment     ActivityType = "INVENTORY_ADJUSTMENT"
	ActivityProductReceived         ActivityType = "PRODUCT_RECEIVED"
	ActivityProductTransferred      ActivityType = "PRODUCT_TRANSFERRED"

	// Customer activities
	ActivityCustomerAdded          ActivityType = "CUSTOMER_ADDED"
	ActivityCustomerUpdated        ActivityType = "CUSTOMER_UPDATED"
	ActivityCustomerLoyaltyUpdated ActivityType = "CUSTOMER_LOYALTY_UPDATED"

	// System activities
	ActivityShiftStarted       ActivityType = "SHIFT_STARTED"
	ActivityShiftEnded         ActivityType = "SHIFT_ENDED"
	ActivityCashRegisterOpened ActivityType = "CASH_REGISTER_OPENED"
	ActivityCashRegisterClosed ActivityType = "CASH_REGISTER_CLOSED"
	ActivityBackupCreated      ActivityType = "BACKUP_CREATED"
	ActivitySystemMaintenance  ActivityType = "SYSTEM_MAINTENANCE"

	// Error activities
	ActivityErrorOccurred ActivityType = "ERROR_OCCURRED"
	ActivityPaymentFailed ActivityType = "PAYMENT_FAILED"
	ActivityHardwareError ActivityType = "HARDWARE_ERROR"
)

// ActivityLog is a general-purpose operational log entry. ID and CreatedAt are
// assigned by the store at insert time; a record is immutable once persisted.
type ActivityLog struct {
	ID           int64
	CompanyID    string
	BranchID     sql.NullString
	LocationID   sql.NullString
	UserID       string
	ActivityType ActivityType
	Description  string
	Metadata     map[string]any
	IPAddress    string
	UserAgent    string
	SessionID    string
	Severity     Severity
	CreatedAt    time.Time
}
