// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the typed logging surface call sites use instead of
// building log records by hand. It classifies severity, formats descriptions
// and hands records to the buffered writers.
package service

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/olegiv/posaudit-go/internal/logwriter"
	"github.com/olegiv/posaudit-go/internal/model"
)

// Actor carries the request-scoped identity and origin attached to every
// activity record.
type Actor struct {
	CompanyID  string
	BranchID   string
	LocationID string
	UserID     string
	IPAddress  string
	UserAgent  string
	SessionID  string
}

// ActivitySubmitter accepts activity entries for buffered delivery.
type ActivitySubmitter interface {
	Submit(entry model.ActivityLog)
}

// ActivityService builds activity records from typed call sites and submits
// them. Critical kinds are additionally forwarded into the audit pipeline
// before Log returns.
type ActivityService struct {
	writer    ActivitySubmitter
	forwarder *logwriter.Forwarder
	logger    *slog.Logger
}

// NewActivityService creates an activity service. The forwarder may be nil,
// disabling the audit cross-write.
func NewActivityService(writer ActivitySubmitter, forwarder *logwriter.Forwarder, logger *slog.Logger) *ActivityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityService{writer: writer, forwarder: forwarder, logger: logger}
}

// Log classifies and submits one activity record. Fire-and-forget.
func (s *ActivityService) Log(entry model.ActivityLog) {
	if entry.UserID == "" {
		entry.UserID = model.SystemUser
	}
	if entry.Severity == "" {
		entry.Severity = logwriter.ClassifyActivity(entry.ActivityType)
	}
	s.writer.Submit(entry)

	if s.forwarder != nil {
		s.forwarder.Forward(entry)
	}
}

// LogUserAuth records a login or logout.
func (s *ActivityService) LogUserAuth(actor Actor, login, success bool, metadata map[string]any) {
	kind := model.ActivityUserLogin
	verb := "login"
	if !login {
		kind = model.ActivityUserLogout
		verb = "logout"
	}
	outcome := "successful"
	if !success {
		outcome = "failed"
	}

	s.Log(s.entry(actor, kind,
		fmt.Sprintf("User %s %s", verb, outcome),
		withMeta(metadata, "success", success)))
}

// LogSale records a sale lifecycle event. The amount appears in the
// description for completed and refunded sales.
func (s *ActivityService) LogSale(actor Actor, saleID string, kind model.ActivityType, amount float64, metadata map[string]any) {
	var description string
	switch kind {
	case model.ActivitySaleStarted:
		description = "Sale transaction started"
	case model.ActivitySaleCompleted:
		description = fmt.Sprintf("Sale completed - $%.2f", amount)
	case model.ActivitySaleCancelled:
		description = "Sale cancelled"
	case model.ActivitySaleRefunded:
		description = fmt.Sprintf("Sale refunded - $%.2f", amount)
	default:
		s.logger.Warn("unknown sale activity kind", "activity_type", kind)
		return
	}

	metadata = withMeta(metadata, "sale_id", saleID)
	metadata["amount"] = amount
	s.Log(s.entry(actor, kind, description, metadata))
}

// LogCart records a cart mutation.
func (s *ActivityService) LogCart(actor Actor, kind model.ActivityType, productID string, quantity int, metadata map[string]any) {
	var description string
	switch kind {
	case model.ActivityItemAddedToCart:
		description = fmt.Sprintf("Added %d x %s to cart", quantity, productID)
	case model.ActivityItemRemovedFromCart:
		description = fmt.Sprintf("Removed %d x %s from cart", quantity, productID)
	case model.ActivityCartCleared:
		description = "Cart cleared"
	default:
		s.logger.Warn("unknown cart activity kind", "activity_type", kind)
		return
	}

	metadata = withMeta(metadata, "product_id", productID)
	metadata["quantity"] = quantity
	s.Log(s.entry(actor, kind, description, metadata))
}

// LogInventory records an inventory event for a product.
func (s *ActivityService) LogInventory(actor Actor, productID string, kind model.ActivityType, quantityChange int, metadata map[string]any) {
	var description string
	switch kind {
	case model.ActivityInventoryCountStarted:
		description = fmt.Sprintf("Inventory count started for %s", productID)
	case model.ActivityInventoryCountCompleted:
		description = fmt.Sprintf("Inventory count completed for %s", productID)
	case model.ActivityInventoryAdjustment:
		description = fmt.Sprintf("Inventory adjusted by %d for %s", quantityChange, productID)
	case model.ActivityProductReceived:
		description = fmt.Sprintf("Received %d units of %s", abs(quantityChange), productID)
	case model.ActivityProductTransferred:
		description = fmt.Sprintf("Transferred %d units of %s", abs(quantityChange), productID)
	default:
		s.logger.Warn("unknown inventory activity kind", "activity_type", kind)
		return
	}

	metadata = withMeta(metadata, "product_id", productID)
	metadata["quantity_change"] = quantityChange
	s.Log(s.entry(actor, kind, description, metadata))
}

// LogShift records a shift boundary.
func (s *ActivityService) LogShift(actor Actor, shiftID string, started bool, metadata map[string]any) {
	kind := model.ActivityShiftStarted
	description := "Shift started"
	if !started {
		kind = model.ActivityShiftEnded
		description = "Shift ended"
	}

	s.Log(s.entry(actor, kind, description, withMeta(metadata, "shift_id", shiftID)))
}

// Error kinds for LogError.
const (
	ErrorGeneral  = "GENERAL"
	ErrorPayment  = "PAYMENT"
	ErrorHardware = "HARDWARE"
)

// LogError records a runtime error as an activity event. An empty user is
// attributed to the system account.
func (s *ActivityService) LogError(actor Actor, errorType, message string, metadata map[string]any) {
	var kind model.ActivityType
	switch errorType {
	case ErrorPayment:
		kind = model.ActivityPaymentFailed
	case ErrorHardware:
		kind = model.ActivityHardwareError
	default:
		kind = model.ActivityErrorOccurred
	}

	metadata = withMeta(metadata, "error_type", errorType)
	metadata["error_message"] = message
	s.Log(s.entry(actor, kind, fmt.Sprintf("Error: %s", message), metadata))
}

func (s *ActivityService) entry(actor Actor, kind model.ActivityType, description string, metadata map[string]any) model.ActivityLog {
	return model.ActivityLog{
		CompanyID:    actor.CompanyID,
		BranchID:     nullString(actor.BranchID),
		LocationID:   nullString(actor.LocationID),
		UserID:       actor.UserID,
		ActivityType: kind,
		Description:  description,
		Metadata:     metadata,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		SessionID:    actor.SessionID,
	}
}

// withMeta returns metadata with one key set, allocating when metadata is nil.
// The caller's map is mutated when non-nil.
func withMeta(metadata map[string]any, key string, value any) map[string]any {
	if metadata == nil {
		metadata = make(map[string]any, 2)
	}
	metadata[key] = value
	return metadata
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
