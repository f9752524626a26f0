// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"log/slog"

	"github.com/olegiv/posaudit-go/internal/logwriter"
	"github.com/olegiv/posaudit-go/internal/model"
)

// largeQuantityChange is the absolute stock movement above which an inventory
// adjustment is escalated to high severity.
const largeQuantityChange = 100

// AuditService builds compliance records from typed call sites and submits
// them to the buffered audit writer.
type AuditService struct {
	writer logwriter.AuditSubmitter
	logger *slog.Logger
}

// NewAuditService creates an audit service backed by the given writer.
func NewAuditService(writer logwriter.AuditSubmitter, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{writer: writer, logger: logger}
}

// Log classifies and submits one audit record. Fire-and-forget.
func (s *AuditService) Log(entry model.AuditLog) {
	if entry.UserID == "" {
		entry.UserID = model.SystemUser
	}
	if entry.Severity == "" {
		entry.Severity = logwriter.ClassifyAudit(entry.Action, entry.TableName.String)
	}
	s.writer.Submit(entry)
}

// LogAuthentication records a login, logout or failed login attempt.
func (s *AuditService) LogAuthentication(companyID, userID string, action model.AuditAction, success bool, metadata map[string]any) {
	outcome := "successful"
	if !success {
		outcome = "failed"
	}

	s.Log(model.AuditLog{
		CompanyID:   companyID,
		UserID:      userID,
		Action:      action,
		Description: fmt.Sprintf("%s attempt %s", action, outcome),
		Metadata:    withMeta(metadata, "success", success),
	})
}

// LogDataChange records a mutation of a stored record with optional
// before/after snapshots.
func (s *AuditService) LogDataChange(companyID, userID string, action model.AuditAction, tableName, recordID string, oldValues, newValues map[string]any) {
	s.Log(model.AuditLog{
		CompanyID:   companyID,
		UserID:      userID,
		Action:      action,
		TableName:   nullString(tableName),
		RecordID:    nullString(recordID),
		OldValues:   oldValues,
		NewValues:   newValues,
		Description: fmt.Sprintf("%s operation on %s", action, tableName),
	})
}

// saleVerbs translates sale audit actions into the description wording.
var saleVerbs = map[model.AuditAction]string{
	model.AuditSaleCreate: "create",
	model.AuditSaleUpdate: "update",
	model.AuditSaleVoid:   "void",
	model.AuditSaleReturn: "return",
}

// LogSaleTransaction records a sale mutation against the sales table.
func (s *AuditService) LogSaleTransaction(companyID, userID, saleID string, action model.AuditAction, amount float64, metadata map[string]any) {
	verb, ok := saleVerbs[action]
	if !ok {
		s.logger.Warn("unknown sale audit action", "action", action)
		return
	}

	s.Log(model.AuditLog{
		CompanyID:   companyID,
		UserID:      userID,
		Action:      action,
		TableName:   nullString("sales"),
		RecordID:    nullString(saleID),
		Description: fmt.Sprintf("Sale %s - Amount: $%.2f", verb, amount),
		Metadata:    withMeta(metadata, "amount", amount),
	})
}

// LogPayment records a processed or refunded payment.
func (s *AuditService) LogPayment(companyID, userID, saleID, paymentMethod string, amount float64, success bool, metadata map[string]any) {
	action := model.AuditPaymentProcess
	verb := "processed"
	if !success {
		action = model.AuditPaymentRefund
		verb = "refunded"
	}

	metadata = withMeta(metadata, "payment_method", paymentMethod)
	metadata["amount"] = amount
	metadata["success"] = success

	s.Log(model.AuditLog{
		CompanyID:   companyID,
		UserID:      userID,
		Action:      action,
		TableName:   nullString("payments"),
		RecordID:    nullString(saleID),
		Description: fmt.Sprintf("Payment %s - %s: $%.2f", verb, paymentMethod, amount),
		Metadata:    metadata,
	})
}

// LogInventoryChange records a stock adjustment. Movements larger than 100
// units in either direction are escalated to high severity.
func (s *AuditService) LogInventoryChange(companyID, userID, productID, locationID string, quantityChange int, reason string, metadata map[string]any) {
	severity := logwriter.ClassifyAudit(model.AuditInventoryAdjustment, "inventory")
	if abs(quantityChange) > largeQuantityChange {
		severity = model.SeverityHigh
	}

	sign := ""
	if quantityChange > 0 {
		sign = "+"
	}

	metadata = withMeta(metadata, "location_id", locationID)
	metadata["quantity_change"] = quantityChange
	metadata["reason"] = reason

	s.Log(model.AuditLog{
		CompanyID:   companyID,
		UserID:      userID,
		Action:      model.AuditInventoryAdjustment,
		TableName:   nullString("inventory"),
		RecordID:    nullString(productID),
		Severity:    severity,
		Description: fmt.Sprintf("Inventory adjustment: %s%d units - %s", sign, quantityChange, reason),
		Metadata:    metadata,
	})
}
