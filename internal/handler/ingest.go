// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/olegiv/posaudit-go/internal/middleware"
	"github.com/olegiv/posaudit-go/internal/model"
)

// SubmitActivityRequest is the request body for activity log submission.
type SubmitActivityRequest struct {
	CompanyID    string         `json:"company_id"`
	BranchID     string         `json:"branch_id,omitempty"`
	LocationID   string         `json:"location_id,omitempty"`
	UserID       string         `json:"user_id"`
	ActivityType string         `json:"activity_type"`
	Description  string         `json:"description"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	Severity     string         `json:"severity,omitempty"`
}

// SubmitActivityLog handles POST /api/activity/logs. Submission is
// fire-and-forget: a 202 means the event was queued, not persisted.
func (h *Handler) SubmitActivityLog(w http.ResponseWriter, r *http.Request) {
	if h.activity == nil {
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "Activity ingestion is not enabled")
		return
	}

	var req SubmitActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.CompanyID == "" {
		WriteBadRequest(w, "company_id is required")
		return
	}
	if req.ActivityType == "" {
		WriteBadRequest(w, "activity_type is required")
		return
	}

	// Terminals behind a POS gateway report their own address; direct
	// clients fall back to what the connection shows.
	if req.IPAddress == "" {
		req.IPAddress = middleware.ClientIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	h.activity.Log(model.ActivityLog{
		CompanyID:    req.CompanyID,
		BranchID:     sql.NullString{String: req.BranchID, Valid: req.BranchID != ""},
		LocationID:   sql.NullString{String: req.LocationID, Valid: req.LocationID != ""},
		UserID:       req.UserID,
		ActivityType: model.ActivityType(req.ActivityType),
		Description:  req.Description,
		Metadata:     req.Metadata,
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
		SessionID:    req.SessionID,
		Severity:     model.Severity(req.Severity),
	})
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// SubmitAuditRequest is the request body for audit log submission.
type SubmitAuditRequest struct {
	CompanyID   string         `json:"company_id"`
	UserID      string         `json:"user_id"`
	Action      string         `json:"action"`
	TableName   string         `json:"table_name,omitempty"`
	RecordID    string         `json:"record_id,omitempty"`
	OldValues   map[string]any `json:"old_values,omitempty"`
	NewValues   map[string]any `json:"new_values,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Severity    string         `json:"severity,omitempty"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SubmitAuditLog handles POST /api/audit/logs. Fire-and-forget like the
// activity endpoint.
func (h *Handler) SubmitAuditLog(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "Audit ingestion is not enabled")
		return
	}

	var req SubmitAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.CompanyID == "" {
		WriteBadRequest(w, "company_id is required")
		return
	}
	if req.Action == "" {
		WriteBadRequest(w, "action is required")
		return
	}

	if req.IPAddress == "" {
		req.IPAddress = middleware.ClientIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	h.audit.Log(model.AuditLog{
		CompanyID:   req.CompanyID,
		UserID:      req.UserID,
		Action:      model.AuditAction(req.Action),
		TableName:   sql.NullString{String: req.TableName, Valid: req.TableName != ""},
		RecordID:    sql.NullString{String: req.RecordID, Valid: req.RecordID != ""},
		OldValues:   req.OldValues,
		NewValues:   req.NewValues,
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		Severity:    model.Severity(req.Severity),
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
