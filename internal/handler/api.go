// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the read-only REST surface over the log stores:
// filtered queries, reports, statistics and alert listings.
package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/posaudit-go/internal/middleware"
	"github.com/olegiv/posaudit-go/internal/model"
	"github.com/olegiv/posaudit-go/internal/report"
	"github.com/olegiv/posaudit-go/internal/service"
	"github.com/olegiv/posaudit-go/internal/store"
)

// defaultStatisticsDays is the trailing window used when the caller does not
// pass one.
const defaultStatisticsDays = 30

// Ingestion rate limit per client IP. Generous enough for a busy terminal
// that batches locally; tight enough to stop a runaway client.
const (
	ingestRPS   = 50
	ingestBurst = 200
)

// requestTimeout bounds a single API request, reports included.
const requestTimeout = 30 * time.Second

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	queries   *store.Queries
	engine    *report.Engine
	activity  *service.ActivityService
	audit     *service.AuditService
	logger    *slog.Logger
	startTime time.Time
}

// NewHandler creates the API handler. The activity and audit services may be
// nil, disabling the ingestion endpoints.
func NewHandler(db *sql.DB, engine *report.Engine, activity *service.ActivityService, audit *service.AuditService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		db:        db,
		queries:   store.New(db),
		engine:    engine,
		activity:  activity,
		audit:     audit,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Routes builds the HTTP router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/health", h.Health)
	r.Get("/health/live", h.Liveness)

	ingestLimit := middleware.NewRateLimiter(ingestRPS, ingestBurst).Middleware()

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/audit/logs", h.ListAuditLogs)
		r.With(ingestLimit).Post("/audit/logs", h.SubmitAuditLog)
		r.Get("/audit/report", h.AuditReport)
		r.Get("/audit/statistics", h.AuditStatistics)
		r.Get("/activity/logs", h.ListActivityLogs)
		r.With(ingestLimit).Post("/activity/logs", h.SubmitActivityLog)
		r.Get("/activity/summary", h.ActivitySummary)
		r.Get("/alerts", h.ListAlerts)
		r.Post("/alerts/{id}/resolve", h.ResolveAlert)
	})

	return r
}

// ActivityLogResponse represents an activity log entry in API responses.
type ActivityLogResponse struct {
	ID           int64              `json:"id"`
	CompanyID    string             `json:"company_id"`
	BranchID     string             `json:"branch_id,omitempty"`
	LocationID   string             `json:"location_id,omitempty"`
	UserID       string             `json:"user_id"`
	ActivityType model.ActivityType `json:"activity_type"`
	Description  string             `json:"description"`
	Metadata     map[string]any     `json:"metadata,omitempty"`
	IPAddress    string             `json:"ip_address,omitempty"`
	UserAgent    string             `json:"user_agent,omitempty"`
	SessionID    string             `json:"session_id,omitempty"`
	Severity     model.Severity     `json:"severity"`
	CreatedAt    time.Time          `json:"created_at"`
}

func toActivityResponse(entry model.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:           entry.ID,
		CompanyID:    entry.CompanyID,
		BranchID:     entry.BranchID.String,
		LocationID:   entry.LocationID.String,
		UserID:       entry.UserID,
		ActivityType: entry.ActivityType,
		Description:  entry.Description,
		Metadata:     entry.Metadata,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		SessionID:    entry.SessionID,
		Severity:     entry.Severity,
		CreatedAt:    entry.CreatedAt,
	}
}

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID          int64             `json:"id"`
	CompanyID   string            `json:"company_id"`
	UserID      string            `json:"user_id"`
	Action      model.AuditAction `json:"action"`
	TableName   string            `json:"table_name,omitempty"`
	RecordID    string            `json:"record_id,omitempty"`
	OldValues   map[string]any    `json:"old_values,omitempty"`
	NewValues   map[string]any    `json:"new_values,omitempty"`
	IPAddress   string            `json:"ip_address,omitempty"`
	UserAgent   string            `json:"user_agent,omitempty"`
	Severity    model.Severity    `json:"severity"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toAuditResponse(entry model.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:          entry.ID,
		CompanyID:   entry.CompanyID,
		UserID:      entry.UserID,
		Action:      entry.Action,
		TableName:   entry.TableName.String,
		RecordID:    entry.RecordID.String,
		OldValues:   entry.OldValues,
		NewValues:   entry.NewValues,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		Severity:    entry.Severity,
		Description: entry.Description,
		Metadata:    entry.Metadata,
		CreatedAt:   entry.CreatedAt,
	}
}

// ListAuditLogs handles GET /api/audit/logs.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		WriteBadRequest(w, "company_id is required")
		return
	}

	filter := store.AuditLogFilter{
		CompanyID: companyID,
		UserID:    r.URL.Query().Get("user_id"),
		Action:    model.AuditAction(r.URL.Query().Get("action")),
		TableName: r.URL.Query().Get("table_name"),
		RecordID:  r.URL.Query().Get("record_id"),
		Severity:  model.Severity(r.URL.Query().Get("severity")),
		Limit:     parseIntParam(r, "limit", 0),
		Offset:    parseIntParam(r, "offset", 0),
	}
	var ok bool
	if filter.DateFrom, ok = parseTimeParam(w, r, "from"); !ok {
		return
	}
	if filter.DateTo, ok = parseTimeParam(w, r, "to"); !ok {
		return
	}

	logs, err := h.engine.QueryAuditLogs(r.Context(), filter)
	if err != nil {
		h.logger.Error("listing audit logs failed", "error", err)
		WriteInternalError(w, "Failed to list audit logs")
		return
	}

	out := make([]AuditLogResponse, 0, len(logs))
	for _, entry := range logs {
		out = append(out, toAuditResponse(entry))
	}
	WriteSuccess(w, out, &Meta{Total: len(out), Limit: filter.Limit, Offset: filter.Offset})
}

// AuditReport handles GET /api/audit/report.
func (h *Handler) AuditReport(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		WriteBadRequest(w, "company_id is required")
		return
	}

	filter := store.AuditLogFilter{
		CompanyID: companyID,
		UserID:    r.URL.Query().Get("user_id"),
		Action:    model.AuditAction(r.URL.Query().Get("action")),
		Severity:  model.Severity(r.URL.Query().Get("severity")),
	}
	var ok bool
	if filter.DateFrom, ok = parseTimeParam(w, r, "from"); !ok {
		return
	}
	if filter.DateTo, ok = parseTimeParam(w, r, "to"); !ok {
		return
	}

	rep, err := h.engine.GenerateAuditReport(r.Context(), filter)
	if err != nil {
		h.logger.Error("generating audit report failed", "error", err)
		WriteInternalError(w, "Failed to generate audit report")
		return
	}
	WriteSuccess(w, rep, nil)
}

// AuditStatistics handles GET /api/audit/statistics.
func (h *Handler) AuditStatistics(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		WriteBadRequest(w, "company_id is required")
		return
	}
	days := parseIntParam(r, "days", defaultStatisticsDays)
	if days <= 0 {
		WriteBadRequest(w, "days must be positive")
		return
	}

	stats, err := h.engine.AuditStatistics(r.Context(), companyID, days)
	if err != nil {
		h.logger.Error("computing audit statistics failed", "error", err)
		WriteInternalError(w, "Failed to compute audit statistics")
		return
	}
	WriteSuccess(w, stats, nil)
}

// ListActivityLogs handles GET /api/activity/logs.
func (h *Handler) ListActivityLogs(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		WriteBadRequest(w, "company_id is required")
		return
	}

	filter := store.ActivityLogFilter{
		CompanyID:    companyID,
		UserID:       r.URL.Query().Get("user_id"),
		ActivityType: model.ActivityType(r.URL.Query().Get("activity_type")),
		Severity:     model.Severity(r.URL.Query().Get("severity")),
		Limit:        parseIntParam(r, "limit", 0),
		Offset:       parseIntParam(r, "offset", 0),
	}
	var ok bool
	if filter.DateFrom, ok = parseTimeParam(w, r, "from"); !ok {
		return
	}
	if filter.DateTo, ok = parseTimeParam(w, r, "to"); !ok {
		return
	}

	logs, err := h.engine.QueryActivityLogs(r.Context(), filter)
	if err != nil {
		h.logger.Error("listing activity logs failed", "error", err)
		WriteInternalError(w, "Failed to list activity logs")
		return
	}

	out := make([]ActivityLogResponse, 0, len(logs))
	for _, entry := range logs {
		out = append(out, toActivityResponse(entry))
	}
	WriteSuccess(w, out, &Meta{Total: len(out), Limit: filter.Limit, Offset: filter.Offset})
}

// ActivitySummary handles GET /api/activity/summary.
func (h *Handler) ActivitySummary(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		WriteBadRequest(w, "company_id is required")
		return
	}
	days := parseIntParam(r, "days", defaultStatisticsDays)
	if days <= 0 {
		WriteBadRequest(w, "days must be positive")
		return
	}

	summary, err := h.engine.ActivitySummary(r.Context(), companyID, days)
	if err != nil {
		h.logger.Error("computing activity summary failed", "error", err)
		WriteInternalError(w, "Failed to compute activity summary")
		return
	}

	// The summary carries raw store entries; re-map them for the wire.
	recent := make([]ActivityLogResponse, 0, len(summary.RecentActivities))
	for _, entry := range summary.RecentActivities {
		recent = append(recent, toActivityResponse(entry))
	}
	WriteSuccess(w, map[string]any{
		"total_activities":   summary.TotalActivities,
		"activities_by_type": summary.ActivitiesByType,
		"activities_by_user": summary.ActivitiesByUser,
		"recent_activities":  recent,
		"peak_hours":         summary.PeakHours,
	}, nil)
}

// InventoryAlertResponse represents an inventory alert in API responses.
type InventoryAlertResponse struct {
	ID                int64     `json:"id"`
	ProductID         string    `json:"product_id"`
	LocationID        string    `json:"location_id"`
	AlertType         string    `json:"alert_type"`
	Severity          string    `json:"severity"`
	CurrentQuantity   int64     `json:"current_quantity"`
	ThresholdQuantity int64     `json:"threshold_quantity"`
	Message           string    `json:"message"`
	IsResolved        bool      `json:"is_resolved"`
	CreatedAt         time.Time `json:"created_at"`
}

// ListAlerts handles GET /api/alerts.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := store.InventoryAlertFilter{
		ProductID:      r.URL.Query().Get("product_id"),
		LocationID:     r.URL.Query().Get("location_id"),
		AlertType:      r.URL.Query().Get("alert_type"),
		OnlyUnresolved: r.URL.Query().Get("unresolved") == "true",
		Limit:          parseIntParam(r, "limit", 0),
		Offset:         parseIntParam(r, "offset", 0),
	}

	alerts, err := h.queries.ListInventoryAlerts(r.Context(), filter)
	if err != nil {
		h.logger.Error("listing inventory alerts failed", "error", err)
		WriteInternalError(w, "Failed to list alerts")
		return
	}

	out := make([]InventoryAlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, InventoryAlertResponse{
			ID:                alert.ID,
			ProductID:         alert.ProductID,
			LocationID:        alert.LocationID,
			AlertType:         alert.AlertType,
			Severity:          alert.Severity,
			CurrentQuantity:   alert.CurrentQuantity,
			ThresholdQuantity: alert.ThresholdQuantity,
			Message:           alert.Message,
			IsResolved:        alert.IsResolved,
			CreatedAt:         alert.CreatedAt,
		})
	}
	WriteSuccess(w, out, &Meta{Total: len(out), Limit: filter.Limit, Offset: filter.Offset})
}

// ResolveAlert handles POST /api/alerts/{id}/resolve. Resolution is the only
// mutation the API exposes on an alert.
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "id must be an integer")
		return
	}

	if err := h.queries.ResolveInventoryAlert(r.Context(), id); err != nil {
		h.logger.Warn("resolving alert failed", "id", id, "error", err)
		WriteError(w, http.StatusNotFound, "not_found", "Alert not found")
		return
	}
	WriteSuccess(w, map[string]string{"status": "resolved"}, nil)
}

// parseIntParam reads an integer query parameter, falling back to def when
// absent or malformed.
func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// parseTimeParam reads an RFC 3339 query parameter. A malformed value writes
// a 400 response and reports ok=false.
func parseTimeParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		WriteBadRequest(w, name+" must be RFC 3339")
		return nil, false
	}
	return &t, true
}
