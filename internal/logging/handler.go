// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that feeds application log records
// into the activity pipeline. Logs at WARN level and above become system
// error activity events alongside normal terminal output.
package logging

import (
	"context"
	"log/slog"

	"github.com/olegiv/posaudit-go/internal/model"
)

// Submitter accepts activity entries for buffered delivery.
type Submitter interface {
	Submit(entry model.ActivityLog)
}

// ActivityLogHandler is a slog.Handler that wraps another handler and also
// submits WARN and ERROR level records as activity log events. The wrapped
// pipeline's own internal logger must not use this handler, or a failing
// store would feed its error logs back into itself.
type ActivityLogHandler struct {
	inner     slog.Handler
	writer    Submitter
	companyID string
	level     slog.Level
	attrs     []slog.Attr
}

// NewActivityLogHandler creates a handler that wraps inner and forwards WARN
// and above to the activity writer under the given company.
func NewActivityLogHandler(inner slog.Handler, writer Submitter, companyID string) *ActivityLogHandler {
	return &ActivityLogHandler{
		inner:     inner,
		writer:    writer,
		companyID: companyID,
		level:     slog.LevelWarn,
	}
}

// NewActivityLogHandlerWithLevel creates a handler with a custom forwarding
// threshold.
func NewActivityLogHandlerWithLevel(inner slog.Handler, writer Submitter, companyID string, level slog.Level) *ActivityLogHandler {
	h := NewActivityLogHandler(inner, writer, companyID)
	h.level = level
	return h
}

// Enabled implements slog.Handler.
func (h *ActivityLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ActivityLogHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.submitActivity(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ActivityLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *ActivityLogHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithGroup(name)
	return &clone
}

// submitActivity turns a log record into a system activity event.
func (h *ActivityLogHandler) submitActivity(r slog.Record) {
	severity := model.Severity(model.SeverityMedium)
	if r.Level >= slog.LevelError {
		severity = model.SeverityHigh
	}

	metadata := make(map[string]any, r.NumAttrs()+len(h.attrs)+1)
	metadata["log_level"] = r.Level.String()
	for _, a := range h.attrs {
		metadata[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		metadata[a.Key] = a.Value.String()
		return true
	})

	h.writer.Submit(model.ActivityLog{
		CompanyID:    h.companyID,
		UserID:       model.SystemUser,
		ActivityType: model.ActivityErrorOccurred,
		Description:  r.Message,
		Metadata:     metadata,
		Severity:     severity,
		CreatedAt:    r.Time,
	})
}
