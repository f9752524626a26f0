// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/olegiv/posaudit-go/internal/model"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

type recordingSubmitter struct {
	entries []model.ActivityLog
}

func (r *recordingSubmitter) Submit(entry model.ActivityLog) {
	r.entries = append(r.entries, entry)
}

func TestHandleErrorLevel(t *testing.T) {
	rec := &recordingSubmitter{}
	logger := slog.New(NewActivityLogHandler(discardHandler{}, rec, "company-1"))

	logger.Error("database connection failed", "host", "localhost", "port", 5432)

	if len(rec.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(rec.entries))
	}
	entry := rec.entries[0]
	if entry.ActivityType != model.ActivityErrorOccurred {
		t.Errorf("type = %q, want ERROR_OCCURRED", entry.ActivityType)
	}
	if entry.UserID != model.SystemUser {
		t.Errorf("user = %q, want %q", entry.UserID, model.SystemUser)
	}
	if entry.Severity != model.SeverityHigh {
		t.Errorf("severity = %q, want high", entry.Severity)
	}
	if entry.Description != "database connection failed" {
		t.Errorf("description = %q", entry.Description)
	}
	if entry.Metadata["host"] != "localhost" {
		t.Errorf("metadata host = %v", entry.Metadata["host"])
	}
}

func TestHandleWarnLevel(t *testing.T) {
	rec := &recordingSubmitter{}
	logger := slog.New(NewActivityLogHandler(discardHandler{}, rec, "company-1"))

	logger.Warn("queue nearly full", "depth", 9500)

	if len(rec.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(rec.entries))
	}
	if rec.entries[0].Severity != model.SeverityMedium {
		t.Errorf("severity = %q, want medium", rec.entries[0].Severity)
	}
}

func TestHandleInfoNotForwarded(t *testing.T) {
	rec := &recordingSubmitter{}
	logger := slog.New(NewActivityLogHandler(discardHandler{}, rec, "company-1"))

	logger.Info("server started", "addr", ":8080")
	logger.Debug("verbose detail")

	if len(rec.entries) != 0 {
		t.Errorf("got %d entries from info/debug, want 0", len(rec.entries))
	}
}

func TestHandleCustomLevel(t *testing.T) {
	rec := &recordingSubmitter{}
	handler := NewActivityLogHandlerWithLevel(discardHandler{}, rec, "company-1", slog.LevelError)
	logger := slog.New(handler)

	logger.Warn("below the threshold")
	logger.Error("at the threshold")

	if len(rec.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(rec.entries))
	}
	if rec.entries[0].Description != "at the threshold" {
		t.Errorf("description = %q", rec.entries[0].Description)
	}
}

func TestWithAttrsCarriedIntoMetadata(t *testing.T) {
	rec := &recordingSubmitter{}
	logger := slog.New(NewActivityLogHandler(discardHandler{}, rec, "company-1")).
		With("component", "payment-terminal")

	logger.Error("terminal offline")

	if len(rec.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(rec.entries))
	}
	if rec.entries[0].Metadata["component"] != "payment-terminal" {
		t.Errorf("metadata component = %v", rec.entries[0].Metadata["component"])
	}
	if rec.entries[0].Metadata["log_level"] != "ERROR" {
		t.Errorf("metadata log_level = %v", rec.entries[0].Metadata["log_level"])
	}
}
