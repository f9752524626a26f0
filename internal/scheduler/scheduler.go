// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic retention sweeps over the log tables.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/olegiv/posaudit-go/internal/report"
	"github.com/olegiv/posaudit-go/internal/store"
)

// Retention holds how long each record family is kept, in days.
type Retention struct {
	ActivityDays int
	AuditDays    int
	AlertDays    int
}

// DefaultRetention keeps activity logs for 90 days, audit logs for one year
// and resolved alerts for 30 days.
func DefaultRetention() Retention {
	return Retention{
		ActivityDays: 90,
		AuditDays:    365,
		AlertDays:    30,
	}
}

// Scheduler owns the cron instance driving the cleanup jobs.
type Scheduler struct {
	engine    *report.Engine
	queries   *store.Queries
	retention Retention
	logger    *slog.Logger
	cron      *cron.Cron
}

// New creates a scheduler. Start must be called to launch the jobs.
func New(engine *report.Engine, queries *store.Queries, retention Retention, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine:    engine,
		queries:   queries,
		retention: retention,
		logger:    logger,
	}
}

// addCronJob registers a cron job with timeout and error logging. Each run
// gets its own id so a sweep's log lines can be correlated.
func (s *Scheduler) addCronJob(schedule string, timeout time.Duration, jobFunc func(context.Context, *slog.Logger) error, errMsg string) {
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		runLogger := s.logger.With("run_id", uuid.NewString())
		if err := jobFunc(ctx, runLogger); err != nil {
			runLogger.Error(errMsg, "error", err)
		}
	})
}

// Start launches the background cleanup jobs.
func (s *Scheduler) Start() {
	s.cron = cron.New()

	// Daily at 02:15: sweep expired activity logs
	s.addCronJob("15 2 * * *", 10*time.Minute, s.cleanupActivityLogs, "activity log cleanup failed")

	// Daily at 02:30: sweep expired audit logs
	s.addCronJob("30 2 * * *", 10*time.Minute, s.cleanupAuditLogs, "audit log cleanup failed")

	// Monthly on 1st at 03:00: sweep old resolved inventory alerts
	s.addCronJob("0 3 1 * *", 10*time.Minute, s.cleanupResolvedAlerts, "resolved alert cleanup failed")

	s.cron.Start()
	s.logger.Debug("retention scheduler started",
		"activity_days", s.retention.ActivityDays,
		"audit_days", s.retention.AuditDays,
		"alert_days", s.retention.AlertDays)
}

// Stop halts the cron loop. Jobs already running finish on their own timeout.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) cleanupActivityLogs(ctx context.Context, logger *slog.Logger) error {
	deleted, err := s.engine.CleanupActivityLogs(ctx, s.retention.ActivityDays)
	if err != nil {
		return err
	}
	logger.Info("activity log retention sweep complete",
		"deleted", deleted, "retention_days", s.retention.ActivityDays)
	return nil
}

func (s *Scheduler) cleanupAuditLogs(ctx context.Context, logger *slog.Logger) error {
	deleted, err := s.engine.CleanupAuditLogs(ctx, s.retention.AuditDays)
	if err != nil {
		return err
	}
	logger.Info("audit log retention sweep complete",
		"deleted", deleted, "retention_days", s.retention.AuditDays)
	return nil
}

func (s *Scheduler) cleanupResolvedAlerts(ctx context.Context, logger *slog.Logger) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retention.AlertDays)
	deleted, err := s.queries.DeleteResolvedAlertsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	logger.Info("resolved alert retention sweep complete",
		"deleted", deleted, "retention_days", s.retention.AlertDays)
	return nil
}
