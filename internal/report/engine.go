// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package report derives filtered views, aggregate reports and retention
// sweeps from the persisted log tables. It reads the store directly and is
// independent of the write pipelines.
package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/olegiv/posaudit-go/internal/cache"
	"github.com/olegiv/posaudit-go/internal/model"
	"github.com/olegiv/posaudit-go/internal/store"
)

// reportQueryCap bounds the number of entries a report aggregates over.
const reportQueryCap = 1000

// statisticsQueryCap bounds the window scan for statistics and summaries.
const statisticsQueryCap = 10000

// recentEntriesLimit is how many raw entries an activity summary carries.
const recentEntriesLimit = 50

// recentDaysLimit is how many per-day buckets statistics return.
const recentDaysLimit = 30

// peakHoursLimit is how many peak hours an activity summary reports.
const peakHoursLimit = 5

// statsCacheTTL keeps dashboard statistics fresh enough while absorbing
// repeated polling.
const statsCacheTTL = time.Minute

// Engine answers log queries and computes aggregates. Read failures propagate
// to the caller; this layer never swallows errors the way the write path does.
type Engine struct {
	queries *store.Queries
	cache   cache.Cacher
	logger  *slog.Logger
}

// NewEngine creates a report engine. The cache is optional; pass nil to read
// the store on every call.
func NewEngine(db *sql.DB, c cache.Cacher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		queries: store.New(db),
		cache:   c,
		logger:  logger,
	}
}

// QueryActivityLogs returns activity records matching the filter, newest-first.
func (e *Engine) QueryActivityLogs(ctx context.Context, filter store.ActivityLogFilter) ([]model.ActivityLog, error) {
	logs, err := e.queries.ListActivityLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("querying activity logs: %w", err)
	}
	return logs, nil
}

// QueryAuditLogs returns audit records matching the filter, newest-first.
func (e *Engine) QueryAuditLogs(ctx context.Context, filter store.AuditLogFilter) ([]model.AuditLog, error) {
	logs, err := e.queries.ListAuditLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("querying audit logs: %w", err)
	}
	return logs, nil
}

// TimelineBucket is one day of report timeline data.
type TimelineBucket struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AuditReport is a filtered slice of the audit trail with aggregate counts.
type AuditReport struct {
	TotalEntries      int                       `json:"total_entries"`
	Entries           []model.AuditLog          `json:"entries"`
	ActionsByType     map[model.AuditAction]int `json:"actions_by_type"`
	ActionsByUser     map[string]int            `json:"actions_by_user"`
	ActionsBySeverity map[model.Severity]int    `json:"actions_by_severity"`
	Timeline          []TimelineBucket          `json:"timeline"`
}

// GenerateAuditReport queries the audit log with the report cap applied and
// computes counts by action, by user and by severity plus a per-day timeline
// sorted ascending. An empty result yields zero-filled aggregates, not an error.
func (e *Engine) GenerateAuditReport(ctx context.Context, filter store.AuditLogFilter) (*AuditReport, error) {
	filter.Limit = reportQueryCap
	entries, err := e.queries.ListAuditLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("generating audit report: %w", err)
	}

	report := &AuditReport{
		TotalEntries:      len(entries),
		Entries:           entries,
		ActionsByType:     make(map[model.AuditAction]int),
		ActionsByUser:     make(map[string]int),
		ActionsBySeverity: make(map[model.Severity]int),
	}

	byDay := make(map[string]int)
	for _, entry := range entries {
		report.ActionsByType[entry.Action]++
		report.ActionsByUser[entry.UserID]++
		report.ActionsBySeverity[entry.Severity]++
		byDay[entry.CreatedAt.UTC().Format("2006-01-02")]++
	}

	report.Timeline = make([]TimelineBucket, 0, len(byDay))
	for date, count := range byDay {
		report.Timeline = append(report.Timeline, TimelineBucket{Date: date, Count: count})
	}
	sort.Slice(report.Timeline, func(i, j int) bool {
		return report.Timeline[i].Date < report.Timeline[j].Date
	})

	return report, nil
}

// DayActivity is one day of audit statistics.
type DayActivity struct {
	Date          string `json:"date"`
	Count         int    `json:"count"`
	CriticalCount int    `json:"critical_count"`
}

// AuditStatistics summarizes the audit trail over a trailing window.
type AuditStatistics struct {
	TotalLogs          int           `json:"total_logs"`
	CriticalEvents     int           `json:"critical_events"`
	HighSeverityEvents int           `json:"high_severity_events"`
	RecentActivity     []DayActivity `json:"recent_activity"`
}

// AuditStatistics computes totals and a per-day breakdown for the trailing
// window of days, newest day first, truncated to the most recent 30 days.
func (e *Engine) AuditStatistics(ctx context.Context, companyID string, days int) (*AuditStatistics, error) {
	cacheKey := fmt.Sprintf("audit-stats:%s:%d", companyID, days)
	var cached AuditStatistics
	if e.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	from := time.Now().UTC().AddDate(0, 0, -days)
	entries, err := e.queries.ListAuditLogs(ctx, store.AuditLogFilter{
		CompanyID: companyID,
		DateFrom:  &from,
		Limit:     statisticsQueryCap,
	})
	if err != nil {
		return nil, fmt.Errorf("computing audit statistics: %w", err)
	}

	stats := &AuditStatistics{TotalLogs: len(entries)}
	byDay := make(map[string]*DayActivity)
	for _, entry := range entries {
		switch entry.Severity {
		case model.SeverityCritical:
			stats.CriticalEvents++
		case model.SeverityHigh:
			stats.HighSeverityEvents++
		}

		date := entry.CreatedAt.UTC().Format("2006-01-02")
		day, ok := byDay[date]
		if !ok {
			day = &DayActivity{Date: date}
			byDay[date] = day
		}
		day.Count++
		if entry.Severity == model.SeverityCritical {
			day.CriticalCount++
		}
	}

	stats.RecentActivity = make([]DayActivity, 0, len(byDay))
	for _, day := range byDay {
		stats.RecentActivity = append(stats.RecentActivity, *day)
	}
	sort.Slice(stats.RecentActivity, func(i, j int) bool {
		return stats.RecentActivity[i].Date > stats.RecentActivity[j].Date
	})
	if len(stats.RecentActivity) > recentDaysLimit {
		stats.RecentActivity = stats.RecentActivity[:recentDaysLimit]
	}

	e.cacheSet(ctx, cacheKey, stats)
	return stats, nil
}

// PeakHour is an hour-of-day bucket in an activity summary.
type PeakHour struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// ActivitySummary aggregates the activity log over a trailing window.
type ActivitySummary struct {
	TotalActivities  int                        `json:"total_activities"`
	ActivitiesByType map[model.ActivityType]int `json:"activities_by_type"`
	ActivitiesByUser map[string]int             `json:"activities_by_user"`
	RecentActivities []model.ActivityLog        `json:"recent_activities"`
	PeakHours        []PeakHour                 `json:"peak_hours"`
}

// ActivitySummary computes totals by type and user, the 50 most recent
// entries and the top five busiest hours over the trailing window of days.
func (e *Engine) ActivitySummary(ctx context.Context, companyID string, days int) (*ActivitySummary, error) {
	cacheKey := fmt.Sprintf("activity-summary:%s:%d", companyID, days)
	var cached ActivitySummary
	if e.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	from := time.Now().UTC().AddDate(0, 0, -days)
	entries, err := e.queries.ListActivityLogs(ctx, store.ActivityLogFilter{
		CompanyID: companyID,
		DateFrom:  &from,
		Limit:     statisticsQueryCap,
	})
	if err != nil {
		return nil, fmt.Errorf("computing activity summary: %w", err)
	}

	summary := &ActivitySummary{
		TotalActivities:  len(entries),
		ActivitiesByType: make(map[model.ActivityType]int),
		ActivitiesByUser: make(map[string]int),
	}

	byHour := make(map[int]int)
	for _, entry := range entries {
		summary.ActivitiesByType[entry.ActivityType]++
		summary.ActivitiesByUser[entry.UserID]++
		byHour[entry.CreatedAt.UTC().Hour()]++
	}

	summary.RecentActivities = entries
	if len(summary.RecentActivities) > recentEntriesLimit {
		summary.RecentActivities = summary.RecentActivities[:recentEntriesLimit]
	}

	summary.PeakHours = make([]PeakHour, 0, len(byHour))
	for hour, count := range byHour {
		summary.PeakHours = append(summary.PeakHours, PeakHour{Hour: hour, Count: count})
	}
	sort.Slice(summary.PeakHours, func(i, j int) bool {
		if summary.PeakHours[i].Count != summary.PeakHours[j].Count {
			return summary.PeakHours[i].Count > summary.PeakHours[j].Count
		}
		return summary.PeakHours[i].Hour < summary.PeakHours[j].Hour
	})
	if len(summary.PeakHours) > peakHoursLimit {
		summary.PeakHours = summary.PeakHours[:peakHoursLimit]
	}

	e.cacheSet(ctx, cacheKey, summary)
	return summary, nil
}

// CleanupActivityLogs deletes activity records older than retentionDays across
// all companies and returns the number deleted.
func (e *Engine) CleanupActivityLogs(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return e.queries.DeleteActivityLogsBefore(ctx, cutoff)
}

// CleanupAuditLogs deletes audit records older than retentionDays across all
// companies and returns the number deleted.
func (e *Engine) CleanupAuditLogs(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return e.queries.DeleteAuditLogsBefore(ctx, cutoff)
}

// cacheGet loads a cached aggregate. Cache failures are treated as misses;
// they must never fail a read.
func (e *Engine) cacheGet(ctx context.Context, key string, out any) bool {
	if e.cache == nil {
		return false
	}
	data, err := e.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		e.logger.Warn("dropping undecodable cache entry", "key", key, "error", err)
		_ = e.cache.Delete(ctx, key)
		return false
	}
	return true
}

// cacheSet stores a computed aggregate. Failures are logged and ignored.
func (e *Engine) cacheSet(ctx context.Context, key string, value any) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, key, data, statsCacheTTL); err != nil {
		e.logger.Warn("caching report failed", "key", key, "error", err)
	}
}
