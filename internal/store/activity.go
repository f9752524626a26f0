// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/posaudit-go/internal/model"
)

// ActivityLogFilter narrows an activity log query. All fields are optional and
// combine conjunctively. Values are passed through to SQL unvalidated; an
// unknown type or severity simply matches no rows.
type ActivityLogFilter struct {
	CompanyID    string
	UserID       string
	ActivityType model.ActivityType
	Severity     model.Severity
	DateFrom     *time.Time
	DateTo       *time.Time
	Limit        int
	Offset       int
}

// InsertActivityLog persists one activity record and returns it with the
// store-assigned ID and creation time.
func (q *Queries) InsertActivityLog(ctx context.Context, entry model.ActivityLog) (model.ActivityLog, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.Severity = entry.Severity.OrDefault()

	res, err := q.db.ExecContext(ctx, `
		INSERT INTO activity_logs (
			company_id, branch_id, location_id, user_id, activity_type,
			description, metadata, ip_address, user_agent, session_id,
			severity, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.CompanyID, entry.BranchID, entry.LocationID, entry.UserID,
		string(entry.ActivityType), entry.Description, marshalJSON(entry.Metadata),
		entry.IPAddress, entry.UserAgent, entry.SessionID,
		string(entry.Severity), entry.CreatedAt)
	if err != nil {
		return model.ActivityLog{}, fmt.Errorf("inserting activity log: %w", err)
	}

	entry.ID, err = res.LastInsertId()
	if err != nil {
		return model.ActivityLog{}, fmt.Errorf("reading activity log id: %w", err)
	}
	return entry, nil
}

// ListActivityLogs returns matching records ordered newest-first. When the
// filter supplies no limit, DefaultQueryLimit applies.
func (q *Queries) ListActivityLogs(ctx context.Context, filter ActivityLogFilter) ([]model.ActivityLog, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, company_id, branch_id, location_id, user_id, activity_type,
		       description, metadata, ip_address, user_agent, session_id,
		       severity, created_at
		FROM activity_logs
		WHERE 1=1`)

	var args []any
	if filter.CompanyID != "" {
		sb.WriteString(" AND company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if filter.UserID != "" {
		sb.WriteString(" AND user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.ActivityType != "" {
		sb.WriteString(" AND activity_type = ?")
		args = append(args, string(filter.ActivityType))
	}
	if filter.Severity != "" {
		sb.WriteString(" AND severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.DateFrom != nil {
		sb.WriteString(" AND created_at >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		sb.WriteString(" AND created_at <= ?")
		args = append(args, *filter.DateTo)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := q.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []model.ActivityLog
	for rows.Next() {
		var (
			entry        model.ActivityLog
			activityType string
			metadata     string
			severity     string
		)
		if err := rows.Scan(&entry.ID, &entry.CompanyID, &entry.BranchID,
			&entry.LocationID, &entry.UserID, &activityType, &entry.Description,
			&metadata, &entry.IPAddress, &entry.UserAgent, &entry.SessionID,
			&severity, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity log: %w", err)
		}
		entry.ActivityType = model.ActivityType(activityType)
		entry.Metadata = unmarshalJSON(metadata)
		entry.Severity = model.Severity(severity)
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading activity logs: %w", err)
	}
	return logs, nil
}

// DeleteActivityLogsBefore removes all activity records created before the
// cutoff, across every company, and returns the number deleted.
func (q *Queries) DeleteActivityLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"DELETE FROM activity_logs WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting old activity logs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted activity logs: %w", err)
	}
	return deleted, nil
}
