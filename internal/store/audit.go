// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/posaudit-go/internal/model"
)

// AuditLogFilter narrows an audit log query. All fields are optional and
// combine conjunctively.
type AuditLogFilter struct {
	CompanyID string
	UserID    string
	Action    model.AuditAction
	TableName string
	RecordID  string
	Severity  model.Severity
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

// InsertAuditLog persists one audit record and returns it with the
// store-assigned ID and creation time.
func (q *Queries) InsertAuditLog(ctx context.Context, entry model.AuditLog) (model.AuditLog, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.Severity = entry.Severity.OrDefault()

	res, err := q.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			company_id, user_id, action, table_name, record_id,
			old_values, new_values, ip_address, user_agent,
			severity, description, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.CompanyID, entry.UserID, string(entry.Action), entry.TableName,
		entry.RecordID, nullableJSON(entry.OldValues), nullableJSON(entry.NewValues),
		entry.IPAddress, entry.UserAgent, string(entry.Severity),
		entry.Description, marshalJSON(entry.Metadata), entry.CreatedAt)
	if err != nil {
		return model.AuditLog{}, fmt.Errorf("inserting audit log: %w", err)
	}

	entry.ID, err = res.LastInsertId()
	if err != nil {
		return model.AuditLog{}, fmt.Errorf("reading audit log id: %w", err)
	}
	return entry, nil
}

// ListAuditLogs returns matching records ordered newest-first. When the filter
// supplies no limit, DefaultQueryLimit applies.
func (q *Queries) ListAuditLogs(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, company_id, user_id, action, table_name, record_id,
		       old_values, new_values, ip_address, user_agent,
		       severity, description, metadata, created_at
		FROM audit_logs
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
	if filter.Action != "" {
		sb.WriteString(" AND action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.TableName != "" {
		sb.WriteString(" AND table_name = ?")
		args = append(args, filter.TableName)
	}
	if filter.RecordID != "" {
		sb.WriteString(" AND record_id = ?")
		args = append(args, filter.RecordID)
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
		return nil, fmt.Errorf("querying audit logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []model.AuditLog
	for rows.Next() {
		var (
			entry     model.AuditLog
			action    string
			oldValues sql.NullString
			newValues sql.NullString
			metadata  string
			severity  string
		)
		if err := rows.Scan(&entry.ID, &entry.CompanyID, &entry.UserID, &action,
			&entry.TableName, &entry.RecordID, &oldValues, &newValues,
			&entry.IPAddress, &entry.UserAgent, &severity, &entry.Description,
			&metadata, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit log: %w", err)
		}
		entry.Action = model.AuditAction(action)
		if oldValues.Valid {
			entry.OldValues = unmarshalJSON(oldValues.String)
		}
		if newValues.Valid {
			entry.NewValues = unmarshalJSON(newValues.String)
		}
		entry.Metadata = unmarshalJSON(metadata)
		entry.Severity = model.Severity(severity)
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading audit logs: %w", err)
	}
	return logs, nil
}

// DeleteAuditLogsBefore removes all audit records created before the cutoff,
// across every company, and returns the number deleted.
func (q *Queries) DeleteAuditLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"DELETE FROM audit_logs WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting old audit logs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted audit logs: %w", err)
	}
	return deleted, nil
}
