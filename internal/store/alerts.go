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

// InventoryAlertFilter narrows an inventory alert query.
type InventoryAlertFilter struct {
	ProductID      string
	LocationID     string
	AlertType      string
	OnlyUnresolved bool
	Limit          int
	Offset         int
}

// InsertInventoryAlert persists one alert record for historical tracking and
// returns it with the store-assigned ID and creation time.
func (q *Queries) InsertInventoryAlert(ctx context.Context, alert model.InventoryAlert) (model.InventoryAlert, error) {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	res, err := q.db.ExecContext(ctx, `
		INSERT INTO inventory_alerts (
			product_id, location_id, alert_type, severity,
			current_quantity, threshold_quantity, message, is_resolved, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, alert.ProductID, alert.LocationID, alert.AlertType, alert.Severity,
		alert.CurrentQuantity, alert.ThresholdQuantity, alert.Message,
		alert.IsResolved, alert.CreatedAt)
	if err != nil {
		return model.InventoryAlert{}, fmt.Errorf("inserting inventory alert: %w", err)
	}

	alert.ID, err = res.LastInsertId()
	if err != nil {
		return model.InventoryAlert{}, fmt.Errorf("reading inventory alert id: %w", err)
	}
	return alert, nil
}

// ListInventoryAlerts returns matching alerts ordered newest-first.
func (q *Queries) ListInventoryAlerts(ctx context.Context, filter InventoryAlertFilter) ([]model.InventoryAlert, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, product_id, location_id, alert_type, severity,
		       current_quantity, threshold_quantity, message, is_resolved, created_at
		FROM inventory_alerts
		WHERE 1=1`)

	var args []any
	if filter.ProductID != "" {
		sb.WriteString(" AND product_id = ?")
		args = append(args, filter.ProductID)
	}
	if filter.LocationID != "" {
		sb.WriteString(" AND location_id = ?")
		args = append(args, filter.LocationID)
	}
	if filter.AlertType != "" {
		sb.WriteString(" AND alert_type = ?")
		args = append(args, filter.AlertType)
	}
	if filter.OnlyUnresolved {
		sb.WriteString(" AND is_resolved = 0")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := q.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying inventory alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var alerts []model.InventoryAlert
	for rows.Next() {
		var alert model.InventoryAlert
		if err := rows.Scan(&alert.ID, &alert.ProductID, &alert.LocationID,
			&alert.AlertType, &alert.Severity, &alert.CurrentQuantity,
			&alert.ThresholdQuantity, &alert.Message, &alert.IsResolved,
			&alert.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning inventory alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading inventory alerts: %w", err)
	}
	return alerts, nil
}

// ResolveInventoryAlert marks an alert as resolved. Resolution is the only
// permitted mutation on a persisted alert.
func (q *Queries) ResolveInventoryAlert(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE inventory_alerts SET is_resolved = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("resolving inventory alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking alert resolution: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("inventory alert %d not found", id)
	}
	return nil
}

// DeleteResolvedAlertsBefore removes resolved alerts created before the cutoff
// and returns the number deleted.
func (q *Queries) DeleteResolvedAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"DELETE FROM inventory_alerts WHERE is_resolved = 1 AND created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting resolved alerts: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted alerts: %w", err)
	}
	return deleted, nil
}
