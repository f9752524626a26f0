// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Inventory alert types.
const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
	AlertOverstock  = "overstock"
)

// Inventory alert severities. Alerts use a simpler scale than log records
// since they are advisory notifications, not audit evidence.
const (
	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// InventoryAlert records a stock-level condition detected by the realtime
// inventory watcher. Persisted for historical tracking; IsResolved is the only
// mutable field.
type InventoryAlert struct {
	ID                int64
	ProductID         string
	LocationID        string
	AlertType         string
	Severity          string
	CurrentQuantity   int64
	ThresholdQuantity int64
	Message           string
	IsResolved        bool
	CreatedAt         time.Time
}
