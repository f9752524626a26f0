// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
)

// DBTX is the subset of *sql.DB / *sql.Tx the query layer needs.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries provides typed access to the log tables.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// DefaultQueryLimit caps list queries when the caller supplies no limit.
const DefaultQueryLimit = 50

// marshalJSON serializes a metadata bag for storage. A nil map becomes "{}"
// so the column stays valid JSON.
func marshalJSON(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// unmarshalJSON deserializes a stored metadata bag. Invalid or empty content
// yields a nil map rather than an error: stored JSON is never interpreted by
// this layer, only carried.
func unmarshalJSON(s string) map[string]any {
	if s == "" || s == "{}" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

// nullableJSON serializes an optional before/after snapshot, keeping NULL for
// absent snapshots so they are distinguishable from empty ones.
func nullableJSON(m map[string]any) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: marshalJSON(m), Valid: true}
}
