// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"
)

const createEvent = `-- name: CreateEvent :exec
INSERT INTO events (level, category, message, request_id, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	RequestID string
	Metadata  string
	CreatedAt time.Time
}

func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	_, err := q.db.ExecContext(ctx, createEvent,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.RequestID,
		arg.Metadata,
		arg.CreatedAt,
	)
	return err
}

// ListEventsParams filters the event log. Empty Level or Category match
// every row.
type ListEventsParams struct {
	Level    string
	Category string
	Limit    int64
	Offset   int64
}

func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT id, level, category, message, request_id, metadata, created_at FROM events WHERE 1 = 1")
	if arg.Level != "" {
		sb.WriteString(" AND level = ?")
		args = append(args, arg.Level)
	}
	if arg.Category != "" {
		sb.WriteString(" AND category = ?")
		args = append(args, arg.Category)
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Event{}
	for rows.Next() {
		var i Event
		if err := rows.Scan(
			&i.ID,
			&i.Level,
			&i.Category,
			&i.Message,
			&i.RequestID,
			&i.Metadata,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteEventsBefore = `-- name: DeleteEventsBefore :execrows
DELETE FROM events WHERE created_at < ?
`

// DeleteEventsBefore prunes the event log and reports how many rows went.
func (q *Queries) DeleteEventsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEventsBefore, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountEvents counts the rows ListEvents would page through.
func (q *Queries) CountEvents(ctx context.Context, level, category string) (int64, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT COUNT(*) FROM events WHERE 1 = 1")
	if level != "" {
		sb.WriteString(" AND level = ?")
		args = append(args, level)
	}
	if category != "" {
		sb.WriteString(" AND category = ?")
		args = append(args, category)
	}

	var n int64
	err := q.db.QueryRowContext(ctx, sb.String(), args...).Scan(&n)
	return n, err
}
