// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const getSetting = `-- name: GetSetting :one
SELECT name, group_name, value, updated_at FROM settings WHERE name = ?
`

func (q *Queries) GetSetting(ctx context.Context, name string) (Setting, error) {
	var i Setting
	err := q.db.QueryRowContext(ctx, getSetting, name).Scan(
		&i.Name,
		&i.GroupName,
		&i.Value,
		&i.UpdatedAt,
	)
	return i, err
}

const listSettings = `-- name: ListSettings :many
SELECT name, group_name, value, updated_at FROM settings ORDER BY name
`

func (q *Queries) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := q.db.QueryContext(ctx, listSettings)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Setting{}
	for rows.Next() {
		var i Setting
		if err := rows.Scan(&i.Name, &i.GroupName, &i.Value, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertSettingSQLite = `-- name: UpsertSetting :exec
INSERT INTO settings (name, group_name, value, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET
    group_name = excluded.group_name,
    value = excluded.value,
    updated_at = excluded.updated_at
`

const upsertSettingMySQL = `-- name: UpsertSetting :exec
INSERT INTO settings (name, group_name, value, updated_at)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    group_name = VALUES(group_name),
    value = VALUES(value),
    updated_at = VALUES(updated_at)
`

type UpsertSettingParams struct {
	Name      string
	GroupName string
	Value     string
	UpdatedAt time.Time
}

func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) error {
	query := upsertSettingSQLite
	if q.dialect == DialectMySQL {
		query = upsertSettingMySQL
	}
	_, err := q.db.ExecContext(ctx, query, arg.Name, arg.GroupName, arg.Value, arg.UpdatedAt)
	return err
}

const deleteSetting = `-- name: DeleteSetting :exec
DELETE FROM settings WHERE name = ?
`

func (q *Queries) DeleteSetting(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, deleteSetting, name)
	return err
}
