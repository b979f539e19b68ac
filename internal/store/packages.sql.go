// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const getPackage = `-- name: GetPackage :one
SELECT name, is_active, updated_at FROM packages WHERE name = ?
`

func (q *Queries) GetPackage(ctx context.Context, name string) (Package, error) {
	var i Package
	err := q.db.QueryRowContext(ctx, getPackage, name).Scan(&i.Name, &i.IsActive, &i.UpdatedAt)
	return i, err
}

const listPackages = `-- name: ListPackages :many
SELECT name, is_active, updated_at FROM packages ORDER BY name
`

func (q *Queries) ListPackages(ctx context.Context) ([]Package, error) {
	rows, err := q.db.QueryContext(ctx, listPackages)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Package{}
	for rows.Next() {
		var i Package
		if err := rows.Scan(&i.Name, &i.IsActive, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createPackage = `-- name: CreatePackage :exec
INSERT INTO packages (name, is_active, updated_at) VALUES (?, ?, ?)
`

type CreatePackageParams struct {
	Name      string
	IsActive  bool
	UpdatedAt time.Time
}

func (q *Queries) CreatePackage(ctx context.Context, arg CreatePackageParams) error {
	_, err := q.db.ExecContext(ctx, createPackage, arg.Name, arg.IsActive, arg.UpdatedAt)
	return err
}

const setPackageActive = `-- name: SetPackageActive :exec
UPDATE packages SET is_active = ?, updated_at = ? WHERE name = ?
`

type SetPackageActiveParams struct {
	IsActive  bool
	UpdatedAt time.Time
	Name      string
}

func (q *Queries) SetPackageActive(ctx context.Context, arg SetPackageActiveParams) error {
	res, err := q.db.ExecContext(ctx, setPackageActive, arg.IsActive, arg.UpdatedAt, arg.Name)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const listPackageMigrations = `-- name: ListPackageMigrations :many
SELECT version FROM package_migrations WHERE package_name = ? ORDER BY version
`

func (q *Queries) ListPackageMigrations(ctx context.Context, packageName string) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listPackageMigrations, packageName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	versions := []int64{}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

const recordPackageMigration = `-- name: RecordPackageMigration :exec
INSERT INTO package_migrations (package_name, version, applied_at) VALUES (?, ?, ?)
`

type RecordPackageMigrationParams struct {
	PackageName string
	Version     int64
	AppliedAt   time.Time
}

func (q *Queries) RecordPackageMigration(ctx context.Context, arg RecordPackageMigrationParams) error {
	_, err := q.db.ExecContext(ctx, recordPackageMigration, arg.PackageName, arg.Version, arg.AppliedAt)
	return err
}
