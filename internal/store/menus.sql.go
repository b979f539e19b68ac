// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const menuColumns = `id, name, slug, description, html_class, html_id, created_at, updated_at`

func scanMenu(row interface{ Scan(...any) error }) (Menu, error) {
	var i Menu
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.Description,
		&i.HtmlClass,
		&i.HtmlID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createMenu = `-- name: CreateMenu :execlastid
INSERT INTO menus (name, slug, description, html_class, html_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateMenuParams struct {
	Name        string
	Slug        string
	Description string
	HtmlClass   string
	HtmlID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	res, err := q.db.ExecContext(ctx, createMenu,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.HtmlClass,
		arg.HtmlID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return Menu{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Menu{}, err
	}
	return q.GetMenuByID(ctx, id)
}

const getMenuByID = `-- name: GetMenuByID :one
SELECT ` + menuColumns + ` FROM menus WHERE id = ?
`

func (q *Queries) GetMenuByID(ctx context.Context, id int64) (Menu, error) {
	return scanMenu(q.db.QueryRowContext(ctx, getMenuByID, id))
}

const getMenuBySlug = `-- name: GetMenuBySlug :one
SELECT ` + menuColumns + ` FROM menus WHERE slug = ?
`

func (q *Queries) GetMenuBySlug(ctx context.Context, slug string) (Menu, error) {
	return scanMenu(q.db.QueryRowContext(ctx, getMenuBySlug, slug))
}

const listMenus = `-- name: ListMenus :many
SELECT ` + menuColumns + ` FROM menus ORDER BY name, id
`

func (q *Queries) ListMenus(ctx context.Context) ([]Menu, error) {
	rows, err := q.db.QueryContext(ctx, listMenus)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Menu{}
	for rows.Next() {
		i, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateMenu = `-- name: UpdateMenu :exec
UPDATE menus
SET name = ?, slug = ?, description = ?, html_class = ?, html_id = ?, updated_at = ?
WHERE id = ?
`

type UpdateMenuParams struct {
	Name        string
	Slug        string
	Description string
	HtmlClass   string
	HtmlID      string
	UpdatedAt   time.Time
	ID          int64
}

func (q *Queries) UpdateMenu(ctx context.Context, arg UpdateMenuParams) (Menu, error) {
	res, err := q.db.ExecContext(ctx, updateMenu,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.HtmlClass,
		arg.HtmlID,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return Menu{}, err
	}
	if err := requireAffected(res); err != nil {
		return Menu{}, err
	}
	return q.GetMenuByID(ctx, arg.ID)
}

const deleteMenu = `-- name: DeleteMenu :exec
DELETE FROM menus WHERE id = ?
`

// DeleteMenu removes a menu; its items go with it through ON DELETE CASCADE.
func (q *Queries) DeleteMenu(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteMenu, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const menuSlugExists = `-- name: MenuSlugExists :one
SELECT COUNT(*) FROM menus WHERE slug = ?
`

func (q *Queries) MenuSlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, menuSlugExists, slug).Scan(&n)
	return n > 0, err
}

const menuSlugExistsExcluding = `-- name: MenuSlugExistsExcluding :one
SELECT COUNT(*) FROM menus WHERE slug = ? AND id <> ?
`

func (q *Queries) MenuSlugExistsExcluding(ctx context.Context, slug string, id int64) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, menuSlugExistsExcluding, slug, id).Scan(&n)
	return n > 0, err
}

const menuItemColumns = `id, menu_id, parent_id, name, url, html_class, html_id, sort_order, created_at, updated_at`

func scanMenuItem(row interface{ Scan(...any) error }) (MenuItem, error) {
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.MenuID,
		&i.ParentID,
		&i.Name,
		&i.Url,
		&i.HtmlClass,
		&i.HtmlID,
		&i.SortOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createMenuItem = `-- name: CreateMenuItem :execlastid
INSERT INTO menu_items (menu_id, parent_id, name, url, html_class, html_id, sort_order, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateMenuItemParams struct {
	MenuID    int64
	ParentID  sql.NullInt64
	Name      string
	Url       string
	HtmlClass string
	HtmlID    string
	SortOrder int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	res, err := q.db.ExecContext(ctx, createMenuItem,
		arg.MenuID,
		arg.ParentID,
		arg.Name,
		arg.Url,
		arg.HtmlClass,
		arg.HtmlID,
		arg.SortOrder,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return MenuItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return MenuItem{}, err
	}
	return q.GetMenuItemByID(ctx, id)
}

const getMenuItemByID = `-- name: GetMenuItemByID :one
SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = ?
`

func (q *Queries) GetMenuItemByID(ctx context.Context, id int64) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRowContext(ctx, getMenuItemByID, id))
}

const listMenuItems = `-- name: ListMenuItems :many
SELECT ` + menuItemColumns + ` FROM menu_items
WHERE menu_id = ?
ORDER BY sort_order, id
`

// ListMenuItems is the bulk read the tree builder consumes: every item of
// one menu in a single statement.
func (q *Queries) ListMenuItems(ctx context.Context, menuID int64) ([]MenuItem, error) {
	rows, err := q.db.QueryContext(ctx, listMenuItems, menuID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []MenuItem{}
	for rows.Next() {
		i, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countMenuItems = `-- name: CountMenuItems :one
SELECT COUNT(*) FROM menu_items WHERE menu_id = ?
`

func (q *Queries) CountMenuItems(ctx context.Context, menuID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countMenuItems, menuID).Scan(&n)
	return n, err
}

const listRootSortOrders = `-- name: ListRootSortOrders :many
SELECT sort_order FROM menu_items WHERE menu_id = ? AND parent_id IS NULL
`

const listChildSortOrders = `-- name: ListChildSortOrders :many
SELECT sort_order FROM menu_items WHERE menu_id = ? AND parent_id = ?
`

// ListSiblingSortOrders returns the sort orders of the items sharing
// parentID inside a menu. An invalid parentID selects the roots.
func (q *Queries) ListSiblingSortOrders(ctx context.Context, menuID int64, parentID sql.NullInt64) ([]int, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID.Valid {
		rows, err = q.db.QueryContext(ctx, listChildSortOrders, menuID, parentID.Int64)
	} else {
		rows, err = q.db.QueryContext(ctx, listRootSortOrders, menuID)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []int{}
	for rows.Next() {
		var o int
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const updateMenuItem = `-- name: UpdateMenuItem :exec
UPDATE menu_items
SET parent_id = ?, name = ?, url = ?, html_class = ?, html_id = ?, sort_order = ?, updated_at = ?
WHERE id = ?
`

type UpdateMenuItemParams struct {
	ParentID  sql.NullInt64
	Name      string
	Url       string
	HtmlClass string
	HtmlID    string
	SortOrder int64
	UpdatedAt time.Time
	ID        int64
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	res, err := q.db.ExecContext(ctx, updateMenuItem,
		arg.ParentID,
		arg.Name,
		arg.Url,
		arg.HtmlClass,
		arg.HtmlID,
		arg.SortOrder,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return MenuItem{}, err
	}
	if err := requireAffected(res); err != nil {
		return MenuItem{}, err
	}
	return q.GetMenuItemByID(ctx, arg.ID)
}

const updateMenuItemSortOrder = `-- name: UpdateMenuItemSortOrder :execrows
UPDATE menu_items SET sort_order = ?, updated_at = ? WHERE id = ? AND menu_id = ?
`

type UpdateMenuItemSortOrderParams struct {
	SortOrder int64
	UpdatedAt time.Time
	ID        int64
	MenuID    int64
}

func (q *Queries) UpdateMenuItemSortOrder(ctx context.Context, arg UpdateMenuItemSortOrderParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateMenuItemSortOrder,
		arg.SortOrder,
		arg.UpdatedAt,
		arg.ID,
		arg.MenuID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteMenuItem = `-- name: DeleteMenuItem :exec
DELETE FROM menu_items WHERE id = ?
`

// DeleteMenuItem removes an item and, through ON DELETE CASCADE, its subtree.
func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteMenuItem, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// requireAffected maps an UPDATE or DELETE that touched no rows to
// sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
