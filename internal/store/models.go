// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type Menu struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	HtmlClass   string
	HtmlID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MenuItem struct {
	ID        int64
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

type Setting struct {
	Name      string
	GroupName string
	Value     string
	UpdatedAt time.Time
}

type Package struct {
	Name      string
	IsActive  bool
	UpdatedAt time.Time
}

type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	RequestID string
	Metadata  string
	CreatedAt time.Time
}
