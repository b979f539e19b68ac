// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// Default menu slugs
const (
	MenuMain   = "main"
	MenuFooter = "footer"
)

// ProtectedMenus cannot be deleted through the API.
var ProtectedMenus = []string{MenuMain, MenuFooter}

// Menu represents a navigation menu.
type Menu struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	HTMLClass   string    `json:"html_class,omitempty"`
	HTMLID      string    `json:"html_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsProtected reports whether the menu is one of the default menus.
func (m Menu) IsProtected() bool {
	for _, slug := range ProtectedMenus {
		if m.Slug == slug {
			return true
		}
	}
	return false
}

// MenuItem represents an item in a navigation menu.
type MenuItem struct {
	ID        int64     `json:"id"`
	MenuID    int64     `json:"menu_id"`
	ParentID  *int64    `json:"parent_id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	HTMLClass string    `json:"html_class,omitempty"`
	HTMLID    string    `json:"html_id,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetParentID assigns the parent. Assigning the item to itself is ignored
// and the current parent is kept.
func (i *MenuItem) SetParentID(parentID *int64) {
	if parentID != nil && i.ID != 0 && *parentID == i.ID {
		return
	}
	if parentID == nil {
		i.ParentID = nil
		return
	}
	p := *parentID
	i.ParentID = &p
}

// TreeKey implements menutree.Entry.
func (i MenuItem) TreeKey() int64 { return i.ID }

// TreeParent implements menutree.Entry.
func (i MenuItem) TreeParent() (int64, bool) {
	if i.ParentID == nil {
		return 0, false
	}
	return *i.ParentID, true
}

// TreeOrder implements menutree.Entry.
func (i MenuItem) TreeOrder() int { return i.SortOrder }
