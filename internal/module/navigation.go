// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"github.com/olegiv/zen-cms/internal/menutree"
)

// NavItem is one admin navigation entry. Entries nest through Parent,
// which names the Key of another entry from any active package.
type NavItem struct {
	Key       string `json:"key"`
	Parent    string `json:"parent,omitempty"`
	Label     string `json:"label"`
	URL       string `json:"url,omitempty"`
	SortOrder int    `json:"sort_order"`
	Package   string `json:"package"`
}

func (n NavItem) TreeKey() string { return n.Key }

func (n NavItem) TreeParent() (string, bool) { return n.Parent, n.Parent != "" }

func (n NavItem) TreeOrder() int { return n.SortOrder }

// Navigation returns the admin navigation forest of all active packages.
// Entries whose parent belongs to an inactive package become roots.
func (r *Registry) Navigation() []menutree.Node[NavItem] {
	r.mu.RLock()
	var items []NavItem
	for _, name := range r.order {
		if active, ok := r.activeStatus[name]; ok && !active {
			continue
		}
		for _, n := range r.modules[name].Navigation() {
			n.Package = name
			items = append(items, n)
		}
	}
	r.mu.RUnlock()

	return menutree.Build[string](items)
}
