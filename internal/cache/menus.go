// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"time"

	"github.com/olegiv/zen-cms/internal/menutree"
	"github.com/olegiv/zen-cms/internal/model"
)

// MenuTree is a menu together with its built item forest.
type MenuTree struct {
	Menu  model.Menu                      `json:"menu"`
	Items []menutree.Node[model.MenuItem] `json:"items"`
}

// MenuCache caches built trees by menu slug.
type MenuCache = Loading[MenuTree]

// NewMenuCache creates the menu tree cache. load is called with a menu
// slug on a miss.
func NewMenuCache(backend Cacher, ttl time.Duration, load LoadFunc[MenuTree]) *MenuCache {
	return NewLoading(backend, "menus", "menu:", ttl, load)
}
