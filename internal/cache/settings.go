// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"time"
)

// SettingsKey is the single key the settings cache stores its map under.
const SettingsKey = "all"

// SettingValues maps a setting name to its persisted raw value.
type SettingValues map[string]string

// SettingsCache caches every persisted setting value as one entry.
type SettingsCache = Loading[SettingValues]

// NewSettingsCache creates the settings cache. load is called with
// SettingsKey on a miss.
func NewSettingsCache(backend Cacher, ttl time.Duration, load LoadFunc[SettingValues]) *SettingsCache {
	return NewLoading(backend, "settings", "settings:", ttl, load)
}
