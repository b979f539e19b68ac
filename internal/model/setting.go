// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// Setting value types
const (
	SettingTypeString = "string"
	SettingTypeInt    = "int"
	SettingTypeBool   = "bool"
	SettingTypeSelect = "select"
)

// SettingValue is a persisted setting value.
type SettingValue struct {
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
