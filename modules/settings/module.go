// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package settings provides the admin API over the settings registry:
// listing groups with their effective values, storing values and resetting
// them to their defaults.
package settings

import (
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/zen-cms/internal/module"
)

// Module implements the module.Module interface for the settings admin.
type Module struct {
	module.BaseModule
	ctx *module.Context
}

// New creates a new instance of the settings package.
func New() *Module {
	return &Module{
		BaseModule: module.NewBaseModule(
			"settings",
			"1.0.0",
			"Settings administration",
		),
	}
}

// Init initializes the package with the given context.
func (m *Module) Init(ctx *module.Context) error {
	m.ctx = ctx
	ctx.Logger.Info("settings package initialized", "groups", len(ctx.Settings.Groups()))
	return nil
}

// RegisterAdminRoutes registers admin routes for the package.
func (m *Module) RegisterAdminRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", m.handleListGroups)
		r.Get("/{group}", m.handleListGroup)
		r.Put("/{group}/{key}", m.handleUpdate)
		r.Delete("/{group}/{key}", m.handleReset)
	})
}

// Navigation returns the admin navigation entries.
func (m *Module) Navigation() []module.NavItem {
	return []module.NavItem{
		{Key: "settings", Label: "Settings", URL: "/admin/settings", SortOrder: 90},
	}
}
