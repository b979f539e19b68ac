// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package module provides the package system zen-cms is assembled from.
// A package registers routes, admin routes, hooks, settings and admin
// navigation entries, and may ship its own database migrations.
package module

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/config"
	"github.com/olegiv/zen-cms/internal/scheduler"
	"github.com/olegiv/zen-cms/internal/settings"
	"github.com/olegiv/zen-cms/internal/store"
)

// Context provides access to application services for packages.
type Context struct {
	Store     *store.Store
	Logger    *slog.Logger
	Config    *config.Config
	Cache     cache.Cacher
	Settings  *settings.Registry
	Hooks     *HookRegistry
	Scheduler *scheduler.Registry
}

// Module defines the interface that all packages must implement.
type Module interface {
	// Name returns the package name. It doubles as the settings group name.
	Name() string
	Version() string
	Description() string
	// Dependencies returns the names of packages that must be registered too.
	Dependencies() []string

	// Init initializes the package with the given context.
	Init(ctx *Context) error
	// Shutdown performs cleanup when the package is shutting down.
	Shutdown() error

	// RegisterRoutes registers public routes for the package.
	RegisterRoutes(r chi.Router)
	// RegisterAdminRoutes registers admin API routes for the package.
	RegisterAdminRoutes(r chi.Router)

	Migrations() []Migration
	// Navigation returns the admin navigation entries of the package.
	Navigation() []NavItem
	// Settings returns the settings the package declares. Names must be
	// prefixed with the package name.
	Settings() []settings.Setting
}

// Migration is a database change owned by a package. Up runs inside a
// transaction together with the bookkeeping row.
type Migration struct {
	Version     int64
	Description string
	Up          func(ctx context.Context, q *store.Queries) error
}

// BaseModule provides default no-op implementations of Module.
// Packages embed it and override what they need.
type BaseModule struct {
	name        string
	version     string
	description string
	ctx         *Context
}

// NewBaseModule creates a new BaseModule with the given metadata.
func NewBaseModule(name, version, description string) BaseModule {
	return BaseModule{
		name:        name,
		version:     version,
		description: description,
	}
}

func (m *BaseModule) Name() string { return m.name }

func (m *BaseModule) Version() string { return m.version }

func (m *BaseModule) Description() string { return m.description }

func (m *BaseModule) Dependencies() []string { return nil }

// Init stores the context for later use through Context.
func (m *BaseModule) Init(ctx *Context) error {
	m.ctx = ctx
	return nil
}

func (m *BaseModule) Shutdown() error { return nil }

func (m *BaseModule) RegisterRoutes(_ chi.Router) {}

func (m *BaseModule) RegisterAdminRoutes(_ chi.Router) {}

func (m *BaseModule) Migrations() []Migration { return nil }

func (m *BaseModule) Navigation() []NavItem { return nil }

func (m *BaseModule) Settings() []settings.Setting { return nil }

// Context returns the context passed to Init.
func (m *BaseModule) Context() *Context { return m.ctx }
