// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/zen-cms/internal/handler/api"
	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/settings"
	"github.com/olegiv/zen-cms/internal/store"
)

var (
	ErrNotRegistered      = errors.New("package not registered")
	ErrNotInitialized     = errors.New("package registry not initialized")
	ErrDependencyInactive = errors.New("package dependency is inactive")
	ErrRequiredByActive   = errors.New("package is required by an active package")
)

// Registry manages package registration and lifecycle.
type Registry struct {
	modules      map[string]Module
	order        []string // initialization order
	activeStatus map[string]bool
	ctx          *Context
	logger       *slog.Logger
	mu           sync.RWMutex
}

// NewRegistry creates a new package registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		modules:      make(map[string]Module),
		order:        make([]string, 0),
		activeStatus: make(map[string]bool),
		logger:       logger,
	}
}

// Register adds a package to the registry. Packages are initialized in
// the order they are added, so dependencies must be registered first.
func (r *Registry) Register(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("package %q already registered", name)
	}

	r.modules[name] = m
	r.order = append(r.order, name)
	r.logger.Debug("package registered", "name", name, "version", m.Version())

	return nil
}

// Get returns a package by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[name]
	return m, ok
}

// List returns all registered packages in registration order.
func (r *Registry) List() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modules := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		modules = append(modules, r.modules[name])
	}
	return modules
}

// InitAll checks dependencies, runs pending package migrations, loads the
// persisted active state, declares package settings and finally calls
// Init on every package in registration order.
func (r *Registry) InitAll(ctx context.Context, mctx *Context) error {
	if mctx == nil || mctx.Store == nil {
		return fmt.Errorf("initializing packages: store is required")
	}

	modules, err := r.prepare(ctx, mctx)
	if err != nil {
		return err
	}

	if mctx.Hooks != nil {
		mctx.Hooks.SetIsModuleActive(r.IsActive)
	}

	for _, m := range modules {
		if err := m.Init(mctx); err != nil {
			return fmt.Errorf("initializing package %q: %w", m.Name(), err)
		}
		r.logger.Info("package initialized", "name", m.Name(), "active", r.IsActive(m.Name()))
	}

	return nil
}

// prepare runs the steps of InitAll that touch registry state and returns
// the packages in initialization order.
func (r *Registry) prepare(ctx context.Context, mctx *Context) ([]Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx = mctx

	if err := r.checkDependencies(); err != nil {
		return nil, err
	}

	if err := r.runAllMigrations(ctx, mctx.Store); err != nil {
		return nil, err
	}

	if err := r.loadActiveStatus(ctx, mctx.Store); err != nil {
		return nil, fmt.Errorf("loading package active status: %w", err)
	}

	if mctx.Settings != nil {
		if err := r.registerSettings(mctx.Settings); err != nil {
			return nil, err
		}
	}

	modules := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		modules = append(modules, r.modules[name])
	}
	return modules, nil
}

// checkDependencies verifies that every dependency is registered before
// the package that needs it.
func (r *Registry) checkDependencies() error {
	for i, name := range r.order {
		for _, dep := range r.modules[name].Dependencies() {
			pos := slices.Index(r.order, dep)
			if pos < 0 {
				return fmt.Errorf("package %q depends on %q which is not registered", name, dep)
			}
			if pos > i {
				return fmt.Errorf("package %q depends on %q which is registered after it", name, dep)
			}
		}
	}
	return nil
}

// runAllMigrations applies pending package migrations in version order.
// Each migration commits together with its bookkeeping row.
func (r *Registry) runAllMigrations(ctx context.Context, s *store.Store) error {
	for _, name := range r.order {
		migrations := slices.Clone(r.modules[name].Migrations())
		if len(migrations) == 0 {
			continue
		}
		slices.SortFunc(migrations, func(a, b Migration) int {
			return cmp.Compare(a.Version, b.Version)
		})

		applied, err := s.ListPackageMigrations(ctx, name)
		if err != nil {
			return fmt.Errorf("listing migrations of %s: %w", name, err)
		}

		for _, mig := range migrations {
			if slices.Contains(applied, mig.Version) {
				continue
			}

			r.logger.Info("applying package migration", "package", name, "version", mig.Version, "description", mig.Description)

			err := s.InTx(ctx, func(q *store.Queries) error {
				if err := mig.Up(ctx, q); err != nil {
					return err
				}
				return q.RecordPackageMigration(ctx, store.RecordPackageMigrationParams{
					PackageName: name,
					Version:     mig.Version,
					AppliedAt:   time.Now().UTC(),
				})
			})
			if err != nil {
				return fmt.Errorf("running migration %s v%d: %w", name, mig.Version, err)
			}
		}
	}

	return nil
}

// loadActiveStatus loads the active flag of every package. Packages seen
// for the first time are stored as active.
func (r *Registry) loadActiveStatus(ctx context.Context, s *store.Store) error {
	for _, name := range r.order {
		pkg, err := s.GetPackage(ctx, name)
		if errors.Is(err, sql.ErrNoRows) {
			err = s.CreatePackage(ctx, store.CreatePackageParams{
				Name:      name,
				IsActive:  true,
				UpdatedAt: time.Now().UTC(),
			})
			if err != nil {
				return fmt.Errorf("inserting package %s: %w", name, err)
			}
			r.activeStatus[name] = true
			continue
		}
		if err != nil {
			return fmt.Errorf("loading package %s: %w", name, err)
		}
		r.activeStatus[name] = pkg.IsActive
	}
	return nil
}

// registerSettings declares one settings group per package that has
// settings.
func (r *Registry) registerSettings(reg *settings.Registry) error {
	for i, name := range r.order {
		m := r.modules[name]
		defs := m.Settings()
		if len(defs) == 0 {
			continue
		}
		err := reg.RegisterGroup(settings.Group{Name: name, Title: m.Description(), SortOrder: i})
		if err != nil && !errors.Is(err, settings.ErrDuplicate) {
			return err
		}
		for _, def := range defs {
			def.Group = name
			if err := reg.Register(def); err != nil {
				return fmt.Errorf("package %q: %w", name, err)
			}
		}
	}
	return nil
}

func (r *Registry) isActiveLocked(name string) bool {
	active, exists := r.activeStatus[name]
	return !exists || active
}

// IsActive reports whether a package is active. Unknown and not yet
// loaded packages count as active.
func (r *Registry) IsActive(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isActiveLocked(name)
}

// SetActive changes a package's active state and persists it. A package
// cannot be activated while a dependency is inactive, nor deactivated
// while an active package depends on it.
func (r *Registry) SetActive(ctx context.Context, name string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.modules[name]
	if !exists {
		return fmt.Errorf("package %q: %w", name, ErrNotRegistered)
	}
	if r.ctx == nil {
		return ErrNotInitialized
	}

	if active {
		for _, dep := range m.Dependencies() {
			if !r.isActiveLocked(dep) {
				return fmt.Errorf("package %q needs %q: %w", name, dep, ErrDependencyInactive)
			}
		}
	} else {
		for _, other := range r.order {
			if other == name || !r.isActiveLocked(other) {
				continue
			}
			if slices.Contains(r.modules[other].Dependencies(), name) {
				return fmt.Errorf("package %q is needed by %q: %w", name, other, ErrRequiredByActive)
			}
		}
	}

	err := r.ctx.Store.SetPackageActive(ctx, store.SetPackageActiveParams{
		IsActive:  active,
		UpdatedAt: time.Now().UTC(),
		Name:      name,
	})
	if err != nil {
		return fmt.Errorf("updating package %s: %w", name, err)
	}

	r.activeStatus[name] = active
	r.logger.InfoContext(ctx, "package status changed", "category", model.EventCategoryPackage, "package", name, "active", active)
	return nil
}

// ShutdownAll shuts down all packages in reverse order.
func (r *Registry) ShutdownAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		if err := r.modules[name].Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("shutting down package %q: %w", name, err))
			r.logger.Error("package shutdown error", "name", name, "error", err)
		}
	}

	return errors.Join(errs...)
}

// routeAllWithFunc registers all package routes using the provided registration function.
func (r *Registry) routeAllWithFunc(router chi.Router, registerFunc func(Module, chi.Router)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		m := r.modules[name]
		router.Group(func(sub chi.Router) {
			sub.Use(r.activeMiddleware(name))
			registerFunc(m, sub)
		})
	}
}

// RouteAll registers all package public routes behind the active check.
func (r *Registry) RouteAll(router chi.Router) {
	r.routeAllWithFunc(router, func(m Module, sub chi.Router) {
		m.RegisterRoutes(sub)
	})
}

// AdminRouteAll registers all package admin routes behind the active check.
func (r *Registry) AdminRouteAll(router chi.Router) {
	r.routeAllWithFunc(router, func(m Module, sub chi.Router) {
		m.RegisterAdminRoutes(sub)
	})
}

// activeMiddleware answers 404 while the package is inactive.
func (r *Registry) activeMiddleware(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !r.IsActive(name) {
				r.logger.Debug("blocked request to inactive package", "package", name, "path", req.URL.Path)
				api.WriteNotFound(w, "Not found")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// Info contains information about a registered package.
type Info struct {
	Name              string   `json:"name"`
	Version           string   `json:"version"`
	Description       string   `json:"description"`
	Dependencies      []string `json:"dependencies"`
	Initialized       bool     `json:"initialized"`
	Active            bool     `json:"active"`
	MigrationCount    int      `json:"migration_count"`
	MigrationsApplied int      `json:"migrations_applied"`
	MigrationsPending int      `json:"migrations_pending"`
}

// MigrationInfo contains information about a package migration.
type MigrationInfo struct {
	Version     int64  `json:"version"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// ListInfo returns information about all registered packages.
func (r *Registry) ListInfo(ctx context.Context) []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		m := r.modules[name]
		migrations := m.Migrations()
		applied := 0
		for _, mi := range r.migrationInfo(ctx, name, migrations) {
			if mi.Applied {
				applied++
			}
		}

		deps := m.Dependencies()
		if deps == nil {
			deps = []string{}
		}

		infos = append(infos, Info{
			Name:              name,
			Version:           m.Version(),
			Description:       m.Description(),
			Dependencies:      deps,
			Initialized:       r.ctx != nil,
			Active:            r.isActiveLocked(name),
			MigrationCount:    len(migrations),
			MigrationsApplied: applied,
			MigrationsPending: len(migrations) - applied,
		})
	}
	return infos
}

// GetMigrationInfo returns the migrations of one package and whether each
// has been applied.
func (r *Registry) GetMigrationInfo(ctx context.Context, name string) ([]MigrationInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("package %q: %w", name, ErrNotRegistered)
	}
	return r.migrationInfo(ctx, name, m.Migrations()), nil
}

func (r *Registry) migrationInfo(ctx context.Context, name string, migrations []Migration) []MigrationInfo {
	var applied []int64
	if r.ctx != nil && len(migrations) > 0 {
		var err error
		applied, err = r.ctx.Store.ListPackageMigrations(ctx, name)
		if err != nil {
			r.logger.Warn("failed to check migration status", "package", name, "error", err)
		}
	}

	infos := make([]MigrationInfo, len(migrations))
	for i, mig := range migrations {
		infos[i] = MigrationInfo{
			Version:     mig.Version,
			Description: mig.Description,
			Applied:     slices.Contains(applied, mig.Version),
		}
	}
	return infos
}

// Count returns the number of registered packages.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}
