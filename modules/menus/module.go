// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package menus provides site menus: an admin JSON API to manage menus and
// their item trees, and a public endpoint serving built trees.
package menus

import (
	"context"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/menutree"
	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/module"
	"github.com/olegiv/zen-cms/internal/scheduler"
	"github.com/olegiv/zen-cms/internal/service"
	"github.com/olegiv/zen-cms/internal/settings"
	"github.com/olegiv/zen-cms/internal/store"
)

// Setting names.
const (
	SettingMaxDepth   = "menus.max_depth"
	SettingCacheTrees = "menus.cache_trees"
)

const jobWarmTrees = "warm_trees"

// Module implements the module.Module interface for menus.
type Module struct {
	module.BaseModule
	ctx *module.Context
	svc *service.MenuService
}

// New creates a new instance of the menus package.
func New() *Module {
	return &Module{
		BaseModule: module.NewBaseModule(
			"menus",
			"1.0.0",
			"Site menus and menu item trees",
		),
	}
}

// Init builds the menu service, subscribes to setting changes and
// schedules the tree warm-up job.
func (m *Module) Init(ctx *module.Context) error {
	m.ctx = ctx
	m.svc = service.NewMenuService(ctx.Store, ctx.Cache, ctx.Config.CacheTTL, ctx.Hooks, ctx.Logger)

	ctx.Hooks.Register(module.HookSettingAfterSave, module.HookHandler{
		Name:     "menus_settings_changed",
		Module:   m.Name(),
		Priority: 10,
		Fn:       m.onSettingSaved,
	})

	if ctx.Scheduler != nil {
		err := ctx.Scheduler.Add(m.Name(), jobWarmTrees, "Rebuild cached menu trees",
			scheduler.WarmMenusSchedule, m.warmTrees)
		if err != nil {
			return err
		}
	}

	ctx.Logger.Info("menus package initialized")
	return nil
}

// Shutdown removes the scheduled job.
func (m *Module) Shutdown() error {
	if m.ctx != nil && m.ctx.Scheduler != nil {
		m.ctx.Scheduler.Unregister(m.Name(), jobWarmTrees)
	}
	return nil
}

// Service returns the menu service. It is nil before Init.
func (m *Module) Service() *service.MenuService { return m.svc }

// RegisterRoutes registers the public tree endpoint.
func (m *Module) RegisterRoutes(r chi.Router) {
	r.Get("/menus/{slug}", m.handlePublicTree)
}

// RegisterAdminRoutes registers the admin API.
func (m *Module) RegisterAdminRoutes(r chi.Router) {
	r.Route("/menus", func(r chi.Router) {
		r.Get("/", m.handleListMenus)
		r.Post("/", m.handleCreateMenu)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", m.handleGetMenu)
			r.Put("/", m.handleUpdateMenu)
			r.Delete("/", m.handleDeleteMenu)
			r.Get("/tree", m.handleAdminTree)
			r.Post("/reorder", m.handleReorder)

			r.Get("/items", m.handleListItems)
			r.Post("/items", m.handleCreateItem)
			r.Get("/items/{itemID}", m.handleGetItem)
			r.Put("/items/{itemID}", m.handleUpdateItem)
			r.Delete("/items/{itemID}", m.handleDeleteItem)
		})
	})
}

// Migrations returns database migrations for the package.
func (m *Module) Migrations() []module.Migration {
	return []module.Migration{
		{
			Version:     1,
			Description: "Seed main and footer menus",
			Up: func(ctx context.Context, q *store.Queries) error {
				_, err := q.SeedMenus(ctx, store.DefaultSeed)
				return err
			},
		},
	}
}

// Navigation returns the admin navigation entries.
func (m *Module) Navigation() []module.NavItem {
	return []module.NavItem{
		{Key: "menus", Label: "Menus", URL: "/admin/menus", SortOrder: 10},
		{Key: "menus.list", Parent: "menus", Label: "All menus", URL: "/admin/menus", SortOrder: 0},
		{Key: "menus.new", Parent: "menus", Label: "New menu", URL: "/admin/menus/new", SortOrder: 1},
	}
}

// Settings returns the settings the package declares.
func (m *Module) Settings() []settings.Setting {
	return []settings.Setting{
		{
			Name:        SettingMaxDepth,
			Title:       "Maximum depth",
			Description: "Levels returned by the public tree endpoint. 0 returns every level.",
			Type:        model.SettingTypeInt,
			Default:     "0",
		},
		{
			Name:        SettingCacheTrees,
			Title:       "Cache trees",
			Description: "Serve built menu trees from the cache.",
			Type:        model.SettingTypeBool,
			Default:     "true",
		},
	}
}

// tree returns the tree of slug, from the cache unless caching is off.
func (m *Module) tree(ctx context.Context, slug string) (*cache.MenuTree, error) {
	cached, err := m.ctx.Settings.GetBool(ctx, SettingCacheTrees)
	if err != nil {
		return nil, err
	}
	if cached {
		return m.svc.Tree(ctx, slug)
	}
	return m.svc.BuildTree(ctx, slug)
}

// publicTree is tree cut to the configured maximum depth. The cached tree
// is never modified.
func (m *Module) publicTree(ctx context.Context, slug string) (*cache.MenuTree, error) {
	t, err := m.tree(ctx, slug)
	if err != nil {
		return nil, err
	}
	depth, err := m.ctx.Settings.GetInt(ctx, SettingMaxDepth)
	if err != nil {
		return nil, err
	}
	if depth <= 0 {
		return t, nil
	}
	return &cache.MenuTree{Menu: t.Menu, Items: menutree.Prune(t.Items, depth)}, nil
}

func (m *Module) warmTrees(ctx context.Context) error {
	cached, err := m.ctx.Settings.GetBool(ctx, SettingCacheTrees)
	if err != nil {
		return err
	}
	if !cached {
		return nil
	}
	return m.svc.WarmTrees(ctx)
}

// onSettingSaved drops cached trees when tree caching is switched.
func (m *Module) onSettingSaved(ctx context.Context, data any) (any, error) {
	change, ok := data.(module.SettingChange)
	if !ok || !strings.HasPrefix(change.Name, m.Name()+".") {
		return data, nil
	}
	if change.Name == SettingCacheTrees {
		if err := m.svc.InvalidateTrees(ctx); err != nil {
			return data, err
		}
		m.ctx.Logger.InfoContext(ctx, "menu tree cache cleared",
			"category", model.EventCategoryCache, "cache_trees", change.Value)
	}
	return data, nil
}
