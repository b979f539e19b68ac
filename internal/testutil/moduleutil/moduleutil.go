// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package moduleutil provides package-system test helpers.
package moduleutil

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/config"
	"github.com/olegiv/zen-cms/internal/module"
	"github.com/olegiv/zen-cms/internal/scheduler"
	"github.com/olegiv/zen-cms/internal/settings"
	"github.com/olegiv/zen-cms/internal/testutil"
)

// TestModuleContext creates a module.Context over a fresh SQLite store and
// an in-memory cache. The scheduler is not started. Everything is released
// when the test ends.
func TestModuleContext(t *testing.T) *module.Context {
	t.Helper()

	s := testutil.TestStore(t)
	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = backend.Close() })

	logger := testutil.TestLogger()
	return &module.Context{
		Store:     s,
		Logger:    logger,
		Config:    &config.Config{Env: "test", CacheTTL: time.Hour},
		Cache:     backend,
		Settings:  settings.NewRegistry(s, backend, time.Hour),
		Hooks:     module.NewHookRegistry(logger),
		Scheduler: scheduler.NewRegistry(logger),
	}
}

// InitModules registers mods in order and runs InitAll over ctx.
func InitModules(t *testing.T, ctx *module.Context, mods ...module.Module) *module.Registry {
	t.Helper()

	reg := module.NewRegistry(ctx.Logger)
	for _, m := range mods {
		if err := reg.Register(m); err != nil {
			t.Fatalf("Register(%s): %v", m.Name(), err)
		}
	}
	if err := reg.InitAll(context.Background(), ctx); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	t.Cleanup(func() { _ = reg.ShutdownAll() })
	return reg
}
