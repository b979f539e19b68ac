// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/config"
	"github.com/olegiv/zen-cms/internal/logging"
	"github.com/olegiv/zen-cms/internal/module"
	"github.com/olegiv/zen-cms/internal/scheduler"
	"github.com/olegiv/zen-cms/internal/settings"
	"github.com/olegiv/zen-cms/internal/store"
	"github.com/olegiv/zen-cms/modules/menus"
	settingsadmin "github.com/olegiv/zen-cms/modules/settings"
)

// database is an open, migrated database and the logger bound to its
// event log.
type database struct {
	db     *sql.DB
	store  *store.Store
	logger *slog.Logger
}

// openDatabase connects, runs the core migrations and upgrades the logger
// so WARN and ERROR records also land in the event log.
func openDatabase(ctx context.Context, cfg *config.Config) (*database, error) {
	logger := logging.New(os.Stdout, logging.Options{Level: cfg.SlogLevel()})
	slog.SetDefault(logger)

	dialect, err := store.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	if dialect == store.DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	logger.Info("opening database", "driver", dialect)
	db, err := store.Open(dialect, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := store.Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := store.NewStore(db, dialect)
	logger = logging.New(os.Stdout, logging.Options{Level: cfg.SlogLevel(), Events: st.Queries})
	slog.SetDefault(logger)
	logger.Info("database ready", "driver", dialect)

	return &database{db: db, store: st, logger: logger}, nil
}

func (d *database) Close() error {
	return d.db.Close()
}

// app is the fully assembled application: database, cache, registries and
// the initialized packages.
type app struct {
	*database
	cfg      *config.Config
	cache    cache.Cacher
	settings *settings.Registry
	hooks    *module.HookRegistry
	jobs     *scheduler.Registry
	packages *module.Registry
	menus    *menus.Module
}

// newApp opens the database and initializes every package. Package
// migrations run as part of the initialization.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	d, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{database: d, cfg: cfg}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	a.cache = cache.NewCache(ctx, cache.Config{
		RedisURL:        a.cfg.RedisURL,
		Prefix:          a.cfg.CachePrefix,
		DefaultTTL:      a.cfg.CacheTTL,
		MaxSize:         a.cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, a.logger)

	a.settings = settings.NewRegistry(a.store, a.cache, a.cfg.CacheTTL)
	a.hooks = module.NewHookRegistry(a.logger)
	a.jobs = scheduler.NewRegistry(a.logger)

	err := a.jobs.Add(scheduler.SourceCore, "prune_events", "Delete old event log entries",
		scheduler.PruneEventsSchedule, scheduler.PruneEvents(a.store.Queries, a.cfg.EventRetention, a.logger))
	if err != nil {
		return fmt.Errorf("scheduling event pruning: %w", err)
	}

	a.menus = menus.New()
	a.packages = module.NewRegistry(a.logger)
	for _, m := range []module.Module{a.menus, settingsadmin.New()} {
		if err := a.packages.Register(m); err != nil {
			return fmt.Errorf("registering package: %w", err)
		}
	}

	mctx := &module.Context{
		Store:     a.store,
		Logger:    a.logger,
		Config:    a.cfg,
		Cache:     a.cache,
		Settings:  a.settings,
		Hooks:     a.hooks,
		Scheduler: a.jobs,
	}
	if err := a.packages.InitAll(ctx, mctx); err != nil {
		return fmt.Errorf("initializing packages: %w", err)
	}
	return nil
}

// Close shuts down packages and releases the cache and the database.
func (a *app) Close() error {
	var errs []error
	if a.packages != nil {
		errs = append(errs, a.packages.ShutdownAll())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.database.Close())
	return errors.Join(errs...)
}
