// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/olegiv/zen-cms/internal/handler"
	"github.com/olegiv/zen-cms/internal/service"
	"github.com/olegiv/zen-cms/internal/store"
	"github.com/olegiv/zen-cms/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("error during shutdown", "error", err)
		}
	}()

	if cfg.DoSeed {
		if err := seedOnStart(ctx, a); err != nil {
			return err
		}
	}

	if err := a.menus.Service().WarmTrees(ctx); err != nil {
		a.logger.Warn("failed to warm menu trees", "category", "cache", "error", err)
	}

	router := handler.NewRouter(handler.Deps{
		DB:       a.db,
		Cache:    a.cache,
		Packages: a.packages,
		Hooks:    a.hooks,
		Jobs:     a.jobs,
		Events:   service.NewEventService(a.store.Queries),
		Config:   cfg,
		Logger:   a.logger,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	a.jobs.Start()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env, "version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		a.logger.Info("shutting down server", "grace_period", cfg.ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown error", "error", err)
		}
		a.jobs.Stop(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}

// seedOnStart seeds the configured file, or the default menus when no
// file is set.
func seedOnStart(ctx context.Context, a *app) error {
	var (
		res store.SeedResult
		err error
	)
	if a.cfg.SeedFile == "" {
		res, err = store.SeedMenus(ctx, a.store, store.DefaultSeed)
	} else {
		res, err = seedFile(ctx, a.store, a.cfg.SeedFile)
	}
	if err != nil {
		return fmt.Errorf("seeding menus: %w", err)
	}
	if res.Menus > 0 {
		if err := a.menus.Service().InvalidateTrees(ctx); err != nil {
			a.logger.Warn("failed to invalidate menu trees", "category", "cache", "error", err)
		}
	}
	return nil
}
