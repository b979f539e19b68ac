// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/config"
	"github.com/olegiv/zen-cms/internal/handler/api"
	"github.com/olegiv/zen-cms/internal/metrics"
	"github.com/olegiv/zen-cms/internal/middleware"
	"github.com/olegiv/zen-cms/internal/module"
	"github.com/olegiv/zen-cms/internal/scheduler"
	"github.com/olegiv/zen-cms/internal/service"
)

// Deps are the objects the router dispatches to.
type Deps struct {
	DB       *sql.DB
	Cache    cache.Cacher
	Packages *module.Registry
	Hooks    *module.HookRegistry
	Jobs     *scheduler.Registry
	Events   *service.EventService
	Config   *config.Config
	Logger   *slog.Logger
}

// NewRouter builds the HTTP router:
//
//	/health, /health/live, /health/ready, /metrics
//	/api/v1/...      public package routes
//	/admin/api/...   core admin endpoints and package admin routes
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(d.Config.IsDevelopment())))
	r.Use(chimw.Compress(5))
	if d.Config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.Config.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	health := NewHealthHandler(d.DB, d.Cache)
	r.Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		d.Packages.RouteAll(r)
	})

	limiter := middleware.NewRateLimiter(d.Config.RateLimit, d.Config.RateBurst, d.Logger)
	packages := NewPackagesHandler(d.Packages, d.Hooks, d.Logger)
	events := NewEventsHandler(d.Events, d.Logger)
	jobs := NewJobsHandler(d.Jobs, d.Logger)

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(limiter.WriteMiddleware())

		r.Get("/packages", packages.List)
		r.Put("/packages/{name}", packages.Update)
		r.Get("/packages/{name}/migrations", packages.Migrations)
		r.Get("/hooks", packages.Hooks)
		r.Get("/navigation", packages.Navigation)

		r.Get("/events", events.List)

		r.Get("/jobs", jobs.List)
		r.Post("/jobs/{source}/{name}/run", jobs.Run)
		r.Put("/jobs/{source}/{name}/schedule", jobs.UpdateSchedule)
		r.Delete("/jobs/{source}/{name}/schedule", jobs.ResetSchedule)

		if d.Cache != nil {
			c := NewCacheHandler(d.Cache, d.Logger)
			r.Get("/cache", c.Stats)
			r.Delete("/cache", c.Clear)
		}

		d.Packages.AdminRouteAll(r)
	})

	return r
}
