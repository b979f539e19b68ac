// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/handler/api"
)

// CacheHandler handles cache management routes.
type CacheHandler struct {
	cache  cache.Cacher
	logger *slog.Logger
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(c cache.Cacher, logger *slog.Logger) *CacheHandler {
	return &CacheHandler{cache: c, logger: logger}
}

// Stats handles GET /admin/api/cache.
func (h *CacheHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	sp, ok := h.cache.(cache.StatsProvider)
	if !ok {
		api.WriteSuccess(w, cache.Stats{Backend: "unknown"}, nil)
		return
	}
	api.WriteSuccess(w, sp.Stats(), nil)
}

// Clear handles DELETE /admin/api/cache. Cached menu trees and setting
// values are rebuilt on the next read.
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Clear(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to clear cache", "category", "cache", "error", err)
		api.WriteInternalError(w, "Failed to clear cache")
		return
	}
	if sp, ok := h.cache.(cache.StatsProvider); ok {
		sp.ResetStats()
	}
	h.logger.InfoContext(r.Context(), "cache cleared", "category", "cache")
	api.WriteNoContent(w)
}
