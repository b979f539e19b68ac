// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/zen-cms/internal/handler/api"
	"github.com/olegiv/zen-cms/internal/module"
)

// PackagesHandler exposes the package registry.
type PackagesHandler struct {
	registry *module.Registry
	hooks    *module.HookRegistry
	logger   *slog.Logger
}

// NewPackagesHandler creates a new PackagesHandler.
func NewPackagesHandler(registry *module.Registry, hooks *module.HookRegistry, logger *slog.Logger) *PackagesHandler {
	return &PackagesHandler{registry: registry, hooks: hooks, logger: logger}
}

// UpdatePackageRequest is the body of PUT /admin/api/packages/{name}.
type UpdatePackageRequest struct {
	Active *bool `json:"active"`
}

// List handles GET /admin/api/packages.
func (h *PackagesHandler) List(w http.ResponseWriter, r *http.Request) {
	api.WriteSuccess(w, h.registry.ListInfo(r.Context()), nil)
}

// Migrations handles GET /admin/api/packages/{name}/migrations.
func (h *PackagesHandler) Migrations(w http.ResponseWriter, r *http.Request) {
	infos, err := h.registry.GetMigrationInfo(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteSuccess(w, infos, nil)
}

// Update handles PUT /admin/api/packages/{name}.
func (h *PackagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req UpdatePackageRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if req.Active == nil {
		api.WriteValidationError(w, map[string]string{"active": "is required"})
		return
	}

	if err := h.registry.SetActive(r.Context(), name, *req.Active); err != nil {
		h.writeError(w, r, err)
		return
	}

	for _, info := range h.registry.ListInfo(r.Context()) {
		if info.Name == name {
			api.WriteSuccess(w, info, nil)
			return
		}
	}
	api.WriteNotFound(w, "Package not found")
}

// Hooks handles GET /admin/api/hooks.
func (h *PackagesHandler) Hooks(w http.ResponseWriter, _ *http.Request) {
	infos := h.hooks.ListHookInfo()
	if infos == nil {
		infos = []module.HookInfo{}
	}
	api.WriteSuccess(w, infos, nil)
}

// Navigation handles GET /admin/api/navigation: the admin menu built from
// the entries of every active package.
func (h *PackagesHandler) Navigation(w http.ResponseWriter, _ *http.Request) {
	api.WriteSuccess(w, h.registry.Navigation(), nil)
}

func (h *PackagesHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, module.ErrNotRegistered):
		api.WriteNotFound(w, "Package not found")
	case errors.Is(err, module.ErrDependencyInactive), errors.Is(err, module.ErrRequiredByActive):
		api.WriteConflict(w, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "package request failed", "category", "package", "error", err)
		api.WriteInternalError(w, "Package operation failed")
	}
}
