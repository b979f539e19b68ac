// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menus

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/zen-cms/internal/handler/api"
	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/service"
)

// ReorderRequest is the body of POST /admin/api/menus/{id}/reorder.
type ReorderRequest struct {
	Orders map[int64]int `json:"orders"`
}

// handlePublicTree handles GET /api/v1/menus/{slug}.
func (m *Module) handlePublicTree(w http.ResponseWriter, r *http.Request) {
	t, err := m.publicTree(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	api.WriteSuccess(w, t, nil)
}

// handleListMenus handles GET /admin/api/menus.
func (m *Module) handleListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := m.svc.ListMenus(r.Context())
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteSuccess(w, menus, nil)
}

// handleCreateMenu handles POST /admin/api/menus.
func (m *Module) handleCreateMenu(w http.ResponseWriter, r *http.Request) {
	var in model.MenuInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteBadRequest(w, err.Error(), nil)
		return
	}
	menu, err := m.svc.CreateMenu(r.Context(), in)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteCreated(w, menu)
}

// handleGetMenu handles GET /admin/api/menus/{id}.
func (m *Module) handleGetMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := menuID(w, r)
	if !ok {
		return
	}
	menu, err := m.svc.GetMenu(r.Context(), id)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteSuccess(w, menu, nil)
}

// handleUpdateMenu handles PUT /admin/api/menus/{id}.
func (m *Module) handleUpdateMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := menuID(w, r)
	if !ok {
		return
	}
	var in model.MenuInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteBadRequest(w, err.Error(), nil)
		return
	}
	menu, err := m.svc.UpdateMenu(r.Context(), id, in)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteSuccess(w, menu, nil)
}

// handleDeleteMenu handles DELETE /admin/api/menus/{id}.
func (m *Module) handleDeleteMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := menuID(w, r)
	if !ok {
		return
	}
	if err := m.svc.DeleteMenu(r.Context(), id); err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteNoContent(w)
}

// handleAdminTree handles GET /admin/api/menus/{id}/tree. The admin view
// is never cut to the public maximum depth.
func (m *Module) handleAdminTree(w http.ResponseWriter, r *http.Request) {
	id, ok := menuID(w, r)
	if !ok {
		return
	}
	menu, err := m.svc.GetMenu(r.Context(), id)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	t, err := m.tree(r.Context(), menu.Slug)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteSuccess(w, t, nil)
}

// handleReorder handles POST /admin/api/menus/{id}/reorder with a body of
// {"orders": {"<item id>": <sort order>, ...}}.
func (m *Module) handleReorder(w http.ResponseWriter, r *http.Request) {
	id, ok := menuID(w, r)
	if !ok {
		return
	}
	var req ReorderRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if len(req.Orders) == 0 {
		api.WriteValidationError(w, map[string]string{"orders": "is required"})
		return
	}
	if err := m.svc.Reorder(r.Context(), id, req.Orders); err != nil {
		m.writeError(w, r, err)
		return
	}

	menu, err := m.svc.GetMenu(r.Context(), id)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	t, err := m.tree(r.Context(), menu.Slug)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteSuccess(w, t, nil)
}

// handleListItems handles GET /admin/api/menus/{id}/items.
func (m *Module) handleListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := menuID(w, r)
	if !ok {
		return
	}
	items, err := m.svc.ListItems(r.Context(), id)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteSuccess(w, items, nil)
}

// handleCreateItem handles POST /admin/api/menus/{id}/items.
func (m *Module) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := menuID(w, r)
	if !ok {
		return
	}
	var in model.MenuItemInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteBadRequest(w, err.Error(), nil)
		return
	}
	item, err := m.svc.AddItem(r.Context(), id, in)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteCreated(w, item)
}

// handleGetItem handles GET /admin/api/menus/{id}/items/{itemID}.
func (m *Module) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := itemIDs(w, r)
	if !ok {
		return
	}
	item, err := m.svc.GetItem(r.Context(), id, itemID)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteSuccess(w, item, nil)
}

// handleUpdateItem handles PUT /admin/api/menus/{id}/items/{itemID}.
func (m *Module) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := itemIDs(w, r)
	if !ok {
		return
	}
	var in model.MenuItemInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteBadRequest(w, err.Error(), nil)
		return
	}
	item, err := m.svc.UpdateItem(r.Context(), id, itemID, in)
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteSuccess(w, item, nil)
}

// handleDeleteItem handles DELETE /admin/api/menus/{id}/items/{itemID}.
// Children of the item are deleted with it.
func (m *Module) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := itemIDs(w, r)
	if !ok {
		return
	}
	if err := m.svc.DeleteItem(r.Context(), id, itemID); err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteNoContent(w)
}

func menuID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := api.ParseIDParam(r, "id")
	if err != nil {
		api.WriteBadRequest(w, err.Error(), nil)
		return 0, false
	}
	return id, true
}

func itemIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	id, ok := menuID(w, r)
	if !ok {
		return 0, 0, false
	}
	itemID, err := api.ParseIDParam(r, "itemID")
	if err != nil {
		api.WriteBadRequest(w, err.Error(), nil)
		return 0, 0, false
	}
	return id, itemID, true
}

// writeError maps service errors to API responses.
func (m *Module) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr model.ValidationErrors
	switch {
	case errors.As(err, &verr):
		api.WriteValidationError(w, verr)
	case errors.Is(err, service.ErrMenuNotFound):
		api.WriteNotFound(w, "Menu not found")
	case errors.Is(err, service.ErrItemNotFound):
		api.WriteNotFound(w, "Menu item not found")
	case errors.Is(err, service.ErrSlugTaken):
		api.WriteConflict(w, "Menu slug already in use")
	case errors.Is(err, service.ErrProtectedMenu):
		api.WriteError(w, http.StatusForbidden, "forbidden", "Menu is protected", nil)
	case errors.Is(err, service.ErrForeignItem):
		api.WriteValidationError(w, map[string]string{"orders": err.Error()})
	case errors.Is(err, service.ErrParentNotInMenu), errors.Is(err, service.ErrParentCycle):
		api.WriteValidationError(w, map[string]string{"parent_id": err.Error()})
	default:
		m.ctx.Logger.ErrorContext(r.Context(), "menu request failed",
			"category", model.EventCategoryMenu, "path", r.URL.Path, "error", err)
		api.WriteInternalError(w, "Menu operation failed")
	}
}
