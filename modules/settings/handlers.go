// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package settings

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/zen-cms/internal/handler/api"
	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/module"
	"github.com/olegiv/zen-cms/internal/settings"
)

// GroupValues is a settings group with the effective values of its settings.
type GroupValues struct {
	settings.Group
	Settings []settings.Value `json:"settings"`
}

// UpdateRequest is the body of PUT /admin/api/settings/{group}/{key}.
type UpdateRequest struct {
	Value *string `json:"value"`
}

// handleListGroups handles GET /admin/api/settings.
func (m *Module) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups := m.ctx.Settings.Groups()
	out := make([]GroupValues, 0, len(groups))
	for _, g := range groups {
		values, err := m.ctx.Settings.List(r.Context(), g.Name)
		if err != nil {
			m.writeError(w, r, err)
			return
		}
		out = append(out, GroupValues{Group: g, Settings: values})
	}
	api.WriteSuccess(w, out, nil)
}

// handleListGroup handles GET /admin/api/settings/{group}.
func (m *Module) handleListGroup(w http.ResponseWriter, r *http.Request) {
	values, err := m.ctx.Settings.List(r.Context(), chi.URLParam(r, "group"))
	if err != nil {
		m.writeError(w, r, err)
		return
	}
	api.WriteSuccess(w, values, nil)
}

// handleUpdate handles PUT /admin/api/settings/{group}/{key}.
func (m *Module) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if req.Value == nil {
		api.WriteValidationError(w, map[string]string{"value": "is required"})
		return
	}

	name := settingName(r)
	if err := m.ctx.Settings.Set(r.Context(), name, *req.Value); err != nil {
		m.writeError(w, r, err)
		return
	}
	m.respondChanged(w, r, name)
}

// handleReset handles DELETE /admin/api/settings/{group}/{key}.
func (m *Module) handleReset(w http.ResponseWriter, r *http.Request) {
	name := settingName(r)
	if err := m.ctx.Settings.Reset(r.Context(), name); err != nil {
		m.writeError(w, r, err)
		return
	}
	m.respondChanged(w, r, name)
}

// respondChanged fires the after-save hook and answers with the new
// effective value.
func (m *Module) respondChanged(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()
	v, err := m.value(ctx, name)
	if err != nil {
		m.writeError(w, r, err)
		return
	}

	m.ctx.Logger.InfoContext(ctx, "setting changed",
		"category", model.EventCategorySetting, "setting", name, "default", v.IsDefault)

	if err := m.ctx.Hooks.CallNoResult(ctx, module.HookSettingAfterSave, module.SettingChange{Name: name, Value: v.Value}); err != nil {
		m.ctx.Logger.WarnContext(ctx, "hook failed",
			"category", model.EventCategorySetting, "hook", module.HookSettingAfterSave, "error", err)
	}

	api.WriteSuccess(w, v, nil)
}

func (m *Module) value(ctx context.Context, name string) (settings.Value, error) {
	def, ok := m.ctx.Settings.Definition(name)
	if !ok {
		return settings.Value{}, fmt.Errorf("setting %q: %w", name, settings.ErrUnknownSetting)
	}
	values, err := m.ctx.Settings.List(ctx, def.Group)
	if err != nil {
		return settings.Value{}, err
	}
	for _, v := range values {
		if v.Name == name {
			return v, nil
		}
	}
	return settings.Value{}, fmt.Errorf("setting %q: %w", name, settings.ErrUnknownSetting)
}

func settingName(r *http.Request) string {
	return chi.URLParam(r, "group") + "." + chi.URLParam(r, "key")
}

func (m *Module) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, settings.ErrUnknownSetting):
		api.WriteNotFound(w, "Setting not found")
	case errors.Is(err, settings.ErrUnknownGroup):
		api.WriteNotFound(w, "Settings group not found")
	case errors.Is(err, settings.ErrInvalidValue):
		api.WriteValidationError(w, map[string]string{"value": err.Error()})
	default:
		m.ctx.Logger.ErrorContext(r.Context(), "settings request failed",
			"category", model.EventCategorySetting, "error", err)
		api.WriteInternalError(w, "Settings operation failed")
	}
}
