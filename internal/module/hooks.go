// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/service"
)

// Hook names fired by the menu service.
const (
	HookMenuAfterSave       = service.HookMenuAfterSave
	HookMenuAfterDelete     = service.HookMenuAfterDelete
	HookMenuAfterReorder    = service.HookMenuAfterReorder
	HookMenuItemAfterSave   = service.HookMenuItemAfterSave
	HookMenuItemAfterDelete = service.HookMenuItemAfterDelete

	// HookSettingAfterSave fires with a SettingChange after a value is stored.
	HookSettingAfterSave = "setting.after_save"
)

// SettingChange is the payload of HookSettingAfterSave.
type SettingChange struct {
	Name  string
	Value string
}

// HookFunc is a function that can be registered as a hook handler.
// It receives a context and data, and returns modified data and an error.
// If the hook returns an error, subsequent hooks are not called.
type HookFunc func(ctx context.Context, data any) (any, error)

// HookHandler wraps a HookFunc with metadata.
type HookHandler struct {
	Name     string   // Name of the handler for debugging
	Module   string   // Package that registered the handler
	Priority int      // Lower priority runs first (default: 0)
	Fn       HookFunc // The actual handler function
}

// IsModuleActiveFunc reports whether a package is active.
type IsModuleActiveFunc func(moduleName string) bool

// HookRegistry manages hook registration and execution.
type HookRegistry struct {
	hooks          map[string][]HookHandler
	logger         *slog.Logger
	isModuleActive IsModuleActiveFunc
	mu             sync.RWMutex
}

// NewHookRegistry creates a new hook registry.
func NewHookRegistry(logger *slog.Logger) *HookRegistry {
	return &HookRegistry{
		hooks:          make(map[string][]HookHandler),
		logger:         logger,
		isModuleActive: func(string) bool { return true },
	}
}

// SetIsModuleActive sets the callback used to skip handlers of inactive
// packages.
func (h *HookRegistry) SetIsModuleActive(fn IsModuleActiveFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.isModuleActive = fn
}

// Register adds a hook handler for the given hook name. Handlers with
// equal priority run in registration order.
func (h *HookRegistry) Register(hookName string, handler HookHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	handlers := append(h.hooks[hookName], handler)
	slices.SortStableFunc(handlers, func(a, b HookHandler) int {
		return a.Priority - b.Priority
	})
	h.hooks[hookName] = handlers

	h.logger.Debug("hook registered",
		"hook", hookName,
		"handler", handler.Name,
		"module", handler.Module,
		"priority", handler.Priority,
	)
}

// RegisterFunc registers fn with priority 0.
func (h *HookRegistry) RegisterFunc(hookName, handlerName, moduleName string, fn HookFunc) {
	h.Register(hookName, HookHandler{
		Name:   handlerName,
		Module: moduleName,
		Fn:     fn,
	})
}

// Call executes all handlers for the given hook name in priority order.
// Handlers from inactive packages are skipped. The data is passed through
// each handler, allowing modification. If any handler returns an error,
// execution stops and the error is returned.
func (h *HookRegistry) Call(ctx context.Context, hookName string, data any) (any, error) {
	h.mu.RLock()
	handlers := slices.Clone(h.hooks[hookName])
	isModuleActive := h.isModuleActive
	h.mu.RUnlock()

	if len(handlers) == 0 {
		return data, nil
	}

	h.logger.Debug("calling hooks", "hook", hookName, "handlers", len(handlers))

	current := data
	for _, handler := range handlers {
		if !isModuleActive(handler.Module) {
			continue
		}

		result, err := handler.Fn(ctx, current)
		if err != nil {
			h.logger.ErrorContext(ctx, "hook handler error",
				"category", model.EventCategoryPackage,
				"hook", hookName,
				"handler", handler.Name,
				"module", handler.Module,
				"error", err,
			)
			return nil, fmt.Errorf("hook %s handler %s: %w", hookName, handler.Name, err)
		}
		current = result
	}

	return current, nil
}

// CallNoResult executes hooks without expecting a modified result.
// This is useful for "after" hooks that just need to be notified.
func (h *HookRegistry) CallNoResult(ctx context.Context, hookName string, data any) error {
	_, err := h.Call(ctx, hookName, data)
	return err
}

// HasHandlers reports whether any handler is registered for the hook.
func (h *HookRegistry) HasHandlers(hookName string) bool {
	return h.HandlerCount(hookName) > 0
}

// HandlerCount returns the number of handlers registered for a hook.
func (h *HookRegistry) HandlerCount(hookName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.hooks[hookName])
}

// HookInfo describes a hook and its handlers.
type HookInfo struct {
	Name     string            `json:"name"`
	Handlers []HookHandlerInfo `json:"handlers"`
}

// HookHandlerInfo describes one handler.
type HookHandlerInfo struct {
	Name     string `json:"name"`
	Module   string `json:"module"`
	Priority int    `json:"priority"`
}

// ListHookInfo returns every hook with handlers, sorted by hook name.
func (h *HookRegistry) ListHookInfo() []HookInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]HookInfo, 0, len(h.hooks))
	for name, handlers := range h.hooks {
		if len(handlers) == 0 {
			continue
		}
		handlerInfos := make([]HookHandlerInfo, len(handlers))
		for i, handler := range handlers {
			handlerInfos[i] = HookHandlerInfo{
				Name:     handler.Name,
				Module:   handler.Module,
				Priority: handler.Priority,
			}
		}
		infos = append(infos, HookInfo{Name: name, Handlers: handlerInfos})
	}
	slices.SortFunc(infos, func(a, b HookInfo) int { return strings.Compare(a.Name, b.Name) })
	return infos
}

// Unregister removes the handlers a package registered for one hook.
func (h *HookRegistry) Unregister(hookName, moduleName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hooks[hookName] = slices.DeleteFunc(h.hooks[hookName], func(hh HookHandler) bool {
		return hh.Module == moduleName
	})
}

// UnregisterAll removes every handler a package registered.
func (h *HookRegistry) UnregisterAll(moduleName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for hookName, handlers := range h.hooks {
		h.hooks[hookName] = slices.DeleteFunc(handlers, func(hh HookHandler) bool {
			return hh.Module == moduleName
		})
	}
}
