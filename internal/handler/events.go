// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/olegiv/zen-cms/internal/handler/api"
	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/service"
)

var eventLevels = []string{model.EventLevelInfo, model.EventLevelWarning, model.EventLevelError}

// EventsHandler serves the event log.
type EventsHandler struct {
	events *service.EventService
	logger *slog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{events: events, logger: logger}
}

// List handles GET /admin/api/events?level=&category=&page=&per_page=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level := q.Get("level")
	if level != "" && !slices.Contains(eventLevels, level) {
		api.WriteValidationError(w, map[string]string{"level": "must be one of info, warning, error"})
		return
	}

	page := api.ParsePage(r)
	events, total, err := h.events.List(r.Context(), service.EventFilter{
		Level:    level,
		Category: q.Get("category"),
		Limit:    page.PerPage,
		Offset:   page.Offset(),
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list events", "error", err)
		api.WriteInternalError(w, "Failed to list events")
		return
	}

	api.WriteSuccess(w, events, page.Meta(total))
}
