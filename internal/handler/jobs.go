// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/zen-cms/internal/handler/api"
	"github.com/olegiv/zen-cms/internal/scheduler"
)

// JobsHandler exposes the scheduler registry.
type JobsHandler struct {
	jobs   *scheduler.Registry
	logger *slog.Logger
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(jobs *scheduler.Registry, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{jobs: jobs, logger: logger}
}

// UpdateScheduleRequest is the body of PUT .../schedule.
type UpdateScheduleRequest struct {
	Schedule string `json:"schedule"`
}

// List handles GET /admin/api/jobs.
func (h *JobsHandler) List(w http.ResponseWriter, _ *http.Request) {
	api.WriteSuccess(w, h.jobs.List(), nil)
}

// Run handles POST /admin/api/jobs/{source}/{name}/run.
func (h *JobsHandler) Run(w http.ResponseWriter, r *http.Request) {
	source, name := chi.URLParam(r, "source"), chi.URLParam(r, "name")
	if err := h.jobs.TriggerNow(r.Context(), source, name); err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteNoContent(w)
}

// UpdateSchedule handles PUT /admin/api/jobs/{source}/{name}/schedule.
func (h *JobsHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req UpdateScheduleRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if req.Schedule == "" {
		api.WriteValidationError(w, map[string]string{"schedule": "is required"})
		return
	}

	source, name := chi.URLParam(r, "source"), chi.URLParam(r, "name")
	if err := h.jobs.UpdateSchedule(source, name, req.Schedule); err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteNoContent(w)
}

// ResetSchedule handles DELETE /admin/api/jobs/{source}/{name}/schedule.
func (h *JobsHandler) ResetSchedule(w http.ResponseWriter, r *http.Request) {
	source, name := chi.URLParam(r, "source"), chi.URLParam(r, "name")
	if err := h.jobs.ResetSchedule(source, name); err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteNoContent(w)
}

func (h *JobsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		api.WriteNotFound(w, "Job not found")
	case errors.Is(err, scheduler.ErrTriggerLimit):
		api.WriteTooManyRequests(w)
	case errors.Is(err, scheduler.ErrInvalidCron):
		api.WriteValidationError(w, map[string]string{"schedule": err.Error()})
	default:
		h.logger.ErrorContext(r.Context(), "job request failed", "error", err)
		api.WriteInternalError(w, err.Error())
	}
}
