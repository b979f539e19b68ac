// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic behind the HTTP handlers
// and the CLI: menus with their item trees, and the event log.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/store"
)

// EventService reads and prunes the event log. Writing happens through
// the logging.EventLogHandler.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(q *store.Queries) *EventService {
	return &EventService{queries: q}
}

// EventFilter narrows an event listing. Zero values match everything.
type EventFilter struct {
	Level    string
	Category string
	Limit    int
	Offset   int
}

// List returns one page of events, newest first, and the total number of
// matching events.
func (s *EventService) List(ctx context.Context, f EventFilter) ([]model.Event, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	total, err := s.queries.CountEvents(ctx, f.Level, f.Category)
	if err != nil {
		return nil, 0, fmt.Errorf("counting events: %w", err)
	}

	rows, err := s.queries.ListEvents(ctx, store.ListEventsParams{
		Level:    f.Level,
		Category: f.Category,
		Limit:    int64(f.Limit),
		Offset:   int64(f.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing events: %w", err)
	}

	events := make([]model.Event, len(rows))
	for i, r := range rows {
		events[i] = model.Event{
			ID:        r.ID,
			Level:     r.Level,
			Category:  r.Category,
			Message:   r.Message,
			RequestID: r.RequestID,
			Metadata:  r.Metadata,
			CreatedAt: r.CreatedAt,
		}
	}
	return events, total, nil
}

// Prune deletes events older than retention and returns how many went.
func (s *EventService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.queries.DeleteEventsBefore(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("pruning events: %w", err)
	}
	return n, nil
}
