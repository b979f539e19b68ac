// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SourceCore is the job source of jobs owned by the core.
const SourceCore = "core"

// Default schedules
const (
	PruneEventsSchedule = "@hourly"
	WarmMenusSchedule   = "@every 15m"
)

// EventPruner deletes event log rows. *store.Queries satisfies it.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, before time.Time) (int64, error)
}

// PruneEvents returns a job deleting events older than retention.
func PruneEvents(p EventPruner, retention time.Duration, logger *slog.Logger) JobFunc {
	return func(ctx context.Context) error {
		cutoff := time.Now().UTC().Add(-retention)
		n, err := p.DeleteEventsBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("pruning events: %w", err)
		}
		if n > 0 {
			logger.InfoContext(ctx, "pruned event log", "deleted", n, "before", cutoff)
		}
		return nil
	}
}
