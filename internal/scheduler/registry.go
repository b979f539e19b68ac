// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/olegiv/zen-cms/internal/metrics"
	"github.com/olegiv/zen-cms/internal/model"
)

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrTriggerLimit = errors.New("job was triggered too recently")
	ErrDuplicateJob = errors.New("job already registered")
	ErrInvalidCron  = errors.New("invalid cron expression")
)

const (
	triggerInterval   = 10 * time.Second
	defaultJobTimeout = 5 * time.Minute
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// registeredJob holds metadata about a registered cron job.
type registeredJob struct {
	source          string
	name            string
	description     string
	defaultSchedule string
	schedule        string // effective schedule
	entryID         cron.EntryID
	run             func()
	fn              JobFunc
	trigger         *rate.Limiter
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Source          string    `json:"source"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DefaultSchedule string    `json:"default_schedule"`
	Schedule        string    `json:"schedule"`
	IsOverridden    bool      `json:"is_overridden"`
	LastRun         time.Time `json:"last_run"`
	NextRun         time.Time `json:"next_run"`
}

// Registry manages all scheduled jobs of the core and of packages.
type Registry struct {
	cron   *cron.Cron
	logger *slog.Logger

	// base is cancelled by Stop so running jobs can give up early.
	base   context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	jobs map[string]*registeredJob // key: "source:name"
}

// NewRegistry creates a registry with its own cron instance running in UTC.
// Overlapping runs of the same job are skipped and panics are recovered.
func NewRegistry(logger *slog.Logger) *Registry {
	cl := cronLogger{logger}
	base, cancel := context.WithCancel(context.Background())
	return &Registry{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithParser(cronParser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		base:   base,
		cancel: cancel,
		jobs:   make(map[string]*registeredJob),
	}
}

func jobKey(source, name string) string {
	return source + ":" + name
}

// Add registers fn under source/name and schedules it.
func (r *Registry) Add(source, name, description, schedule string, fn JobFunc) error {
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCron, schedule, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := jobKey(source, name)
	if _, exists := r.jobs[key]; exists {
		return fmt.Errorf("%s: %w", key, ErrDuplicateJob)
	}

	job := &registeredJob{
		source:          source,
		name:            name,
		description:     description,
		defaultSchedule: schedule,
		schedule:        schedule,
		fn:              fn,
		trigger:         rate.NewLimiter(rate.Every(triggerInterval), 1),
	}
	job.run = func() { _ = r.execute(r.base, job) }

	id, err := r.cron.AddFunc(schedule, job.run)
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", key, err)
	}
	job.entryID = id
	r.jobs[key] = job

	r.logger.Debug("registered scheduled job", "source", source, "name", name, "schedule", schedule)
	return nil
}

// execute runs one job with a timeout and records the outcome.
func (r *Registry) execute(ctx context.Context, job *registeredJob) error {
	ctx, cancel := context.WithTimeout(ctx, defaultJobTimeout)
	defer cancel()

	key := jobKey(job.source, job.name)
	start := time.Now()
	err := job.fn(ctx)

	result := "success"
	if err != nil {
		result = "error"
		r.logger.Error("scheduled job failed",
			"category", model.EventCategorySystem,
			"job", key,
			"error", err,
		)
	} else {
		r.logger.Debug("scheduled job finished", "job", key, "duration", time.Since(start))
	}
	metrics.SchedulerRuns.WithLabelValues(key, result).Inc()
	return err
}

// Start starts the cron loop.
func (r *Registry) Start() {
	r.cron.Start()
	r.logger.Info("scheduler started", "jobs", len(r.cron.Entries()))
}

// Stop stops scheduling new runs, cancels the context of running jobs and
// waits for them until ctx is done.
func (r *Registry) Stop(ctx context.Context) {
	done := r.cron.Stop()
	r.cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
		r.logger.Warn("scheduler stop timed out")
	}
	r.logger.Info("scheduler stopped")
}

// List returns all registered jobs sorted by source then name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, job := range r.jobs {
		entry := r.cron.Entry(job.entryID)
		result = append(result, JobInfo{
			Source:          job.source,
			Name:            job.name,
			Description:     job.description,
			DefaultSchedule: job.defaultSchedule,
			Schedule:        job.schedule,
			IsOverridden:    job.schedule != job.defaultSchedule,
			NextRun:         entry.Next,
			LastRun:         entry.Prev,
		})
	}

	slices.SortFunc(result, func(a, b JobInfo) int {
		if c := strings.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return result
}

// TriggerNow runs a job immediately in the caller's goroutine. Manual
// triggers of one job are limited to one per ten seconds.
func (r *Registry) TriggerNow(ctx context.Context, source, name string) error {
	r.mu.RLock()
	job, ok := r.jobs[jobKey(source, name)]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%s: %w", jobKey(source, name), ErrJobNotFound)
	}
	if !job.trigger.Allow() {
		return fmt.Errorf("%s: %w", jobKey(source, name), ErrTriggerLimit)
	}

	r.logger.InfoContext(ctx, "manually triggering job", "source", source, "name", name)
	return r.execute(ctx, job)
}

// UpdateSchedule replaces the schedule of a job.
func (r *Registry) UpdateSchedule(source, name, schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := jobKey(source, name)
	job, ok := r.jobs[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrJobNotFound)
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCron, schedule, err)
	}

	r.cron.Remove(job.entryID)
	id, err := r.cron.AddFunc(schedule, job.run)
	if err != nil {
		// Restore the previous entry so the job keeps running.
		if id, restoreErr := r.cron.AddFunc(job.schedule, job.run); restoreErr == nil {
			job.entryID = id
		}
		return fmt.Errorf("applying schedule to %s: %w", key, err)
	}
	job.entryID = id
	job.schedule = schedule

	r.logger.Info("updated job schedule", "source", source, "name", name, "schedule", schedule)
	return nil
}

// ResetSchedule restores the default schedule of a job.
func (r *Registry) ResetSchedule(source, name string) error {
	r.mu.RLock()
	job, ok := r.jobs[jobKey(source, name)]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", jobKey(source, name), ErrJobNotFound)
	}
	if job.schedule == job.defaultSchedule {
		return nil
	}
	return r.UpdateSchedule(source, name, job.defaultSchedule)
}

// Unregister removes a job and its cron entry.
func (r *Registry) Unregister(source, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := jobKey(source, name)
	if job, ok := r.jobs[key]; ok {
		r.cron.Remove(job.entryID)
		delete(r.jobs, key)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
