// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheHits counts cache lookups that found a value, by backend and cache name.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zen_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	// CacheMisses counts cache lookups that found nothing.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zen_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// TreeBuildDuration measures menu tree construction from the bulk read.
	TreeBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zen_menu_tree_build_seconds",
			Help:    "Time spent building a menu tree from its items",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
	)

	// TreeItems observes how many items each built tree holds.
	TreeItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zen_menu_tree_items",
			Help:    "Number of items in built menu trees",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Reorders counts bulk reorder requests by result (ok|rejected|error).
	Reorders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zen_menu_reorders_total",
			Help: "Total number of menu reorder requests",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zen_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// SchedulerRuns counts scheduled job executions by job and result.
	SchedulerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zen_scheduler_runs_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job", "result"},
	)
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
