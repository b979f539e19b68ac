// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsUsesRoutePattern(t *testing.T) {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_latency_seconds"}, []string{"method", "path", "status"})

	r := chi.NewRouter()
	r.Use(LatencyMetrics(h))
	r.Get("/api/v1/menus/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, slug := range []string{"main", "footer", "main"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/menus/"+slug, nil))
		if rr.Code != http.StatusTeapot {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusTeapot)
		}
	}

	// All three requests share one series.
	if got := testutil.CollectAndCount(h); got != 1 {
		t.Errorf("new series = %d, want 1", got)
	}
}

func TestRoutePatternWithoutRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if got := routePattern(req); got != "unmatched" {
		t.Errorf("routePattern() = %q, want %q", got, "unmatched")
	}
}

func TestMetricsUnmatchedRoute(t *testing.T) {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_unmatched_seconds"}, []string{"method", "path", "status"})

	r := chi.NewRouter()
	r.Use(LatencyMetrics(h))
	r.Get("/known", func(w http.ResponseWriter, r *http.Request) {})

	for _, p := range []string{"/a", "/b", "/c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.CollectAndCount(h); got != 1 {
		t.Errorf("series = %d, want 1", got)
	}
}
