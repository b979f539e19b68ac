// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCacheCounters(t *testing.T) {
	before := testutil.ToFloat64(CacheHits.WithLabelValues("test"))
	CacheHits.WithLabelValues("test").Inc()
	after := testutil.ToFloat64(CacheHits.WithLabelValues("test"))

	if after-before != 1 {
		t.Errorf("CacheHits delta = %v, want 1", after-before)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	Reorders.WithLabelValues("ok").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "zen_menu_reorders_total") {
		t.Error("metrics output missing zen_menu_reorders_total")
	}
}
