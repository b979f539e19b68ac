// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/olegiv/zen-cms/internal/handler/api"
)

// maxLimiterKeys bounds the per-IP limiter map; it is reset when exceeded.
const maxLimiterKeys = 10000

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	maxKeys  int
}

func newLimiterCache[K comparable](rps float64, burst, maxKeys int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		maxKeys:  maxKeys,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	if lc.maxKeys > 0 && len(lc.limiters) >= lc.maxKeys {
		lc.limiters = make(map[K]*rate.Limiter)
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

func (lc *limiterCache[K]) size() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.limiters)
}

// RateLimiter throttles requests per client IP with token buckets.
type RateLimiter struct {
	cache  *limiterCache[string]
	logger *slog.Logger
}

// NewRateLimiter allows rps requests per second per IP with bursts of burst.
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		cache:  newLimiterCache[string](rps, burst, maxLimiterKeys),
		logger: logger,
	}
}

// Middleware limits every request.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return rl.limit(func(*http.Request) bool { return true })
}

// WriteMiddleware limits only requests with unsafe methods; reads pass
// through untouched.
func (rl *RateLimiter) WriteMiddleware() func(http.Handler) http.Handler {
	return rl.limit(func(r *http.Request) bool {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return false
		}
		return true
	})
}

func (rl *RateLimiter) limit(applies func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if applies(r) {
				ip := clientIP(r)
				if !rl.cache.get(ip).Allow() {
					rl.logger.WarnContext(r.Context(), "rate limit exceeded",
						"category", "system", "ip", ip, "method", r.Method, "path", r.URL.Path)
					api.WriteTooManyRequests(w)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr. chi's RealIP middleware
// runs first and has already applied X-Real-IP / X-Forwarded-For.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
