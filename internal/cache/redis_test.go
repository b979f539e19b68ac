// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/zen-cms/internal/testutil"
)

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	url := testutil.RedisURL(t)

	opts := DefaultRedisCacheOptions()
	opts.URL = url
	opts.Prefix = "zen-test:"
	opts.DefaultTTL = time.Minute

	c, err := NewRedisCache(context.Background(), opts)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Clear(context.Background())
		_ = c.Close()
	})
	_ = c.Clear(context.Background())
	return c
}

func TestRedisCache_Basic(t *testing.T) {
	cache := newTestRedisCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want v", got)
	}

	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	cache := newTestRedisCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "menu:main", []byte("1"), 0)
	_ = cache.Set(ctx, "menu:footer", []byte("2"), 0)
	_ = cache.Set(ctx, "settings:all", []byte("3"), 0)

	if err := cache.DeleteByPrefix(ctx, "menu:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	if has, _ := cache.Has(ctx, "menu:main"); has {
		t.Error("menu:main should be gone")
	}
	if has, _ := cache.Has(ctx, "settings:all"); !has {
		t.Error("settings:all should remain")
	}
}

func TestRedisCache_Closed(t *testing.T) {
	cache := newTestRedisCache(t)
	_ = cache.Close()

	if _, err := cache.Get(context.Background(), "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
}
