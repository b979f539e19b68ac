// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func newTestMemoryCache(t *testing.T, maxSize int) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{
		DefaultTTL: time.Hour,
		MaxSize:    maxSize,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := newTestMemoryCache(t, 100)
	ctx := context.Background()

	if err := cache.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", string(val))
	}

	has, err := cache.Has(ctx, "key1")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !has {
		t.Error("expected key1 to exist")
	}

	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "key1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := newTestMemoryCache(t, 0)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}
	if has, _ := cache.Has(ctx, "short"); has {
		t.Error("expired key reported as present")
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	cache := newTestMemoryCache(t, 0)
	ctx := context.Background()

	for _, k := range []string{"menu:main", "menu:footer", "settings:all"} {
		_ = cache.Set(ctx, k, []byte(k), 0)
	}

	if err := cache.DeleteByPrefix(ctx, "menu:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	for _, k := range []string{"menu:main", "menu:footer"} {
		if has, _ := cache.Has(ctx, k); has {
			t.Errorf("%s should have been deleted", k)
		}
	}
	if has, _ := cache.Has(ctx, "settings:all"); !has {
		t.Error("settings:all should remain")
	}
	if got := cache.Stats().Items; got != 1 {
		t.Errorf("Items = %d, want 1", got)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := newTestMemoryCache(t, 0)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), 0)
	_ = cache.Set(ctx, "b", []byte("2"), 0)

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats := cache.Stats()
	if stats.Items != 0 || stats.Size != 0 {
		t.Errorf("after Clear: items=%d size=%d, want 0/0", stats.Items, stats.Size)
	}
}

func TestMemoryCache_MaxSizeEvicts(t *testing.T) {
	cache := newTestMemoryCache(t, 2)
	ctx := context.Background()

	_ = cache.Set(ctx, "first", []byte("1"), time.Minute)
	_ = cache.Set(ctx, "second", []byte("2"), time.Hour)
	_ = cache.Set(ctx, "third", []byte("3"), time.Hour)

	if got := cache.Stats().Items; got != 2 {
		t.Errorf("Items = %d, want 2", got)
	}
	if has, _ := cache.Has(ctx, "first"); has {
		t.Error("entry closest to expiry should have been evicted")
	}
	if has, _ := cache.Has(ctx, "third"); !has {
		t.Error("new entry missing")
	}

	// Overwriting an existing key must not evict anything.
	_ = cache.Set(ctx, "second", []byte("22"), time.Hour)
	if got := cache.Stats().Items; got != 2 {
		t.Errorf("Items after overwrite = %d, want 2", got)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := newTestMemoryCache(t, 0)
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("1234"), 0)
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("stats = %+v, want 2 hits, 1 miss, 1 set", stats)
	}
	if stats.Size != 4 {
		t.Errorf("Size = %d, want 4", stats.Size)
	}
	if stats.HitRate < 66 || stats.HitRate > 67 {
		t.Errorf("HitRate = %.2f, want ~66.67", stats.HitRate)
	}

	cache.ResetStats()
	if s := cache.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("after ResetStats: %+v", s)
	}
}

func TestMemoryCache_ValueCopy(t *testing.T) {
	cache := newTestMemoryCache(t, 0)
	ctx := context.Background()

	original := []byte("value")
	_ = cache.Set(ctx, "k", original, 0)
	original[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "value" {
		t.Errorf("stored value mutated through caller slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "value" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := newTestMemoryCache(t, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d", (n*100+j)%80)
				_ = cache.Set(ctx, key, []byte("v"), 0)
				_, _ = cache.Get(ctx, key)
				if j%10 == 0 {
					_ = cache.Delete(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()

	if items := cache.Stats().Items; items < 0 || items > 80 {
		t.Errorf("Items = %d, want within [0, 80]", items)
	}
}

func TestMemoryCache_CleanupLoopStopsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cache := NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      time.Hour,
		CleanupInterval: 5 * time.Millisecond,
	})
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	if items := cache.Stats().Items; items != 0 {
		t.Errorf("Items = %d, want 0 after cleanup", items)
	}

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close: expected ErrCacheClosed, got %v", err)
	}
	if err := cache.Set(ctx, "k", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close: expected ErrCacheClosed, got %v", err)
	}
}
