// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestTypedCache_BasicOperations(t *testing.T) {
	cache := NewTypedCache[testEntry](newTestMemoryCache(t, 0), "test", time.Hour)
	ctx := context.Background()

	entry := &testEntry{ID: 1, Name: "Home"}
	if err := cache.Set(ctx, "entry:1", entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := cache.Get(ctx, "entry:1")
	if !found {
		t.Fatal("expected to find entry:1")
	}
	if *got != *entry {
		t.Errorf("got %+v, want %+v", got, entry)
	}
	if !cache.Has(ctx, "entry:1") {
		t.Error("Has(entry:1) = false, want true")
	}

	if err := cache.Delete(ctx, "entry:1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := cache.Get(ctx, "entry:1"); found {
		t.Error("expected entry:1 to be gone")
	}
}

func TestTypedCache_CorruptValueIsMiss(t *testing.T) {
	mem := newTestMemoryCache(t, 0)
	cache := NewTypedCache[testEntry](mem, "test", time.Hour)
	ctx := context.Background()

	_ = mem.Set(ctx, "bad", []byte("{not json"), 0)

	if _, found := cache.Get(ctx, "bad"); found {
		t.Error("undecodable value should be reported as a miss")
	}
}

func TestTypedCache_GetOrSet(t *testing.T) {
	cache := NewTypedCache[testEntry](newTestMemoryCache(t, 0), "test", time.Hour)
	ctx := context.Background()

	calls := 0
	fn := func() (*testEntry, error) {
		calls++
		return &testEntry{ID: 7, Name: "Docs"}, nil
	}

	for range 3 {
		got, err := cache.GetOrSet(ctx, "k", fn)
		if err != nil {
			t.Fatalf("GetOrSet failed: %v", err)
		}
		if got.ID != 7 {
			t.Errorf("ID = %d, want 7", got.ID)
		}
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}

	wantErr := errors.New("boom")
	_, err := cache.GetOrSet(ctx, "other", func() (*testEntry, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet error = %v, want %v", err, wantErr)
	}
}
