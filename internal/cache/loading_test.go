// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/zen-cms/internal/menutree"
	"github.com/olegiv/zen-cms/internal/model"
)

func TestLoading_CachesLoadedValue(t *testing.T) {
	var calls atomic.Int32
	l := NewLoading(newTestMemoryCache(t, 0), "test", "t:", time.Hour,
		func(_ context.Context, key string) (*testEntry, error) {
			calls.Add(1)
			return &testEntry{Name: key}, nil
		})
	ctx := context.Background()

	for range 3 {
		v, err := l.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "a", v.Name)
	}
	assert.EqualValues(t, 1, calls.Load())

	require.NoError(t, l.Invalidate(ctx, "a"))
	_, err := l.Get(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestLoading_CollapsesConcurrentMisses(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	l := NewLoading(newTestMemoryCache(t, 0), "test", "t:", time.Hour,
		func(_ context.Context, key string) (*testEntry, error) {
			calls.Add(1)
			<-release
			return &testEntry{Name: key}, nil
		})
	ctx := context.Background()

	const callers = 10
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			v, err := l.Get(ctx, "slow")
			assert.NoError(t, err)
			assert.Equal(t, "slow", v.Name)
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(callers))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))

	// Everything after the first load is served from the cache.
	before := calls.Load()
	_, err := l.Get(ctx, "slow")
	require.NoError(t, err)
	assert.Equal(t, before, calls.Load())
}

func TestLoading_ErrorsAreNotCached(t *testing.T) {
	fail := true
	l := NewLoading(newTestMemoryCache(t, 0), "test", "t:", time.Hour,
		func(_ context.Context, key string) (*testEntry, error) {
			if fail {
				return nil, errors.New("db down")
			}
			return &testEntry{Name: key}, nil
		})
	ctx := context.Background()

	_, err := l.Get(ctx, "k")
	require.Error(t, err)

	fail = false
	v, err := l.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "k", v.Name)
}

func TestLoading_InvalidateAllAndWarm(t *testing.T) {
	mem := newTestMemoryCache(t, 0)
	version := 1
	l := NewLoading(mem, "test", "t:", time.Hour,
		func(_ context.Context, key string) (*testEntry, error) {
			return &testEntry{ID: int64(version), Name: key}, nil
		})
	ctx := context.Background()

	_, _ = l.Get(ctx, "a")
	_, _ = l.Get(ctx, "b")
	_ = mem.Set(ctx, "other", []byte("x"), 0)

	require.NoError(t, l.InvalidateAll(ctx))
	assert.False(t, l.typed.Has(ctx, "t:a"))
	assert.False(t, l.typed.Has(ctx, "t:b"))
	has, _ := mem.Has(ctx, "other")
	assert.True(t, has, "keys outside the prefix must survive")

	version = 2
	require.NoError(t, l.Warm(ctx, "a"))
	v, err := l.Get(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 2, v.ID)
}

func TestLoading_InvalidatedLoadIsNotStored(t *testing.T) {
	var mu sync.Mutex
	current := "old"
	read := func() string {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	var l *Loading[testEntry]
	l = NewLoading(newTestMemoryCache(t, 0), "test", "t:", time.Hour,
		func(ctx context.Context, key string) (*testEntry, error) {
			value := read()
			if value == "old" {
				// A write commits while this read is still in flight.
				mu.Lock()
				current = "new"
				mu.Unlock()
				assert.NoError(t, l.Invalidate(ctx, key))
			}
			return &testEntry{Name: value}, nil
		})
	ctx := context.Background()

	require.NoError(t, l.Warm(ctx, "m"))
	assert.False(t, l.typed.Has(ctx, "t:m"))
	v, err := l.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "new", v.Name)

	mu.Lock()
	current = "old"
	mu.Unlock()
	require.NoError(t, l.Invalidate(ctx, "m"))

	// The racing Get answers with what it read but does not keep it.
	v, err = l.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "old", v.Name)
	v, err = l.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "new", v.Name)
}

func TestLoading_GetAfterInvalidateStartsFreshLoad(t *testing.T) {
	var mu sync.Mutex
	current := "old"
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	l := NewLoading(newTestMemoryCache(t, 0), "test", "t:", time.Hour,
		func(_ context.Context, _ string) (*testEntry, error) {
			mu.Lock()
			value := current
			mu.Unlock()
			if calls.Add(1) == 1 {
				close(started)
				<-release
			}
			return &testEntry{Name: value}, nil
		})
	ctx := context.Background()

	first := make(chan *testEntry, 1)
	go func() {
		v, err := l.Get(ctx, "m")
		assert.NoError(t, err)
		first <- v
	}()
	<-started

	mu.Lock()
	current = "new"
	mu.Unlock()
	require.NoError(t, l.Invalidate(ctx, "m"))

	v, err := l.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "new", v.Name)

	close(release)
	assert.Equal(t, "old", (<-first).Name)

	v, err = l.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "new", v.Name)
	assert.EqualValues(t, 2, calls.Load())
}

func TestLoading_SharedLoadOutlivesCancelledCaller(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	l := NewLoading(newTestMemoryCache(t, 0), "test", "t:", time.Hour,
		func(ctx context.Context, key string) (*testEntry, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &testEntry{Name: key}, nil
		})

	cctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := l.Get(cctx, "m")
		errc <- err
	}()
	<-started
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	got := make(chan *testEntry, 1)
	go func() {
		v, err := l.Get(context.Background(), "m")
		assert.NoError(t, err)
		got <- v
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	v := <-got
	require.NotNil(t, v)
	assert.Equal(t, "m", v.Name)
}

func TestLoading_InvalidateIsPerKey(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	l := NewLoading(newTestMemoryCache(t, 0), "test", "t:", time.Hour,
		func(_ context.Context, key string) (*testEntry, error) {
			if key == "a" && calls.Add(1) == 1 {
				close(started)
				<-release
			}
			return &testEntry{Name: key}, nil
		})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := l.Get(ctx, "a")
		assert.NoError(t, err)
	}()
	<-started
	require.NoError(t, l.Invalidate(ctx, "b"))
	close(release)
	<-done

	assert.True(t, l.typed.Has(ctx, "t:a"))
}

func TestMenuCache_RoundTripsTree(t *testing.T) {
	parent := int64(1)
	items := []model.MenuItem{
		{ID: 1, MenuID: 1, Name: "Docs", URL: "/docs"},
		{ID: 2, MenuID: 1, ParentID: &parent, Name: "API", URL: "/docs/api"},
	}
	mc := NewMenuCache(newTestMemoryCache(t, 0), time.Hour,
		func(_ context.Context, slug string) (*MenuTree, error) {
			return &MenuTree{
				Menu:  model.Menu{ID: 1, Name: "Main", Slug: slug},
				Items: menutree.Build[int64](items),
			}, nil
		})
	ctx := context.Background()

	_, err := mc.Get(ctx, "main")
	require.NoError(t, err)

	// Second read is decoded from the backend.
	tree, err := mc.Get(ctx, "main")
	require.NoError(t, err)
	require.Len(t, tree.Items, 1)
	require.Len(t, tree.Items[0].Children, 1)
	assert.Equal(t, "API", tree.Items[0].Children[0].Item.Name)
	assert.Equal(t, parent, *tree.Items[0].Children[0].Item.ParentID)
}

func TestSettingsCache(t *testing.T) {
	sc := NewSettingsCache(newTestMemoryCache(t, 0), time.Hour,
		func(_ context.Context, key string) (*SettingValues, error) {
			assert.Equal(t, SettingsKey, key)
			return &SettingValues{"menus.max_depth": "3"}, nil
		})

	v, err := sc.Get(context.Background(), SettingsKey)
	require.NoError(t, err)
	assert.Equal(t, "3", (*v)["menus.max_depth"])
}
