// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc computes the value for a key on a cache miss.
type LoadFunc[T any] func(ctx context.Context, key string) (*T, error)

// Loading is a read-through cache. Concurrent misses for the same key
// share one call to the load function.
//
// Every key carries a generation that Invalidate bumps, and InvalidateAll
// bumps a generation shared by all keys. A load stores its result only if
// neither generation moved while it ran, and callers only share a load
// that started under the current generation.
type Loading[T any] struct {
	typed  *TypedCache[T]
	prefix string
	load   LoadFunc[T]
	group  singleflight.Group

	mu   sync.Mutex
	all  uint64
	gens map[string]uint64
}

type generation struct {
	all, key uint64
}

// NewLoading creates a read-through cache storing entries under prefix.
func NewLoading[T any](backend Cacher, name, prefix string, ttl time.Duration, load LoadFunc[T]) *Loading[T] {
	return &Loading[T]{
		typed:  NewTypedCache[T](backend, name, ttl),
		prefix: prefix,
		load:   load,
		gens:   make(map[string]uint64),
	}
}

func (l *Loading[T]) generation(key string) generation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return generation{all: l.all, key: l.gens[key]}
}

// store writes value unless key was invalidated after gen was taken. The
// lock is held across the write so an invalidation cannot slip between
// the check and the Set.
func (l *Loading[T]) store(ctx context.Context, key string, gen generation, value *T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.all != gen.all || l.gens[key] != gen.key {
		return nil
	}
	return l.typed.Set(ctx, l.prefix+key, value)
}

// Get returns the cached value for key, loading it on a miss. The shared
// load is detached from the cancellation of the caller that started it.
func (l *Loading[T]) Get(ctx context.Context, key string) (*T, error) {
	if v, ok := l.typed.Get(ctx, l.prefix+key); ok {
		return v, nil
	}

	gen := l.generation(key)
	ch := l.group.DoChan(fmt.Sprintf("%s@%d.%d", key, gen.all, gen.key), func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		value, err := l.load(loadCtx, key)
		if err != nil {
			return nil, err
		}
		_ = l.store(loadCtx, key, gen, value)
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*T), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Load bypasses the cache and calls the load function directly.
func (l *Loading[T]) Load(ctx context.Context, key string) (*T, error) {
	return l.load(ctx, key)
}

// Invalidate drops key.
func (l *Loading[T]) Invalidate(ctx context.Context, key string) error {
	l.mu.Lock()
	l.gens[key]++
	l.mu.Unlock()
	return l.typed.Delete(ctx, l.prefix+key)
}

// InvalidateAll drops every entry of this cache.
func (l *Loading[T]) InvalidateAll(ctx context.Context) error {
	l.mu.Lock()
	l.all++
	clear(l.gens)
	l.mu.Unlock()
	return l.typed.DeleteByPrefix(ctx, l.prefix)
}

// Warm loads keys into the cache, replacing what is there. A key
// invalidated while its value was loading is left empty for the next Get.
// It stops at the first error.
func (l *Loading[T]) Warm(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		gen := l.generation(key)
		value, err := l.load(ctx, key)
		if err != nil {
			return err
		}
		if err := l.store(ctx, key, gen, value); err != nil {
			return err
		}
	}
	return nil
}
