// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/store"
	"github.com/olegiv/zen-cms/internal/testutil"
)

func newTestRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	s := testutil.TestStore(t)
	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = backend.Close() })

	r := NewRegistry(s, backend, time.Hour)
	require.NoError(t, r.RegisterGroup(Group{Name: "menus", Title: "Menus", SortOrder: 10}))
	require.NoError(t, r.RegisterGroup(Group{Name: "site", SortOrder: 1}))
	require.NoError(t, r.Register(Setting{Name: "menus.max_depth", Type: model.SettingTypeInt, Default: "0"}))
	require.NoError(t, r.Register(Setting{Name: "menus.cache_trees", Type: model.SettingTypeBool, Default: "true"}))
	require.NoError(t, r.Register(Setting{
		Name:    "site.theme",
		Type:    model.SettingTypeSelect,
		Default: "light",
		Options: []string{"light", "dark"},
	}))
	require.NoError(t, r.Register(Setting{Name: "site.title", Default: "Zen"}))
	return r, s
}

func TestRegistry_Defaults(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	depth, err := r.GetInt(ctx, "menus.max_depth")
	require.NoError(t, err)
	assert.Equal(t, 0, depth)

	cacheTrees, err := r.GetBool(ctx, "menus.cache_trees")
	require.NoError(t, err)
	assert.True(t, cacheTrees)

	title, err := r.Get(ctx, "site.title")
	require.NoError(t, err)
	assert.Equal(t, "Zen", title)
}

func TestRegistry_SetPersistsAndInvalidates(t *testing.T) {
	r, s := newTestRegistry(t)
	ctx := context.Background()

	// Prime the cache with defaults.
	_, err := r.Get(ctx, "menus.max_depth")
	require.NoError(t, err)

	require.NoError(t, r.Set(ctx, "menus.max_depth", " 3 "))
	require.NoError(t, r.Set(ctx, "menus.cache_trees", "0"))

	depth, err := r.GetInt(ctx, "menus.max_depth")
	require.NoError(t, err)
	assert.Equal(t, 3, depth)

	cacheTrees, err := r.GetBool(ctx, "menus.cache_trees")
	require.NoError(t, err)
	assert.False(t, cacheTrees)

	row, err := s.GetSetting(ctx, "menus.cache_trees")
	require.NoError(t, err)
	assert.Equal(t, "false", row.Value)
	assert.Equal(t, "menus", row.GroupName)
}

func TestRegistry_SetRejectsInvalidValues(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name, value string
	}{
		{"menus.max_depth", "deep"},
		{"menus.cache_trees", "maybe"},
		{"site.theme", "blue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Set(ctx, tt.name, tt.value)
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}

	assert.ErrorIs(t, r.Set(ctx, "site.missing", "x"), ErrUnknownSetting)
	_, err := r.Get(ctx, "site.missing")
	assert.ErrorIs(t, err, ErrUnknownSetting)
}

func TestRegistry_Reset(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "site.theme", "dark"))
	v, err := r.Get(ctx, "site.theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	require.NoError(t, r.Reset(ctx, "site.theme"))
	v, err = r.Get(ctx, "site.theme")
	require.NoError(t, err)
	assert.Equal(t, "light", v)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	r, _ := newTestRegistry(t)

	assert.ErrorIs(t, r.RegisterGroup(Group{Name: "menus"}), ErrDuplicate)
	assert.ErrorIs(t, r.Register(Setting{Name: "menus.max_depth", Type: model.SettingTypeInt}), ErrInvalidValue)
	assert.ErrorIs(t, r.Register(Setting{Name: "menus.max_depth", Type: model.SettingTypeInt, Default: "1"}), ErrDuplicate)
	assert.ErrorIs(t, r.Register(Setting{Name: "blog.per_page", Default: "10"}), ErrUnknownGroup)
	assert.Error(t, r.Register(Setting{Name: "menus", Default: "x"}))
	assert.Error(t, r.Register(Setting{Name: "other.key", Group: "menus"}))
	assert.Error(t, r.RegisterGroup(Group{}))
}

func TestRegistry_GroupsAndList(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	groups := r.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "site", groups[0].Name)
	assert.Equal(t, "site", groups[0].Title)
	assert.Equal(t, "menus", groups[1].Name)

	require.NoError(t, r.Set(ctx, "menus.max_depth", "2"))

	values, err := r.List(ctx, "menus")
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "menus.max_depth", values[0].Name)
	assert.Equal(t, "2", values[0].Value)
	assert.False(t, values[0].IsDefault)
	assert.Equal(t, "menus.cache_trees", values[1].Name)
	assert.True(t, values[1].IsDefault)

	all, err := r.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = r.List(ctx, "blog")
	assert.ErrorIs(t, err, ErrUnknownGroup)
}
