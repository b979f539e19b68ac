// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package settings holds the registry that packages declare their settings
// into. Definitions live in code; values are persisted in the settings table
// and read through a cache.
package settings

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/store"
)

var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrUnknownGroup   = errors.New("unknown settings group")
	ErrDuplicate      = errors.New("already registered")
	ErrInvalidValue   = errors.New("invalid setting value")
)

// Group is a named collection of settings, usually one per package.
type Group struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	SortOrder int    `json:"sort_order"`
}

// Setting is a code-declared setting definition.
type Setting struct {
	Name        string   `json:"name"` // "group.key"
	Group       string   `json:"group"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Default     string   `json:"default"`
	Options     []string `json:"options,omitempty"` // allowed values for select
}

// Value is a setting definition together with its effective value.
type Value struct {
	Setting
	Value     string `json:"value"`
	IsDefault bool   `json:"is_default"`
}

// Registry is the settings registry. It is safe for concurrent use.
type Registry struct {
	store *store.Store
	cache *cache.SettingsCache

	mu     sync.RWMutex
	groups map[string]Group
	defs   map[string]Setting
	order  []string // registration order of setting names
}

// NewRegistry creates a registry persisting values through s. Values are
// cached in backend for ttl.
func NewRegistry(s *store.Store, backend cache.Cacher, ttl time.Duration) *Registry {
	r := &Registry{
		store:  s,
		groups: make(map[string]Group),
		defs:   make(map[string]Setting),
	}
	r.cache = cache.NewSettingsCache(backend, ttl, r.loadValues)
	return r
}

func (r *Registry) loadValues(ctx context.Context, _ string) (*cache.SettingValues, error) {
	rows, err := r.store.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	values := make(cache.SettingValues, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	return &values, nil
}

// RegisterGroup declares a settings group.
func (r *Registry) RegisterGroup(g Group) error {
	if g.Name == "" {
		return fmt.Errorf("settings group: empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[g.Name]; exists {
		return fmt.Errorf("settings group %q: %w", g.Name, ErrDuplicate)
	}
	if g.Title == "" {
		g.Title = g.Name
	}
	r.groups[g.Name] = g
	return nil
}

// Register declares a setting. Its group must already be registered and
// its default must be valid for its type.
func (r *Registry) Register(s Setting) error {
	if s.Type == "" {
		s.Type = model.SettingTypeString
	}
	if s.Group == "" {
		s.Group, _, _ = strings.Cut(s.Name, ".")
	}
	if !strings.HasPrefix(s.Name, s.Group+".") || len(s.Name) == len(s.Group)+1 {
		return fmt.Errorf("setting %q: name must have the form %s.<key>", s.Name, s.Group)
	}
	def, err := normalize(s, s.Default)
	if err != nil {
		return fmt.Errorf("setting %q default: %w", s.Name, err)
	}
	s.Default = def

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[s.Group]; !ok {
		return fmt.Errorf("setting %q group %q: %w", s.Name, s.Group, ErrUnknownGroup)
	}
	if _, exists := r.defs[s.Name]; exists {
		return fmt.Errorf("setting %q: %w", s.Name, ErrDuplicate)
	}
	r.defs[s.Name] = s
	r.order = append(r.order, s.Name)
	return nil
}

// Definition returns the definition for name.
func (r *Registry) Definition(name string) (Setting, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.defs[name]
	return s, ok
}

// Groups returns the registered groups by sort order, then name.
func (r *Registry) Groups() []Group {
	r.mu.RLock()
	out := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Group) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Get returns the effective value of name: the persisted value or the
// declared default.
func (r *Registry) Get(ctx context.Context, name string) (string, error) {
	def, ok := r.Definition(name)
	if !ok {
		return "", fmt.Errorf("setting %q: %w", name, ErrUnknownSetting)
	}
	values, err := r.cache.Get(ctx, cache.SettingsKey)
	if err != nil {
		return "", err
	}
	if v, ok := (*values)[name]; ok {
		return v, nil
	}
	return def.Default, nil
}

// GetBool returns a bool setting. Unparsable stored values read as false.
func (r *Registry) GetBool(ctx context.Context, name string) (bool, error) {
	v, err := r.Get(ctx, name)
	if err != nil {
		return false, err
	}
	b, _ := strconv.ParseBool(v)
	return b, nil
}

// GetInt returns an int setting. Unparsable stored values read as 0.
func (r *Registry) GetInt(ctx context.Context, name string) (int, error) {
	v, err := r.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	n, _ := strconv.Atoi(v)
	return n, nil
}

// Set validates and persists a value for name.
func (r *Registry) Set(ctx context.Context, name, value string) error {
	def, ok := r.Definition(name)
	if !ok {
		return fmt.Errorf("setting %q: %w", name, ErrUnknownSetting)
	}
	v, err := normalize(def, value)
	if err != nil {
		return fmt.Errorf("setting %q: %w", name, err)
	}

	err = r.store.UpsertSetting(ctx, store.UpsertSettingParams{
		Name:      name,
		GroupName: def.Group,
		Value:     v,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("saving setting %q: %w", name, err)
	}
	return r.cache.InvalidateAll(ctx)
}

// Reset removes the persisted value so name falls back to its default.
func (r *Registry) Reset(ctx context.Context, name string) error {
	if _, ok := r.Definition(name); !ok {
		return fmt.Errorf("setting %q: %w", name, ErrUnknownSetting)
	}
	if err := r.store.DeleteSetting(ctx, name); err != nil {
		return fmt.Errorf("resetting setting %q: %w", name, err)
	}
	return r.cache.InvalidateAll(ctx)
}

// List returns the settings of group in registration order with their
// effective values. An empty group lists every setting.
func (r *Registry) List(ctx context.Context, group string) ([]Value, error) {
	r.mu.RLock()
	if _, ok := r.groups[group]; group != "" && !ok {
		r.mu.RUnlock()
		return nil, fmt.Errorf("settings group %q: %w", group, ErrUnknownGroup)
	}
	defs := make([]Setting, 0, len(r.order))
	for _, name := range r.order {
		if s := r.defs[name]; group == "" || s.Group == group {
			defs = append(defs, s)
		}
	}
	r.mu.RUnlock()

	values, err := r.cache.Get(ctx, cache.SettingsKey)
	if err != nil {
		return nil, err
	}

	out := make([]Value, 0, len(defs))
	for _, s := range defs {
		v, ok := (*values)[s.Name]
		if !ok {
			v = s.Default
		}
		out = append(out, Value{Setting: s, Value: v, IsDefault: !ok})
	}
	return out, nil
}

// normalize checks value against the setting type and returns its
// canonical stored form.
func normalize(s Setting, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch s.Type {
	case model.SettingTypeString:
		return value, nil
	case model.SettingTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, value)
		}
		return strconv.FormatBool(b), nil
	case model.SettingTypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, value)
		}
		return strconv.Itoa(n), nil
	case model.SettingTypeSelect:
		if !slices.Contains(s.Options, value) {
			return "", fmt.Errorf("%w: %q is not one of %s", ErrInvalidValue, value, strings.Join(s.Options, ", "))
		}
		return value, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidValue, s.Type)
	}
}
