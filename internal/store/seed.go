// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/olegiv/zen-cms/internal/menutree"
	"github.com/olegiv/zen-cms/internal/util"
)

// SeedFile is the YAML document accepted by Seed.
//
//	menus:
//	  - name: Main
//	    slug: main
//	    items:
//	      - name: Home
//	        url: /
//	      - name: Docs
//	        url: /docs
//	        children:
//	          - name: API
//	            url: /docs/api
type SeedFile struct {
	Menus []SeedMenu `yaml:"menus"`
}

// SeedMenu describes one menu and its item tree.
type SeedMenu struct {
	Name        string     `yaml:"name"`
	Slug        string     `yaml:"slug"`
	Description string     `yaml:"description"`
	HTMLClass   string     `yaml:"html_class"`
	HTMLID      string     `yaml:"html_id"`
	Items       []SeedItem `yaml:"items"`
}

// SeedItem is a menu item with nested children. A nil SortOrder appends
// the item after its already seeded siblings.
type SeedItem struct {
	Name      string     `yaml:"name"`
	URL       string     `yaml:"url"`
	HTMLClass string     `yaml:"html_class"`
	HTMLID    string     `yaml:"html_id"`
	SortOrder *int       `yaml:"sort_order"`
	Children  []SeedItem `yaml:"children"`
}

// SeedResult counts what Seed created.
type SeedResult struct {
	Menus   int
	Items   int
	Skipped int
}

// DefaultSeed creates the main and footer menus. It is used when no seed
// file is configured.
var DefaultSeed = SeedFile{
	Menus: []SeedMenu{
		{Name: "Main Menu", Slug: "main", Items: []SeedItem{{Name: "Home", URL: "/"}}},
		{Name: "Footer Menu", Slug: "footer"},
	},
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(r io.Reader) (SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return SeedFile{}, fmt.Errorf("decoding seed: %w", err)
	}
	return f, nil
}

// Seed loads menus from a YAML document. Menus whose slug already exists
// are skipped, so seeding is safe to repeat.
func Seed(ctx context.Context, s *Store, r io.Reader) (SeedResult, error) {
	f, err := ParseSeed(r)
	if err != nil {
		return SeedResult{}, err
	}
	return SeedMenus(ctx, s, f)
}

// SeedMenus creates the menus of f inside a single transaction.
func SeedMenus(ctx context.Context, s *Store, f SeedFile) (SeedResult, error) {
	var res SeedResult
	err := s.InTx(ctx, func(q *Queries) error {
		var err error
		res, err = q.SeedMenus(ctx, f)
		return err
	})
	if err != nil {
		return SeedResult{}, err
	}

	slog.Info("seed complete", "menus", res.Menus, "items", res.Items, "skipped", res.Skipped)
	return res, nil
}

// SeedMenus creates the menus of f using q. Callers that want all or
// nothing run it on transaction-bound Queries.
func (q *Queries) SeedMenus(ctx context.Context, f SeedFile) (SeedResult, error) {
	var res SeedResult
	for _, m := range f.Menus {
		slug := m.Slug
		if slug == "" {
			slug = util.Slugify(m.Name)
		}
		if m.Name == "" || !util.IsValidSlug(slug) {
			return res, fmt.Errorf("seed menu %q: name and a valid slug are required", m.Name)
		}

		exists, err := q.MenuSlugExists(ctx, slug)
		if err != nil {
			return res, fmt.Errorf("checking menu %q: %w", slug, err)
		}
		if exists {
			slog.Info("menu already exists, skipping seed", "slug", slug)
			res.Skipped++
			continue
		}

		now := time.Now().UTC()
		menu, err := q.CreateMenu(ctx, CreateMenuParams{
			Name:        m.Name,
			Slug:        slug,
			Description: m.Description,
			HtmlClass:   m.HTMLClass,
			HtmlID:      m.HTMLID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return res, fmt.Errorf("creating menu %q: %w", slug, err)
		}
		res.Menus++

		n, err := seedItems(ctx, q, menu.ID, sql.NullInt64{}, m.Items)
		res.Items += n
		if err != nil {
			return res, fmt.Errorf("seeding items of %q: %w", slug, err)
		}
	}
	return res, nil
}

func seedItems(ctx context.Context, q *Queries, menuID int64, parent sql.NullInt64, items []SeedItem) (int, error) {
	var orders []int
	created := 0
	for _, it := range items {
		if it.Name == "" || it.URL == "" {
			return created, fmt.Errorf("item %q: name and url are required", it.Name)
		}

		order := menutree.NextOrder(orders...)
		if it.SortOrder != nil {
			order = *it.SortOrder
		}
		orders = append(orders, order)

		now := time.Now().UTC()
		row, err := q.CreateMenuItem(ctx, CreateMenuItemParams{
			MenuID:    menuID,
			ParentID:  parent,
			Name:      it.Name,
			Url:       it.URL,
			HtmlClass: it.HTMLClass,
			HtmlID:    it.HTMLID,
			SortOrder: int64(order),
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return created, fmt.Errorf("creating item %q: %w", it.Name, err)
		}
		created++

		n, err := seedItems(ctx, q, menuID, util.NullInt64FromValue(row.ID), it.Children)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
