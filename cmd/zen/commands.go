// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/menutree"
	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/service"
	"github.com/olegiv/zen-cms/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply core and package database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			v, err := store.SchemaVersion(cmd.Context(), a.db, a.store.Dialect())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d, %d packages\n", v, a.packages.Count())
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load menus and their items from a YAML file",
		Long: `Loads menus and nested items from a YAML file. Menus whose slug
already exists are skipped, so a file can be seeded repeatedly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close() }()

			res, err := seedFile(cmd.Context(), d.store, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %d menus with %d items, skipped %d\n",
				res.Menus, res.Items, res.Skipped)
			return nil
		},
	}
}

func seedFile(ctx context.Context, s *store.Store, path string) (store.SeedResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return store.SeedResult{}, fmt.Errorf("opening seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return store.Seed(ctx, s, f)
}

func newTreeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tree <slug>",
		Short: "Print the item tree of a menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close() }()

			backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: cfg.CacheTTL})
			defer func() { _ = backend.Close() }()

			svc := service.NewMenuService(d.store, backend, cfg.CacheTTL, nil, d.logger)
			t, err := svc.BuildTree(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(t)
			}
			printTree(cmd.OutOrStdout(), t)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	return cmd
}

// printTree writes a menu tree as an indented outline.
func printTree(w io.Writer, t *cache.MenuTree) {
	_, _ = fmt.Fprintf(w, "%s (%s)\n", t.Menu.Name, t.Menu.Slug)
	printNodes(w, t.Items, 1)
	_, _ = fmt.Fprintf(w, "%d items\n", menutree.Count(t.Items))
}

func printNodes(w io.Writer, nodes []menutree.Node[model.MenuItem], depth int) {
	for _, n := range nodes {
		_, _ = fmt.Fprintf(w, "%s- %s  %s  [#%d order %d]\n",
			strings.Repeat("  ", depth), n.Item.Name, n.Item.URL, n.Item.ID, n.Item.SortOrder)
		printNodes(w, n.Children, depth+1)
	}
}
