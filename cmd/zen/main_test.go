// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/zen-cms/internal/cache"
	"github.com/olegiv/zen-cms/internal/menutree"
	"github.com/olegiv/zen-cms/internal/model"
)

const docsSeed = `menus:
  - name: Docs
    slug: docs
    items:
      - name: Guide
        url: /guide
        children:
          - name: Install
            url: /guide/install
      - name: API
        url: /api
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "zen "), out)
}

func TestSeedAndTreeCmds(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ZEN_DB_DRIVER", "sqlite")
	t.Setenv("ZEN_DB_DSN", filepath.Join(dir, "data", "zen.db"))
	t.Setenv("ZEN_LOG_LEVEL", "error")

	seed := filepath.Join(dir, "menus.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(docsSeed), 0o600))

	out, err := execute(t, "seed", seed)
	require.NoError(t, err)
	assert.Contains(t, out, "created 1 menus with 3 items, skipped 0")

	out, err = execute(t, "seed", seed)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped 1")

	out, err = execute(t, "tree", "docs")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5, out)
	assert.Equal(t, "Docs (docs)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  - Guide  /guide"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "    - Install  /guide/install"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "  - API  /api"), lines[3])
	assert.Equal(t, "3 items", lines[4])

	out, err = execute(t, "tree", "docs", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"slug": "docs"`)

	_, err = execute(t, "tree", "missing")
	assert.Error(t, err)
}

func TestSeedCmdRequiresFile(t *testing.T) {
	_, err := execute(t, "seed")
	assert.Error(t, err)
}

func TestPrintTree(t *testing.T) {
	parent := int64(1)
	items := []model.MenuItem{
		{ID: 1, Name: "Home", URL: "/", SortOrder: 0},
		{ID: 2, Name: "About", URL: "/about", SortOrder: 1},
		{ID: 3, Name: "Team", URL: "/about/team", ParentID: &parent, SortOrder: 0},
	}
	// Team hangs under Home here.
	tree := &cache.MenuTree{
		Menu:  model.Menu{Name: "Main Menu", Slug: "main"},
		Items: menutree.Build[int64](items),
	}

	var buf bytes.Buffer
	printTree(&buf, tree)

	want := "Main Menu (main)\n" +
		"  - Home  /  [#1 order 0]\n" +
		"    - Team  /about/team  [#3 order 0]\n" +
		"  - About  /about  [#2 order 1]\n" +
		"3 items\n"
	assert.Equal(t, want, buf.String())
}
