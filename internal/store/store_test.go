// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testStore creates a migrated SQLite database in a temp dir.
func testStore(t *testing.T) *Store {
	t.Helper()

	db, err := Open(DialectSQLite, filepath.Join(t.TempDir(), "zen-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(context.Background(), db, DialectSQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	return NewStore(db, DialectSQLite)
}

func createTestMenu(t *testing.T, q *Queries, slug string) Menu {
	t.Helper()
	now := time.Now().UTC()
	m, err := q.CreateMenu(context.Background(), CreateMenuParams{
		Name:      strings.ToUpper(slug[:1]) + slug[1:],
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMenu(%s): %v", slug, err)
	}
	return m
}

func createTestItem(t *testing.T, q *Queries, menuID int64, parent sql.NullInt64, name string, order int64) MenuItem {
	t.Helper()
	now := time.Now().UTC()
	it, err := q.CreateMenuItem(context.Background(), CreateMenuItemParams{
		MenuID:    menuID,
		ParentID:  parent,
		Name:      name,
		Url:       "/" + strings.ToLower(name),
		SortOrder: order,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMenuItem(%s): %v", name, err)
	}
	return it
}

func TestParseDialect(t *testing.T) {
	for _, name := range []string{"sqlite", "mysql"} {
		if _, err := ParseDialect(name); err != nil {
			t.Errorf("ParseDialect(%q) error = %v", name, err)
		}
	}
	if _, err := ParseDialect("postgres"); err == nil {
		t.Error("ParseDialect(postgres) should fail")
	}
}

func TestSQLiteDSN(t *testing.T) {
	got := sqliteDSN("file:zen.db?mode=rwc")
	if !strings.HasPrefix(got, "file:zen.db?mode=rwc&") {
		t.Errorf("sqliteDSN kept query incorrectly: %s", got)
	}
	if !strings.Contains(got, "_pragma=foreign_keys(1)") {
		t.Errorf("sqliteDSN missing foreign_keys pragma: %s", got)
	}
	if strings.Count(sqliteDSN("zen.db"), "?") != 1 {
		t.Error("sqliteDSN should add exactly one '?'")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := Migrate(ctx, s.DB(), DialectSQLite); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	v, err := SchemaVersion(ctx, s.DB(), DialectSQLite)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 2 {
		t.Errorf("schema version = %d, want 2", v)
	}
}

func TestMenuCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	m := createTestMenu(t, s.Queries, "main")
	if m.ID == 0 {
		t.Fatal("menu.ID should not be 0")
	}

	got, err := s.GetMenuBySlug(ctx, "main")
	if err != nil {
		t.Fatalf("GetMenuBySlug: %v", err)
	}
	if got.ID != m.ID {
		t.Errorf("GetMenuBySlug ID = %d, want %d", got.ID, m.ID)
	}

	exists, err := s.MenuSlugExists(ctx, "main")
	if err != nil || !exists {
		t.Errorf("MenuSlugExists(main) = %v, %v; want true", exists, err)
	}
	exists, err = s.MenuSlugExistsExcluding(ctx, "main", m.ID)
	if err != nil || exists {
		t.Errorf("MenuSlugExistsExcluding(main, self) = %v, %v; want false", exists, err)
	}

	updated, err := s.UpdateMenu(ctx, UpdateMenuParams{
		Name:      "Primary",
		Slug:      "primary",
		HtmlClass: "nav",
		UpdatedAt: time.Now().UTC(),
		ID:        m.ID,
	})
	if err != nil {
		t.Fatalf("UpdateMenu: %v", err)
	}
	if updated.Slug != "primary" || updated.HtmlClass != "nav" {
		t.Errorf("UpdateMenu = %+v", updated)
	}

	if _, err := s.UpdateMenu(ctx, UpdateMenuParams{Name: "x", Slug: "x", ID: 9999}); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("UpdateMenu(missing) error = %v, want sql.ErrNoRows", err)
	}

	menus, err := s.ListMenus(ctx)
	if err != nil {
		t.Fatalf("ListMenus: %v", err)
	}
	if len(menus) != 1 {
		t.Errorf("len(ListMenus) = %d, want 1", len(menus))
	}

	if err := s.DeleteMenu(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMenu: %v", err)
	}
	if _, err := s.GetMenuByID(ctx, m.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetMenuByID after delete error = %v, want sql.ErrNoRows", err)
	}
}

func TestDuplicateMenuSlugRejected(t *testing.T) {
	s := testStore(t)
	createTestMenu(t, s.Queries, "main")

	now := time.Now().UTC()
	_, err := s.CreateMenu(context.Background(), CreateMenuParams{
		Name: "Other", Slug: "main", CreatedAt: now, UpdatedAt: now,
	})
	if err == nil {
		t.Error("expected unique constraint violation")
	}
}

func TestMenuItems(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	main := createTestMenu(t, s.Queries, "main")
	footer := createTestMenu(t, s.Queries, "footer")

	home := createTestItem(t, s.Queries, main.ID, sql.NullInt64{}, "Home", 0)
	docs := createTestItem(t, s.Queries, main.ID, sql.NullInt64{}, "Docs", 5)
	api := createTestItem(t, s.Queries, main.ID, sql.NullInt64{Int64: docs.ID, Valid: true}, "API", 0)
	createTestItem(t, s.Queries, footer.ID, sql.NullInt64{}, "Legal", 0)

	items, err := s.ListMenuItems(ctx, main.ID)
	if err != nil {
		t.Fatalf("ListMenuItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(ListMenuItems) = %d, want 3", len(items))
	}
	for _, it := range items {
		if it.MenuID != main.ID {
			t.Errorf("item %d belongs to menu %d, want %d", it.ID, it.MenuID, main.ID)
		}
	}
	if got := items[len(items)-1].ID; got != docs.ID {
		t.Errorf("last item = %d, want docs (%d)", got, docs.ID)
	}

	roots, err := s.ListSiblingSortOrders(ctx, main.ID, sql.NullInt64{})
	if err != nil {
		t.Fatalf("ListSiblingSortOrders(roots): %v", err)
	}
	if len(roots) != 2 {
		t.Errorf("root sort orders = %v, want two entries", roots)
	}

	kids, err := s.ListSiblingSortOrders(ctx, main.ID, sql.NullInt64{Int64: docs.ID, Valid: true})
	if err != nil {
		t.Fatalf("ListSiblingSortOrders(children): %v", err)
	}
	if len(kids) != 1 || kids[0] != 0 {
		t.Errorf("child sort orders = %v, want [0]", kids)
	}

	n, err := s.UpdateMenuItemSortOrder(ctx, UpdateMenuItemSortOrderParams{
		SortOrder: 9, UpdatedAt: time.Now().UTC(), ID: home.ID, MenuID: main.ID,
	})
	if err != nil || n != 1 {
		t.Errorf("UpdateMenuItemSortOrder = %d, %v; want 1, nil", n, err)
	}
	n, err = s.UpdateMenuItemSortOrder(ctx, UpdateMenuItemSortOrderParams{
		SortOrder: 9, UpdatedAt: time.Now().UTC(), ID: home.ID, MenuID: footer.ID,
	})
	if err != nil || n != 0 {
		t.Errorf("UpdateMenuItemSortOrder(wrong menu) = %d, %v; want 0, nil", n, err)
	}

	// Deleting a parent removes its subtree.
	if err := s.DeleteMenuItem(ctx, docs.ID); err != nil {
		t.Fatalf("DeleteMenuItem: %v", err)
	}
	if _, err := s.GetMenuItemByID(ctx, api.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("child still present after parent delete: %v", err)
	}

	// Deleting a menu removes its items.
	if err := s.DeleteMenu(ctx, main.ID); err != nil {
		t.Fatalf("DeleteMenu: %v", err)
	}
	count, err := s.CountMenuItems(ctx, main.ID)
	if err != nil || count != 0 {
		t.Errorf("CountMenuItems after menu delete = %d, %v; want 0", count, err)
	}
}

func TestUpdateMenuItem(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	m := createTestMenu(t, s.Queries, "main")
	a := createTestItem(t, s.Queries, m.ID, sql.NullInt64{}, "A", 0)
	b := createTestItem(t, s.Queries, m.ID, sql.NullInt64{}, "B", 1)

	got, err := s.UpdateMenuItem(ctx, UpdateMenuItemParams{
		ParentID:  sql.NullInt64{Int64: a.ID, Valid: true},
		Name:      "B2",
		Url:       "/b2",
		SortOrder: 3,
		UpdatedAt: time.Now().UTC(),
		ID:        b.ID,
	})
	if err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}
	if !got.ParentID.Valid || got.ParentID.Int64 != a.ID {
		t.Errorf("ParentID = %v, want %d", got.ParentID, a.ID)
	}
	if got.Name != "B2" || got.SortOrder != 3 {
		t.Errorf("UpdateMenuItem = %+v", got)
	}
}

func TestInTxRollsBack(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	wantErr := errors.New("abort")
	err := s.InTx(ctx, func(q *Queries) error {
		createTestMenu(t, q, "temp")
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("InTx error = %v, want %v", err, wantErr)
	}

	exists, err := s.MenuSlugExists(ctx, "temp")
	if err != nil {
		t.Fatalf("MenuSlugExists: %v", err)
	}
	if exists {
		t.Error("menu created inside a rolled back transaction is visible")
	}
}

func TestSettings(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, v := range []string{"3", "5"} {
		if err := s.UpsertSetting(ctx, UpsertSettingParams{
			Name: "menus.max_depth", GroupName: "menus", Value: v, UpdatedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("UpsertSetting(%s): %v", v, err)
		}
	}

	got, err := s.GetSetting(ctx, "menus.max_depth")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got.Value != "5" {
		t.Errorf("Value = %q, want 5", got.Value)
	}

	all, err := s.ListSettings(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("ListSettings = %d rows, %v; want 1", len(all), err)
	}

	if err := s.DeleteSetting(ctx, "menus.max_depth"); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	if _, err := s.GetSetting(ctx, "menus.max_depth"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetSetting after delete error = %v", err)
	}
}

func TestPackages(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreatePackage(ctx, CreatePackageParams{Name: "menus", IsActive: true, UpdatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	if err := s.SetPackageActive(ctx, SetPackageActiveParams{IsActive: false, UpdatedAt: time.Now().UTC(), Name: "menus"}); err != nil {
		t.Fatalf("SetPackageActive: %v", err)
	}
	p, err := s.GetPackage(ctx, "menus")
	if err != nil {
		t.Fatalf("GetPackage: %v", err)
	}
	if p.IsActive {
		t.Error("package should be inactive")
	}
	if err := s.SetPackageActive(ctx, SetPackageActiveParams{Name: "missing"}); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("SetPackageActive(missing) error = %v, want sql.ErrNoRows", err)
	}

	for _, v := range []int64{2, 1} {
		if err := s.RecordPackageMigration(ctx, RecordPackageMigrationParams{
			PackageName: "menus", Version: v, AppliedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("RecordPackageMigration(%d): %v", v, err)
		}
	}
	versions, err := s.ListPackageMigrations(ctx, "menus")
	if err != nil {
		t.Fatalf("ListPackageMigrations: %v", err)
	}
	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Errorf("versions = %v, want [1 2]", versions)
	}
}

func TestEvents(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	fresh := time.Now().UTC()

	events := []CreateEventParams{
		{Level: "warning", Category: "menu", Message: "old", CreatedAt: old},
		{Level: "error", Category: "menu", Message: "fresh", RequestID: "req-1", Metadata: `{"id":1}`, CreatedAt: fresh},
		{Level: "warning", Category: "system", Message: "other", CreatedAt: fresh},
	}
	for _, e := range events {
		if err := s.CreateEvent(ctx, e); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	menuEvents, err := s.ListEvents(ctx, ListEventsParams{Category: "menu", Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(menuEvents) != 2 {
		t.Fatalf("len(menu events) = %d, want 2", len(menuEvents))
	}
	if menuEvents[0].Message != "fresh" {
		t.Errorf("newest first: got %q", menuEvents[0].Message)
	}
	if menuEvents[0].RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", menuEvents[0].RequestID)
	}
	if menuEvents[1].Metadata != "{}" {
		t.Errorf("default metadata = %q, want {}", menuEvents[1].Metadata)
	}

	pruned, err := s.DeleteEventsBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteEventsBefore: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
}
