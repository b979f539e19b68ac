// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/zen-cms/internal/store"
)

// RedisURLEnv names the variable that enables tests against a live Redis.
const RedisURLEnv = "ZEN_TEST_REDIS_URL"

// TestLogger creates a quiet test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary SQLite database with core migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "zen-test.db")

	db, err := store.Open(store.DialectSQLite, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := store.Migrate(context.Background(), db, store.DialectSQLite); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
	}
}

// TestStore is TestDB wrapped in a store.Store; the database is closed
// when the test ends.
func TestStore(t *testing.T) *store.Store {
	t.Helper()

	db, cleanup := TestDB(t)
	t.Cleanup(cleanup)
	return store.NewStore(db, store.DialectSQLite)
}

// RedisURL returns the Redis URL for integration tests or skips the test.
func RedisURL(t *testing.T) string {
	t.Helper()

	url := os.Getenv(RedisURLEnv)
	if url == "" {
		t.Skipf("%s not set, skipping Redis test", RedisURLEnv)
	}
	return url
}
