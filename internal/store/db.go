// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the application's SQL against a DBTX.
type Queries struct {
	db      DBTX
	dialect Dialect
}

// New returns Queries for a SQLite connection.
func New(db DBTX) *Queries {
	return &Queries{db: db, dialect: DialectSQLite}
}

// NewForDialect returns Queries that emit SQL for the given dialect.
func NewForDialect(db DBTX, d Dialect) *Queries {
	return &Queries{db: db, dialect: d}
}

// Conn returns the connection or transaction q runs on.
func (q *Queries) Conn() DBTX {
	return q.db
}

// Dialect returns the SQL dialect in use.
func (q *Queries) Dialect() Dialect {
	return q.dialect
}

// WithTx returns a copy of q bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

// Store couples Queries with the connection pool so callers can open
// transactions.
type Store struct {
	*Queries
	db *sql.DB
}

// NewStore wraps db.
func NewStore(db *sql.DB, d Dialect) *Store {
	return &Store{Queries: NewForDialect(db, d), db: db}
}

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InTx runs fn with transaction-bound Queries. The transaction is committed
// when fn returns nil and rolled back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
