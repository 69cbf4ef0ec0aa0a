// Package index builds an in-memory SQLite full-text index over a catalog.
//
// The index is derived data: it is built once from an immutable catalog,
// never written afterwards, and discarded with the process.
package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Open creates an in-memory database and indexes every entry of c.
// The pool is pinned to a single connection: each new connection to
// ":memory:" would see its own empty database.
func Open(ctx context.Context, c *catalog.Catalog) (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := populate(ctx, db, c); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(ctx context.Context, db *sql.DB) error {
	version, err := GetUserVersion(ctx, db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: entries table and external-content FTS5 index
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS entries (
		  seq           INTEGER PRIMARY KEY,
		  category      TEXT NOT NULL,
		  category_fold TEXT NOT NULL,
		  title         TEXT NOT NULL,
		  body          TEXT NOT NULL,
		  code          TEXT,
		  lang          TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_entries_category
		ON entries(category_fold, seq);

		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
		  title, category, body, code,
		  content='entries',
		  content_rowid='seq',
		  tokenize='unicode61 remove_diacritics 2'
		);
		`
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(ctx, db, 1); err != nil {
			return err
		}
	}

	return nil
}

// populate inserts all entries in one transaction and rebuilds the FTS index.
func populate(ctx context.Context, db *sql.DB, c *catalog.Catalog) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (seq, category, category_fold, title, body, code, lang)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	seq := 0
	for e := range c.All() {
		if _, err := stmt.ExecContext(ctx,
			seq, e.Category, catalog.Fold(e.Category), e.Title, e.Body, toNullString(e.Code), e.Lang,
		); err != nil {
			return fmt.Errorf("failed to index entry %s: %w", e.Key(), err)
		}
		seq++
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO entries_fts(entries_fts) VALUES('rebuild')`); err != nil {
		return fmt.Errorf("failed to build full-text index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}
	return nil
}

// Count returns the number of indexed entries.
func Count(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, wrapQueryError(ctx, "count", err)
	}
	return n, nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(ctx context.Context, db *sql.DB, version int) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// wrapQueryError maps context cancellation to CANCELLED and anything else
// to INTERNAL.
func wrapQueryError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return errors.NewCancelled(op)
	}
	return errors.NewInternal(err)
}
