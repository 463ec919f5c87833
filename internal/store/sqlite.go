package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// ReadAllMatching returns every setting whose key starts with prefix.
// The comparison is done in Go: LIKE would treat the '_' in "notif_" as a wildcard.
func (r *SQLiteRepo) ReadAllMatching(ctx context.Context, prefix string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value
		FROM settings
		WHERE key >= ?
		ORDER BY key ASC`,
		prefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if !strings.HasPrefix(key, prefix) {
			// Keys are sorted, so nothing further can match.
			break
		}
		res[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Write upserts a single setting.
func (r *SQLiteRepo) Write(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("write: empty key")
	}
	return upsertSetting(ctx, r.db, key, value)
}

// WriteMany upserts all settings in one transaction: either every key is stored or none is.
func (r *SQLiteRepo) WriteMany(ctx context.Context, settings []Setting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, s := range settings {
		if s.Key == "" {
			_ = tx.Rollback()
			return fmt.Errorf("write many: empty key")
		}
		if err := upsertSetting(ctx, tx, s.Key, s.Value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write %s: %w", s.Key, err)
		}
	}
	return tx.Commit()
}
