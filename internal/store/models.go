package store

import (
	"context"
	"database/sql"
	"time"
)

func nowUnix() int64 {
	return time.Now().UTC().Unix()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// upsertSetting inserts or replaces one key.
func upsertSetting(ctx context.Context, ex execer, key, value string) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, nowUnix(),
	)
	return err
}
