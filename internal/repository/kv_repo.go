package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type KVSQLite struct {
	db *sql.DB
}

func NewKVSQLite(db *sql.DB) *KVSQLite { return &KVSQLite{db: db} }

func (r *KVSQLite) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv_state(key, value, updated_ts)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_ts=excluded.updated_ts
	`, key, value, time.Now().UnixMilli())
	return err
}

// Get returns the stored value and whether the key exists.
func (r *KVSQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM kv_state WHERE key=?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
