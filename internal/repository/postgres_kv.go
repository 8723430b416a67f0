package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV stores values in the kv_store table (see internal/migrations).
type PostgresKV struct {
	db *pgxpool.Pool
}

func NewPostgresKV(db *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{db: db}
}

func (r *PostgresKV) Read(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *PostgresKV) Write(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	return err
}

func (r *PostgresKV) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// EnsureSchema creates kv_store when it does not exist yet. migrate_apply
// runs the same statement from internal/migrations.
func (r *PostgresKV) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createKVTable)
	return err
}

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv_store (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
