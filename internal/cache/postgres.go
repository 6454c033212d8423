package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitquest/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgCreateTableSQL = `
CREATE TABLE IF NOT EXISTS kv_entry
(
    key        VARCHAR PRIMARY KEY,
    value      BYTEA       NOT NULL,
    expires_at TIMESTAMPTZ
);`

var _ Backend = (*PostgresBackend)(nil)

// PostgresBackend stores entries in the kv_entry table. maxEntries caps the
// row count, zero means unlimited.
type PostgresBackend struct {
	db         *pgxpool.Pool
	maxEntries int
}

func NewPostgresBackend(ctx context.Context, db *pgxpool.Pool, maxEntries int) (*PostgresBackend, error) {
	if _, err := db.Exec(ctx, pgCreateTableSQL); err != nil {
		return nil, fmt.Errorf("create kv_entry table: %w", err)
	}
	return &PostgresBackend{
		db:         db,
		maxEntries: maxEntries,
	}, nil
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(
		ctx,
		`SELECT value FROM kv_entry WHERE key = $1 AND (expires_at IS NULL OR expires_at > now());`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pg get: %w", err)
	}
	return value, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if p.maxEntries > 0 {
		var count int
		err := p.db.QueryRow(
			ctx,
			`SELECT count(*) FROM kv_entry WHERE key != $1;`,
			key,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("pg count: %w", err)
		}
		if count >= p.maxEntries {
			return ErrQuotaExceeded
		}
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	_, err := p.db.Exec(
		ctx,
		`INSERT INTO kv_entry (key, value, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at;`,
		key, value, expiresAt,
	)
	if err != nil {
		if pkg.IsDiskFullError(err) || pkg.IsQuotaError(err) {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("pg set: %w", err)
	}

	return nil
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM kv_entry WHERE key = $1;`, key); err != nil {
		return fmt.Errorf("pg delete: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := p.db.Query(
		ctx,
		`SELECT key FROM kv_entry WHERE starts_with(key, $1) ORDER BY key;`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("pg keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		keys = append(keys, k)
	}

	return keys, rows.Err()
}

// Close is a no-op, the pool is owned by the caller.
func (p *PostgresBackend) Close() error {
	return nil
}
