package localstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS pos_local_storage (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

// PostgresStore keeps values in the pos_local_storage table, one row per key.
type PostgresStore struct {
	pool      *pgxpool.Pool
	namespace string
	owned     bool
}

// OpenPostgres connects to dsn and creates the table when missing.
func OpenPostgres(ctx context.Context, dsn, namespace string) (*PostgresStore, error) {
	pool, err := db.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	store, err := NewPostgresStore(ctx, pool, namespace)
	if err != nil {
		pool.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

// NewPostgresStore uses an existing pool; Close leaves it open.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, namespace string) (*PostgresStore, error) {
	if err := db.Migrate(ctx, pool, postgresSchema); err != nil {
		return nil, fmt.Errorf("localstore: postgres schema: %w", err)
	}
	return &PostgresStore{pool: pool, namespace: namespace}, nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM pos_local_storage WHERE namespace = $1 AND key = $2`,
		p.namespace, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: postgres get %s: %w", key, err)
	}
	return value, nil
}

func (p *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO pos_local_storage (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		p.namespace, key, value)
	if err != nil {
		return fmt.Errorf("localstore: postgres set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, `DELETE FROM pos_local_storage WHERE namespace = $1 AND key = $2`, p.namespace, key)
	if err != nil {
		return fmt.Errorf("localstore: postgres delete %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	if p.owned {
		p.pool.Close()
	}
	return nil
}
