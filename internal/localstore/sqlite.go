package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS pos_local_storage (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (namespace, key)
)`

// SQLiteStore keeps values in a local SQLite file.
type SQLiteStore struct {
	db        *sqlx.DB
	namespace string
}

type sqliteRow struct {
	Value []byte `db:"value"`
}

// OpenSQLite opens dsn and creates the table when missing.
func OpenSQLite(ctx context.Context, dsn, namespace string) (*SQLiteStore, error) {
	conn, err := db.OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("localstore: sqlite schema: %w", err)
	}
	return &SQLiteStore{db: conn, namespace: namespace}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var row sqliteRow
	err := s.db.GetContext(ctx, &row,
		`SELECT value FROM pos_local_storage WHERE namespace = ? AND key = ?`, s.namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: sqlite get %s: %w", key, err)
	}
	return row.Value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO pos_local_storage (namespace, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		s.namespace, key, value)
	if err != nil {
		return fmt.Errorf("localstore: sqlite set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pos_local_storage WHERE namespace = ? AND key = ?`, s.namespace, key); err != nil {
		return fmt.Errorf("localstore: sqlite delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
