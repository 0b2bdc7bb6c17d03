// Package localstore is the terminal's counterpart of browser localStorage:
// a flat key/value blob store with last-write-wins semantics.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotFound is returned by Get for keys that were never set or were deleted.
var ErrNotFound = errors.New("localstore: key not found")

// ErrInvalidKey rejects keys that cannot be mapped onto every driver.
var ErrInvalidKey = errors.New("localstore: invalid key")

// Store holds opaque values by key. Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a driver.
type Options struct {
	Driver    string
	Path      string
	RedisAddr string
	PGDSN     string
	SQLiteDSN string
	Namespace string
}

// Open builds the configured driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	ns := opts.Namespace
	if ns == "" {
		ns = "pos"
	}
	switch strings.ToLower(opts.Driver) {
	case "", "file":
		return NewFileStore(opts.Path)
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		return OpenRedis(ctx, opts.RedisAddr, ns)
	case "postgres":
		return OpenPostgres(ctx, opts.PGDSN, ns)
	case "sqlite":
		return OpenSQLite(ctx, opts.SQLiteDSN, ns)
	default:
		return nil, fmt.Errorf("localstore: unknown driver %q", opts.Driver)
	}
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

func checkKey(key string) error {
	if !keyPattern.MatchString(key) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
