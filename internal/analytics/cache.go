package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "reports:version"
	bumpTimeout     = 2 * time.Second
)

// Cache keeps report replies in Redis under a global version. Bumping the
// version after a sale makes every cached report stale at once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"reports"}, parts...), ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// Bump invalidates every cached report.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// Checkout bumps the version after a completed sale so the next report
// load sees it.
func (c *Cache) Checkout(outcome string) {
	if outcome != "completed" || !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), bumpTimeout)
	defer cancel()
	if err := c.Bump(ctx); err != nil {
		c.logger.Warn("bump reports cache", slog.Any("error", err))
	}
}

// fetch loads a cached value into dest or fills it from load. Cache read or
// write failures fall back to load; the reports still work without Redis.
func fetch[T any](ctx context.Context, c *Cache, key []string, load func(context.Context) (T, error)) (T, error) {
	if !c.enabled() {
		return load(ctx)
	}
	fullKey, err := c.BuildKey(ctx, key...)
	if err != nil {
		c.logger.Warn("reports cache unavailable", slog.Any("error", err))
		return load(ctx)
	}
	if payload, err := c.client.Get(ctx, fullKey).Bytes(); err == nil {
		var cached T
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("reports cache read", slog.String("key", fullKey), slog.Any("error", err))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	raw, err := json.Marshal(value)
	if err == nil {
		err = c.client.Set(ctx, fullKey, raw, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("reports cache write", slog.String("key", fullKey), slog.Any("error", err))
	}
	return value, nil
}

func branchToken(branchID int64) string {
	if branchID <= 0 {
		return "-"
	}
	return strconv.FormatInt(branchID, 10)
}
