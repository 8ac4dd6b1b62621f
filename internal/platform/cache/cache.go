package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the slice of the Redis API the cache-aside layer needs. *redis.Client
// satisfies it; tests substitute a map-backed fake.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// KeyConfig carries the entity key prefixes. Passed explicitly so key layout
// is a wiring decision, not a package global.
type KeyConfig struct {
	UserPrefix  string
	OrderPrefix string
}

func DefaultKeys() KeyConfig {
	return KeyConfig{UserPrefix: "User_", OrderPrefix: "Order_"}
}

func (k KeyConfig) UserKey(id string) string  { return k.UserPrefix + id }
func (k KeyConfig) OrderKey(id string) string { return k.OrderPrefix + id }

// Cache is a look-aside cache of JSON-serialized entities with absolute
// expiry. The backing store stays authoritative; every entry here is a
// disposable projection, so cache failures degrade to the loader rather
// than failing the request.
type Cache struct {
	kv     KV
	logger *slog.Logger
}

func New(kv KV, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{kv: kv, logger: logger}
}

func Connect(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if !strings.EqualFold(res, "PONG") {
		_ = client.Close()
		return nil, fmt.Errorf("unexpected redis ping result: %s", res)
	}
	return client, nil
}

// Put serializes value and stores it under key with the given TTL. A single
// SET is atomic, so a cancelled Put never leaves a partial entry.
func (c *Cache) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serialize cache entry %s: %w", key, err)
	}
	if err := c.kv.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store cache entry %s: %w", key, err)
	}
	return nil
}

// lookup returns the raw entry and whether it was present. Transport errors
// count as a miss.
func (c *Cache) lookup(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.kv.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			c.logger.Warn("cache lookup failed, falling through",
				"event", "cache_lookup_failed",
				"module", "internal/platform/cache",
				"layer", "platform",
				"key", key,
				"error", err.Error(),
			)
		}
		return nil, false
	}
	return raw, true
}

// GetOrLoad returns the cached value for key, or invokes loader on a miss and
// populates the cache with the result. Concurrent misses for the same key may
// each invoke loader; duplicate backing-store reads are accepted over per-key
// locking.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, loader func(context.Context) (T, error)) (T, error) {
	var value T

	if raw, ok := c.lookup(ctx, key); ok {
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, nil
		}
		// Undecodable entry: treat as a miss and overwrite below.
		c.logger.Warn("discarding undecodable cache entry",
			"event", "cache_entry_invalid",
			"module", "internal/platform/cache",
			"layer", "platform",
			"key", key,
		)
	}

	value, err := loader(ctx)
	if err != nil {
		return value, err
	}

	if err := c.Put(ctx, key, value, ttl); err != nil && ctx.Err() == nil {
		c.logger.Warn("cache populate failed",
			"event", "cache_populate_failed",
			"module", "internal/platform/cache",
			"layer", "platform",
			"key", key,
			"error", err.Error(),
		)
	}
	return value, nil
}
