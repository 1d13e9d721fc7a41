package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fieldplanner/internal/geo"
)

// RedisConfig configures the shared, cross-process TimeCache backend
// (spec §5's "inter-request... shared state is the time-oracle cache").
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	TTL      time.Duration
}

// RedisCache is a TimeCache backend shared across concurrent planner
// processes. Pool construction and health check are adapted from
// shivamshaw23-Hintro's pkg/cache/redis.go.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a RedisCache, verifying connectivity with a
// bounded ping the same way Hintro's NewRedisClient does.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 100
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		MinIdleConns: 10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// HealthCheck pings Redis and returns nil if healthy.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.client.Ping(pingCtx).Err()
}

// Get implements TimeCache.
func (c *RedisCache) Get(ctx context.Context, origin, dest geo.Point) (Entry, bool, error) {
	raw, err := c.client.Get(ctx, key(origin, dest)).Bytes()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache: redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("cache: redis decode: %w", err)
	}
	return entry, true, nil
}

// Set implements TimeCache.
func (c *RedisCache) Set(ctx context.Context, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: redis encode: %w", err)
	}
	if err := c.client.Set(ctx, key(entry.Origin, entry.Destination), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// SetBatch implements TimeCache using a pipeline, the idiomatic go-redis
// way of batching several writes into one round trip.
func (c *RedisCache) SetBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, entry := range entries {
		raw, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("cache: redis encode: %w", err)
		}
		pipe.Set(ctx, key(entry.Origin, entry.Destination), raw, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: redis pipeline exec: %w", err)
	}
	return nil
}

// Clear implements TimeCache by flushing the whole selected Redis DB
// (FLUSHDB); cache keys carry no prefix, so every key in that DB is removed,
// not only cache entries.
func (c *RedisCache) Clear(ctx context.Context) error {
	return c.client.FlushDB(ctx).Err()
}

// Close releases the underlying client's connections.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
