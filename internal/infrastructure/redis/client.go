package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/condo-care/backend/internal/reliability/circuitbreaker"
)

// Cache is the redis-backed read cache. A circuit breaker guards every
// call: when redis fails repeatedly the cache degrades to permanent
// misses instead of adding a failing round trip to each request.
type Cache struct {
	rdb     *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewCache connects to redis and verifies connectivity
func NewCache(url string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	breaker := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("redis cache circuit state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return &Cache{rdb: rdb, breaker: breaker, logger: logger}, nil
}

// Get retrieves a cached value; any error counts as a miss
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if !c.breaker.AllowRequest() {
		return "", false
	}

	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.breaker.RecordSuccess()
			return "", false
		}
		c.breaker.RecordFailure()
		c.logger.Debug("cache get failed", slog.String("key", key), slog.String("error", err.Error()))
		return "", false
	}

	c.breaker.RecordSuccess()
	return val, true
}

// Set stores a value with a TTL; failures are logged and dropped
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if !c.breaker.AllowRequest() {
		return
	}

	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.breaker.RecordFailure()
		c.logger.Debug("cache set failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	c.breaker.RecordSuccess()
}

// Delete removes keys; failures are logged and dropped
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 || !c.breaker.AllowRequest() {
		return
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.breaker.RecordFailure()
		c.logger.Debug("cache delete failed", slog.String("error", err.Error()))
		return
	}
	c.breaker.RecordSuccess()
}

// Ping checks connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the redis connection
func (c *Cache) Close() error {
	return c.rdb.Close()
}
