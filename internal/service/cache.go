package service

import (
	"context"
	"time"
)

// Cache is the read-path cache used for the report list and statistics.
// Two implementations exist: a redis-backed one and an in-process one,
// chosen at startup by configuration. Cache failures are never surfaced
// to callers; a miss is the worst case.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// NopCache disables caching entirely
type NopCache struct{}

func (NopCache) Get(context.Context, string) (string, bool)         { return "", false }
func (NopCache) Set(context.Context, string, string, time.Duration) {}
func (NopCache) Delete(context.Context, ...string)                  {}
