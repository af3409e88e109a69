package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache stores values of type T by key. Misses and backend failures look the same to callers.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (*T, bool)
	Set(ctx context.Context, key string, value *T)
	Delete(ctx context.Context, key string)
}

// ViewCache is a JSON-backed Redis cache bound to one value type.
// A zero TTL stores keys without expiry.
type ViewCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewViewCache[T any](client *redis.Client, prefix string, ttl time.Duration, logger *zerolog.Logger) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache read failed")
		}
		return nil, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache decode failed")
		return nil, false
	}

	return &v, true
}

// Set stores value under key. Write errors are logged, not returned.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache encode failed")
		return
	}

	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache write failed")
	}
}

func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key(key)).Msg("cache delete failed")
	}
}

func (c *ViewCache[T]) key(key string) string {
	return c.prefix + ":" + key
}

// Nop never stores anything.
type Nop[T any] struct{}

func (Nop[T]) Get(context.Context, string) (*T, bool) { return nil, false }
func (Nop[T]) Set(context.Context, string, *T)        {}
func (Nop[T]) Delete(context.Context, string)         {}
