package billingcycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on a Redis client, so cached boundaries survive
// process restarts and are shared across instances. Values are stored as
// RFC 3339 timestamps with nanosecond precision.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache creates a Redis-backed cycle cache. The optional prefix is
// prepended to every key, useful when the Redis database is shared.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	if client == nil {
		panic("billingcycle: redis client is required")
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, errors.Join(ErrCacheUnavailable, err)
	}

	value, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// A corrupt entry is dropped and treated as a miss.
		_ = c.client.Del(ctx, c.prefix+key).Err()
		return time.Time{}, false, fmt.Errorf("corrupt cycle cache entry %q: %w", key, err)
	}

	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value time.Time, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0 // redis: zero expiration means the key never expires
	}
	if err := c.client.Set(ctx, c.prefix+key, value.UTC().Format(time.RFC3339Nano), ttl).Err(); err != nil {
		return errors.Join(ErrCacheUnavailable, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return errors.Join(ErrCacheUnavailable, err)
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
