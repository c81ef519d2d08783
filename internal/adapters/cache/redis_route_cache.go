package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-planning-service/internal/platform/obs"
	"route-planning-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "route-planner:resolution:"

// RedisRouteCache shares resolutions between service instances.
// Values are stored as JSON under a common key prefix with a TTL.
type RedisRouteCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisRouteCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisRouteCache {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisRouteCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRouteCache) Get(ctx context.Context, key string) (_ ports.CachedResolution, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.redis.Get")(&err)

	if r.client == nil {
		return ports.CachedResolution{}, false, errors.New("redis route cache: client is nil")
	}

	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.CachedResolution{}, false, nil
	}
	if err != nil {
		return ports.CachedResolution{}, false, fmt.Errorf("get route cache %q: %w", key, err)
	}

	var out ports.CachedResolution
	if err := json.Unmarshal(raw, &out); err != nil {
		return ports.CachedResolution{}, false, fmt.Errorf("decode route cache %q: %w", key, err)
	}
	return out, true, nil
}

func (r *RedisRouteCache) Put(ctx context.Context, key string, value ports.CachedResolution) error {
	if r.client == nil {
		return errors.New("redis route cache: client is nil")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode route cache %q: %w", key, err)
	}

	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("put route cache %q: %w", key, err)
	}
	return nil
}

// Clear deletes every key under the cache prefix.
func (r *RedisRouteCache) Clear(ctx context.Context) error {
	if r.client == nil {
		return errors.New("redis route cache: client is nil")
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 200).Result()
		if err != nil {
			return fmt.Errorf("clear route cache: scan: %w", err)
		}

		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("clear route cache: delete %d keys: %w", len(keys), err)
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}
