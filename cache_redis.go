package contacts

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisCache wraps a go-redis client behind the Cache interface
type RedisCache struct {
	rdb *goredis.Client
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates a cache on an existing client
func NewRedisCache(rdb *goredis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		// absent key is a plain miss, not an error
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

// SelectCache probes the redis URL once at process start and falls back
// to the in-process cache when the probe fails. Probe errors are logged
// and swallowed; callers always get a working Cache.
func SelectCache(ctx context.Context, redisURL string, logger Logger) Cache {
	if logger == nil {
		logger = defLogger{}
	}

	if redisURL == "" {
		logger.Info("no cache URL configured, using in-process cache")
		return NewMemoryCache()
	}

	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("cache URL parse failed, using in-process cache", "error", err)
		return NewMemoryCache()
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("cache probe failed, using in-process cache", "addr", opts.Addr, "error", err)
		return NewMemoryCache()
	}

	logger.Info("cache backend connected", "addr", opts.Addr)
	return NewRedisCache(rdb)
}
