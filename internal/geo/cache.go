package geo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"frota/internal/logging"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores raw lookup payloads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache keeps lookup payloads in Redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedLookup serves states and cities from the cache, falling back to the wrapped Lookup.
// Cache errors are logged and never fail a lookup.
type CachedLookup struct {
	next  Lookup
	cache Cache
	ttl   time.Duration
}

func NewCachedLookup(next Lookup, cache Cache, ttl time.Duration) *CachedLookup {
	return &CachedLookup{next: next, cache: cache, ttl: ttl}
}

func (l *CachedLookup) States(ctx context.Context) ([]Place, error) {
	return l.cached(ctx, "geo:states", func() ([]Place, error) {
		return l.next.States(ctx)
	})
}

func (l *CachedLookup) Cities(ctx context.Context, uf string) ([]Place, error) {
	code, err := NormalizeUF(uf)
	if err != nil {
		return nil, err
	}
	return l.cached(ctx, "geo:cities:"+code, func() ([]Place, error) {
		return l.next.Cities(ctx, code)
	})
}

func (l *CachedLookup) cached(ctx context.Context, key string, load func() ([]Place, error)) ([]Place, error) {
	if raw, ok, err := l.cache.Get(ctx, key); err != nil {
		logging.Warn("geo cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var places []Place
		if err := json.Unmarshal(raw, &places); err == nil {
			return places, nil
		}
	}

	places, err := load()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(places); err == nil {
		if err := l.cache.Set(ctx, key, raw, l.ttl); err != nil {
			logging.Warn("geo cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return places, nil
}
