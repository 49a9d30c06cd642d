package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"frota/internal/logging"
	"frota/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errRateLimited = errors.New("rate limit exceeded")

type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	GetCount(ctx context.Context, key string) (int, error)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) GetCount(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

// MemoryStore is used when Redis is not reachable. Counts are per process.
type MemoryStore struct {
	mu    sync.Mutex
	store map[string]*rateLimitEntry
	now   func() time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{store: make(map[string]*rateLimitEntry), now: time.Now}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, entry := range s.store {
		if now.After(entry.expiresAt) {
			delete(s.store, k)
		}
	}

	entry, ok := s.store[key]
	if !ok {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		s.store[key] = entry
	}
	entry.count++
	return entry.count, nil
}

func (s *MemoryStore) GetCount(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.store[key]
	if !ok || s.now().After(entry.expiresAt) {
		return 0, nil
	}
	return entry.count, nil
}

type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

type RateLimiter struct {
	store  RateLimitStore
	config RateLimitConfig
}

func NewRateLimiter(store RateLimitStore, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{store: store, config: config}
}

// Limit caps requests per client IP for the routes it wraps, under the given scope.
func (r *RateLimiter) Limit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.config.Enabled || r.config.Limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:ip:%s", scope, c.ClientIP())
		err := r.check(c.Request.Context(), key)
		if errors.Is(err, errRateLimited) {
			logging.Warn("rate limited", zap.String("scope", scope), zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Error(http.StatusTooManyRequests, "Too many requests, try again later"))
			return
		}
		if err != nil {
			// Fail open: a broken counter store must not lock operators out.
			logging.Error("rate limit store failed", zap.String("scope", scope), zap.Error(err))
		}
		c.Next()
	}
}

func (r *RateLimiter) check(ctx context.Context, key string) error {
	count, err := r.store.GetCount(ctx, key)
	if err != nil {
		return err
	}
	if count >= r.config.Limit {
		return errRateLimited
	}
	_, err = r.store.Increment(ctx, key, r.config.Window)
	return err
}
