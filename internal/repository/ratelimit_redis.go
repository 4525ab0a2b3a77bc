package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyPrefix prefixes every counter key in Redis
const RateLimitKeyPrefix = "portfolio:ratelimit:"

// RedisRateLimitStore keeps fixed-window counters in Redis so that every
// instance shares them. Windows expire through key TTLs.
type RedisRateLimitStore struct {
	client *redis.Client
}

// NewRedisRateLimitStore creates a store on an open client
func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

// Hit increments the counter of key, starting the window on the first hit
func (s *RedisRateLimitStore) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (models.RateLimitEntry, error) {
	if s.client == nil {
		return models.RateLimitEntry{}, fmt.Errorf("redis client is nil")
	}
	if key == "" || window <= 0 {
		return models.RateLimitEntry{}, fmt.Errorf("invalid rate window payload")
	}
	redisKey := RateLimitKeyPrefix + key

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return models.RateLimitEntry{}, fmt.Errorf("increment rate key: %w", err)
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return models.RateLimitEntry{}, fmt.Errorf("set rate key ttl: %w", err)
		}
	}

	ttl, err := s.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return models.RateLimitEntry{}, fmt.Errorf("read rate key ttl: %w", err)
	}
	if ttl < 0 {
		// key lost its ttl, restart the window
		if err := s.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return models.RateLimitEntry{}, fmt.Errorf("set rate key ttl: %w", err)
		}
		ttl = window
	}

	return models.RateLimitEntry{Count: int(count), ResetTime: now.Add(ttl)}, nil
}

// Sweep is a no-op; Redis expires windows on its own
func (s *RedisRateLimitStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
