// Package ratelimit bounds the request rate per client address using
// fixed-window counters in Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/identity-server/internal/config"
)

var (
	ErrRateLimited = errors.New("rate limited")
	ErrUnavailable = errors.New("rate limiter unavailable")
)

const keyPrefix = "identity:rl:"

// Limiter allows at most requests calls per key within each window.
type Limiter struct {
	client   redis.Cmdable
	requests int64
	window   time.Duration
}

func NewLimiter(client redis.Cmdable, requests int64, window time.Duration) *Limiter {
	return &Limiter{client: client, requests: requests, window: window}
}

// NewRedisClient connects to the Redis instance described by cfg.
func NewRedisClient(cfg config.RateLimit) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Allow counts a call for key. When the limit is exceeded it returns
// ErrRateLimited and the time until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (time.Duration, error) {
	k := keyPrefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	if count <= l.requests {
		return 0, nil
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil || ttl <= 0 {
		ttl = l.window
	}
	return ttl, ErrRateLimited
}
