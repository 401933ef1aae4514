package redisad

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"puntacana_tours/internal/adapters/observability"
)

// Limiter is a fixed-window counter per key: at most limit calls to Allow
// succeed within window.
type Limiter struct {
	c      *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

func New(addr, pass string, db, limit int, window time.Duration) *Limiter {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), limit, window)
}

func NewWithClient(c *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{c: c, limit: int64(limit), window: window, prefix: "review-limit:"}
}

func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	n, err := l.c.Incr(ctx, k).Result()
	if err != nil {
		observability.ObserveLimiter("error")
		return false, err
	}
	// first hit in this window starts the clock
	if n == 1 {
		if err := l.c.Expire(ctx, k, l.window).Err(); err != nil {
			observability.ObserveLimiter("error")
			return false, err
		}
	}
	if n > l.limit {
		observability.ObserveLimiter("deny")
		return false, nil
	}
	observability.ObserveLimiter("allow")
	return true, nil
}

func (l *Limiter) Close() error { return l.c.Close() }
