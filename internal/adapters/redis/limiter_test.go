package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	redisad "puntacana_tours/internal/adapters/redis"
)

func TestLimiter_WindowAndReset(t *testing.T) {
	mr := miniredis.RunT(t)
	l := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok, "call %d should pass", i+1)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, ok, "third call inside the window must be denied")

	// other clients have their own counter
	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, mr.TTL("review-limit:10.0.0.1") > 0, "window expiry must be set")
	mr.FastForward(time.Minute + time.Second)

	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, ok, "counter resets after the window")
}

func TestLimiter_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	l := redisad.New(mr.Addr(), "", 0, 1, time.Minute)
	mr.Close()

	ok, err := l.Allow(context.Background(), "k")
	require.Error(t, err)
	require.False(t, ok)
}
