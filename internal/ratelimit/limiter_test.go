package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, limit int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLimiter(client, zap.NewNop(), limit), mr
}

func TestAllowUnderLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAllowCountsPerClient(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, ok)

	// A different client has its own window.
	ok, err = limiter.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAllowFailsOpenWhenRedisIsDown(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)
	ctx := context.Background()

	mr.Close()

	ok, err := limiter.Allow(ctx, "1.2.3.4")
	require.Error(t, err)
	require.True(t, ok)
}

func TestAllowDisabledLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 0)

	ok, err := limiter.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	require.True(t, ok)
}
