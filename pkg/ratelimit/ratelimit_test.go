package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T) (*RedisRateLimiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisRateLimiter(rdb), mr
}

func TestPerSecond(t *testing.T) {
	assert.Equal(t, Limit{Rate: 5, Period: time.Second, Burst: 10}, PerSecond(5, 10))
	// burst 不低于 rate
	assert.Equal(t, Limit{Rate: 5, Period: time.Second, Burst: 5}, PerSecond(5, 2))
}

func TestRedisRateLimiter_BurstThenReject(t *testing.T) {
	limiter, _ := newLimiter(t)
	ctx := context.Background()
	limit := PerSecond(1, 2)

	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, "ratelimit:/predict/:symbol:192.0.2.1", limit)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := limiter.Allow(ctx, "ratelimit:/predict/:symbol:192.0.2.1", limit)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	// 其他路由的配额互不影响
	res, err = limiter.Allow(ctx, "ratelimit:/report/:symbol:192.0.2.1", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisRateLimiter_InvalidLimit(t *testing.T) {
	limiter, _ := newLimiter(t)

	_, err := limiter.Allow(context.Background(), "k", Limit{Rate: 0, Period: time.Second, Burst: 1})
	assert.Error(t, err)
}

func TestRedisRateLimiter_RedisDown(t *testing.T) {
	limiter, mr := newLimiter(t)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "k", PerSecond(1, 1))
	assert.Error(t, err)
}
