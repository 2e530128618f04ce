package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/pengaduan/pkg/apperror"
	"anoa.com/pengaduan/pkg/ratelimiter"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, max int, decay time.Duration) (ratelimiter.Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return ratelimiter.New(rdb, "login", max, decay), mr
}

func TestRedisLimiter(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newRedisLimiter(t, 3, time.Minute)

	locked, _, err := limiter.TooManyAttempts(ctx, "u|1.2.3.4")
	require.NoError(t, err)
	assert.False(t, locked)

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Hit(ctx, "u|1.2.3.4"))
	}

	locked, retryAfter, err := limiter.TooManyAttempts(ctx, "u|1.2.3.4")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)

	// other keys are unaffected
	locked, _, err = limiter.TooManyAttempts(ctx, "u|5.6.7.8")
	require.NoError(t, err)
	assert.False(t, locked)

	mr.FastForward(time.Minute + time.Second)
	locked, _, err = limiter.TooManyAttempts(ctx, "u|1.2.3.4")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestRedisLimiterClear(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newRedisLimiter(t, 1, time.Minute)

	require.NoError(t, limiter.Hit(ctx, "k"))
	assert.True(t, mr.Exists("rate_limit:login:k"))

	require.NoError(t, limiter.Clear(ctx, "k"))
	assert.False(t, mr.Exists("rate_limit:login:k"))

	locked, _, err := limiter.TooManyAttempts(ctx, "k")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestRedisLimiterUnavailable(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newRedisLimiter(t, 1, time.Minute)
	mr.Close()

	_, _, err := limiter.TooManyAttempts(ctx, "k")
	assert.Error(t, err)
}

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()
	limiter := ratelimiter.New(nil, "login", 2, time.Minute)

	locked, _, err := limiter.TooManyAttempts(ctx, "k")
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, limiter.Hit(ctx, "k"))
	locked, _, _ = limiter.TooManyAttempts(ctx, "k")
	assert.False(t, locked)

	require.NoError(t, limiter.Hit(ctx, "k"))
	locked, retryAfter, err := limiter.TooManyAttempts(ctx, "k")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Greater(t, retryAfter, time.Duration(0))

	require.NoError(t, limiter.Clear(ctx, "k"))
	locked, _, _ = limiter.TooManyAttempts(ctx, "k")
	assert.False(t, locked)
}

func TestMemoryLimiterRefillsOneAttempt(t *testing.T) {
	ctx := context.Background()
	limiter := ratelimiter.New(nil, "login", 2, 200*time.Millisecond)

	require.NoError(t, limiter.Hit(ctx, "k"))
	require.NoError(t, limiter.Hit(ctx, "k"))

	locked, retryAfter, err := limiter.TooManyAttempts(ctx, "k")
	require.NoError(t, err)
	require.True(t, locked)
	assert.LessOrEqual(t, retryAfter, 100*time.Millisecond)

	time.Sleep(120 * time.Millisecond)

	locked, _, _ = limiter.TooManyAttempts(ctx, "k")
	assert.False(t, locked)

	require.NoError(t, limiter.Hit(ctx, "k"))
	locked, _, _ = limiter.TooManyAttempts(ctx, "k")
	assert.True(t, locked)
}

func TestRateLimitError(t *testing.T) {
	t.Parallel()

	err := &ratelimiter.RateLimitError{Message: "tunggu", RetryAfter: time.Second}
	assert.Equal(t, "tunggu", err.Error())
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
}
