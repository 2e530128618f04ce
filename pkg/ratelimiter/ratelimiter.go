package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"anoa.com/pengaduan/pkg/apperror"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitError is returned when a key is locked out. It matches
// apperror.ErrRateLimitExceeded.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Limiter counts failed attempts per key within a decay window.
type Limiter interface {
	// TooManyAttempts reports whether key is locked out and, if so, how long
	// until the next attempt is allowed.
	TooManyAttempts(ctx context.Context, key string) (bool, time.Duration, error)
	Hit(ctx context.Context, key string) error
	Clear(ctx context.Context, key string) error
}

// New returns a Redis fixed-window limiter, or an in-process token bucket
// when rdb is nil.
func New(rdb *redis.Client, prefix string, maxAttempts int, decay time.Duration) Limiter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if decay <= 0 {
		decay = time.Minute
	}

	if rdb == nil {
		return NewMemoryLimiter(maxAttempts, decay)
	}
	return &redisLimiter{rdb: rdb, prefix: prefix, max: maxAttempts, decay: decay}
}

type redisLimiter struct {
	rdb    *redis.Client
	prefix string
	max    int
	decay  time.Duration
}

func (l *redisLimiter) key(key string) string {
	return fmt.Sprintf("rate_limit:%s:%s", l.prefix, key)
}

func (l *redisLimiter) TooManyAttempts(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.key(key)

	val, err := l.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	attempts, err := strconv.Atoi(val)
	if err != nil {
		return false, 0, fmt.Errorf("corrupt rate limit counter %q: %w", k, err)
	}
	if attempts < l.max {
		return false, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	if ttl < 0 {
		ttl = l.decay
	}
	return true, ttl, nil
}

func (l *redisLimiter) Hit(ctx context.Context, key string) error {
	k := l.key(key)

	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("failed to record attempt in redis: %w", err)
	}

	// The window starts at the first failed attempt.
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.decay).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return nil
}

func (l *redisLimiter) Clear(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, l.key(key)).Err()
}

// memoryLimiter keeps one token bucket per key: maxAttempts tokens that
// refill over decay. Unlike the Redis window, a locked key regains one
// attempt every decay/maxAttempts.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

const memorySweepThreshold = 10000

func NewMemoryLimiter(maxAttempts int, decay time.Duration) Limiter {
	return &memoryLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Every(decay / time.Duration(maxAttempts)),
		burst:   maxAttempts,
	}
}

func (l *memoryLimiter) TooManyAttempts(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.buckets[key]
	if !ok {
		return false, 0, nil
	}

	now := time.Now()
	if lim.TokensAt(now) >= 1 {
		return false, 0, nil
	}

	r := lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return true, delay, nil
}

func (l *memoryLimiter) Hit(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= memorySweepThreshold {
			l.sweep()
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = lim
	}
	lim.Allow()
	return nil
}

func (l *memoryLimiter) Clear(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
	return nil
}

// sweep drops buckets that have fully refilled. Caller holds mu.
func (l *memoryLimiter) sweep() {
	now := time.Now()
	for k, lim := range l.buckets {
		if lim.TokensAt(now) >= float64(l.burst) {
			delete(l.buckets, k)
		}
	}
}
