package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/infra/cache"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "learngate:ratelimit"

// Result describes the window state after a call to Allow.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type Options struct {
	TimeProvider func() time.Time
	UuidProvider func() uuid.UUID
}

// redisLimiter keeps one sorted set per key. Members are request ids scored
// by their unix time, so the set cardinality inside the window is the
// current count.
type redisLimiter struct {
	redis        *redis.Client
	limit        int
	window       time.Duration
	timeProvider func() time.Time
	uuidProvider func() uuid.UUID
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, opts *Options) Limiter {
	l := &redisLimiter{
		redis:        client,
		limit:        limit,
		window:       window,
		timeProvider: time.Now,
		uuidProvider: uuid.New,
	}
	if opts != nil {
		if opts.TimeProvider != nil {
			l.timeProvider = opts.TimeProvider
		}
		if opts.UuidProvider != nil {
			l.uuidProvider = opts.UuidProvider
		}
	}
	return l
}

func Key(scope string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, scope)
}

// Allow records the request and counts the window in one MULTI, so
// concurrent callers never observe the same count. A request over the limit
// takes its own member back out.
func (r *redisLimiter) Allow(ctx context.Context, scope string) (Result, error) {
	key := Key(scope)
	now := r.timeProvider()
	windowStart := now.Add(-r.window).Unix()
	res := Result{Limit: r.limit, Reset: now.Add(r.window)}

	requestID := fmt.Sprintf("%d:%s", now.Unix(), r.uuidProvider().String())
	pipe := r.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.Unix()),
		Member: requestID,
	})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return res, fmt.Errorf("failed to execute rate limit pipeline for %s: %w", key, err)
	}

	current := count.Val()
	if current > int64(r.limit) {
		// a member left behind ages out with the window
		_ = r.redis.ZRem(ctx, key, requestID).Err()
		return res, nil
	}

	res.Allowed = true
	res.Remaining = r.limit - int(current)
	return res, nil
}

// memoryLimiter is a fixed window counter for single instance deployments
// without redis.
type memoryLimiter struct {
	counters *cache.TTLMap
	limit    int
}

func NewMemoryLimiter(limit int, window time.Duration) Limiter {
	return &memoryLimiter{
		counters: cache.NewTTLMap(window),
		limit:    limit,
	}
}

func (m *memoryLimiter) Allow(_ context.Context, scope string) (Result, error) {
	n, reset := m.counters.Increment(scope)
	if m.counters.Len() > 10000 {
		m.counters.Sweep()
	}
	res := Result{Limit: m.limit, Reset: reset}
	if n > m.limit {
		return res, nil
	}
	res.Allowed = true
	res.Remaining = m.limit - n
	return res, nil
}
