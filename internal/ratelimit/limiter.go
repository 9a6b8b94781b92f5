package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Limiter records one event for key and reports whether it fits within limit
// events per window.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration, limit int) (allowed bool, remaining int, reset time.Time, err error)
}

// RedisWindow implements a sliding window limiter backed by Redis sorted sets.
// It is shared by every replica pointing at the same Redis.
type RedisWindow struct {
	Client redis.Cmdable
	Prefix string
}

// Allow implements Limiter.
func (l RedisWindow) Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	if l.Client == nil || limit <= 0 || window <= 0 {
		return true, limit, time.Now().Add(window), nil
	}

	now := time.Now()
	until := now.Add(window)
	cutoff := float64(now.Add(-window).UnixNano())

	redisKey := l.Prefix + key
	member := fmt.Sprintf("%s:%s", key, uuid.NewString())

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("%f", cutoff))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, until, fmt.Errorf("ratelimit: redis window: %w", err)
	}

	current := int(countCmd.Val())
	return current <= limit, max(0, limit-current), until, nil
}

// Memory is a per-process fixed window limiter used when Redis is not
// configured.
type Memory struct {
	store limiter.Store
}

// NewMemory returns an in-memory limiter.
func NewMemory() *Memory {
	return &Memory{store: memory.NewStore()}
}

// Allow implements Limiter.
func (m *Memory) Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	if m == nil || m.store == nil || limit <= 0 || window <= 0 {
		return true, limit, time.Now().Add(window), nil
	}
	rate := limiter.Rate{Period: window, Limit: int64(limit)}
	// the store keeps one counter per key, so keys are scoped by rate
	scoped := fmt.Sprintf("%d:%d:%s", window.Milliseconds(), limit, key)
	lctx, err := m.store.Get(ctx, scoped, rate)
	if err != nil {
		return false, 0, time.Now().Add(window), fmt.Errorf("ratelimit: memory store: %w", err)
	}
	return !lctx.Reached, int(lctx.Remaining), time.Unix(lctx.Reset, 0), nil
}
