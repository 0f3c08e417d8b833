// Package ratelimit implements the sliding-window admission-control limiter
// used at ingress. A second implementation (token-bucket) is deliberately
// not provided here: the source exposes both under one module but only
// wires the sliding-window variant into ingress, so that is the one kept.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/archadvisor/archadvisor/core"
)

// Limiter is a sliding-window counter keyed by client fingerprint.
//
// allow prunes timestamps older than now-window, admits if the remaining
// slots are greater than zero, and records a new timestamp on admit. The
// window is tracked per key as a Redis sorted set: the score and the member
// are both the request's unix-nanosecond timestamp, which gives eviction by
// score range and an exact count in one data structure.
type Limiter struct {
	redis       *core.RedisClient
	logger      core.Logger
	maxRequests int
	window      time.Duration
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// New builds a Limiter backed by the given Redis client (expected to be
// isolated to core.RedisDBRateLimiting).
func New(redisClient *core.RedisClient, logger core.Logger, maxRequests int, window time.Duration) *Limiter {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Limiter{
		redis:       redisClient,
		logger:      logger,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow reports whether a request from key is admitted under the sliding
// window, and records the admission if so. On any backing-store error the
// limiter fails closed: the request is denied.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)

	zkey := zsetKey(key)

	if err := l.redis.ZRemRangeByScore(ctx, zkey, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10)); err != nil {
		l.logger.Error("rate limiter prune failed", map[string]interface{}{"key": key, "error": err.Error()})
		return Decision{Allowed: false}, fmt.Errorf("ratelimit.Allow: prune: %w", err)
	}

	count, err := l.redis.ZCard(ctx, zkey)
	if err != nil {
		l.logger.Error("rate limiter count failed", map[string]interface{}{"key": key, "error": err.Error()})
		return Decision{Allowed: false}, fmt.Errorf("ratelimit.Allow: count: %w", err)
	}

	if int(count) >= l.maxRequests {
		retryAfter, _ := l.resetTime(ctx, zkey)
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	if err := l.redis.ZAdd(ctx, zkey, &redis.Z{Score: float64(now.UnixNano()), Member: member}); err != nil {
		l.logger.Error("rate limiter record failed", map[string]interface{}{"key": key, "error": err.Error()})
		return Decision{Allowed: false}, fmt.Errorf("ratelimit.Allow: record: %w", err)
	}
	if err := l.redis.Expire(ctx, zkey, l.window); err != nil {
		l.logger.Warn("rate limiter expire set failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	remaining := l.maxRequests - int(count) - 1
	return Decision{Allowed: true, Remaining: remaining}, nil
}

// Remaining reports the number of admissions left for key in the current
// window, without consuming one.
func (l *Limiter) Remaining(ctx context.Context, key string) (int, error) {
	zkey := zsetKey(key)
	windowStart := time.Now().Add(-l.window)

	if err := l.redis.ZRemRangeByScore(ctx, zkey, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10)); err != nil {
		return 0, fmt.Errorf("ratelimit.Remaining: prune: %w", err)
	}
	count, err := l.redis.ZCard(ctx, zkey)
	if err != nil {
		return 0, fmt.Errorf("ratelimit.Remaining: count: %w", err)
	}
	remaining := l.maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ResetTime reports how long until the oldest in-window timestamp expires.
func (l *Limiter) ResetTime(ctx context.Context, key string) (time.Duration, error) {
	return l.resetTime(ctx, zsetKey(key))
}

func (l *Limiter) resetTime(ctx context.Context, zkey string) (time.Duration, error) {
	results, err := l.redis.ZRangeWithScores(ctx, zkey, 0, 0)
	if err != nil {
		return l.window, fmt.Errorf("ratelimit.resetTime: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	oldest := time.Unix(0, int64(results[0].Score))
	until := oldest.Add(l.window).Sub(time.Now())
	if until < 0 {
		until = 0
	}
	return until, nil
}

func zsetKey(key string) string {
	return "window:" + key
}
