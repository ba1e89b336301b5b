package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter is a fixed-window request counter kept in Redis.
type Limiter struct {
	client redis.Cmdable
	prefix string
	logger *zap.Logger
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// NewLimiter builds a limiter. A nil client allows every request.
func NewLimiter(client redis.Cmdable, prefix string, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{client: client, prefix: prefix, logger: logger}
}

// Allow counts one hit for key in the current window. Redis failures fail open.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if l == nil || l.client == nil || limit <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: limit}, nil
	}

	fullKey := l.prefix + key
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		ttl = pipe.PTTL(ctx, fullKey)
		return nil
	})
	if err != nil {
		l.logger.Warn("rate limiter unavailable; allowing request", zap.String("key", fullKey), zap.Error(err))
		return Decision{Allowed: true, Remaining: limit}, err
	}

	count := int(incr.Val())
	retryAfter := ttl.Val()
	if retryAfter < 0 {
		// first hit of the window, or a key left without expiry
		if err := l.client.PExpire(ctx, fullKey, window).Err(); err != nil {
			l.logger.Warn("rate limiter expire failed", zap.String("key", fullKey), zap.Error(err))
		}
		retryAfter = window
	}
	if count > limit {
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}
	return Decision{Allowed: true, Remaining: limit - count}, nil
}
