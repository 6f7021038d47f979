// Copyright (c) 2026 Roastlog. All rights reserved.

package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roastlog/roastlog/internal/platform/constants"
)

// Redis is the shared-state [Limiter] driver for multi-instance deployments.
//
// Each client key maps to a Redis counter whose TTL is the fixed window.
// INCR is atomic across instances, so the window-boundary double-allow of
// a purely local table cannot occur here either.
//
// # Degradation
//
// On connectivity errors the driver fails open: the attempt is allowed and
// the incident is logged. Registration availability is preferred over
// strict limiting during a cache outage.
type Redis struct {
	client      *redis.Client
	limit       int
	windowWidth time.Duration
	logger      *slog.Logger
}

// NewRedis creates a Redis-backed fixed-window limiter.
func NewRedis(client *redis.Client, limit int, windowWidth time.Duration, logger *slog.Logger) *Redis {
	return &Redis{
		client:      client,
		limit:       limit,
		windowWidth: windowWidth,
		logger:      logger,
	}
}

// Limit returns the attempts-per-window quota.
func (r *Redis) Limit() int { return r.limit }

// Check implements [Limiter].
func (r *Redis) Check(ctx context.Context, key string) Decision {
	bucket := constants.RedisPrefixRegisterWindow + key

	count, err := r.client.Incr(ctx, bucket).Result()
	if err != nil {
		return r.failOpen(ctx, err)
	}

	// First attempt in this window: arm the TTL that defines the window.
	if count == 1 {
		if err := r.client.PExpire(ctx, bucket, r.windowWidth).Err(); err != nil {
			return r.failOpen(ctx, err)
		}
	}

	ttl, err := r.client.PTTL(ctx, bucket).Result()
	if err != nil || ttl < 0 {
		// A missing TTL means the key predates this window scheme or the
		// expiry was lost; re-arm rather than leave an immortal counter.
		ttl = r.windowWidth
		_ = r.client.PExpire(ctx, bucket, r.windowWidth).Err()
	}
	resetTime := time.Now().Add(ttl)

	if int(count) > r.limit {
		// Roll the speculative increment back so rejected attempts do not
		// advance the counter.
		_ = r.client.Decr(ctx, bucket).Err()
		return Decision{Allowed: false, Remaining: 0, ResetTime: resetTime}
	}

	return Decision{Allowed: true, Remaining: r.limit - int(count), ResetTime: resetTime}
}

// failOpen logs the Redis failure and grants the attempt.
func (r *Redis) failOpen(ctx context.Context, err error) Decision {
	r.logger.WarnContext(ctx, "rate_limit_redis_unavailable", slog.Any("error", err))
	return Decision{
		Allowed:   true,
		Remaining: r.limit - 1,
		ResetTime: time.Now().Add(r.windowWidth),
	}
}
