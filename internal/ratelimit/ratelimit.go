package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one admission check. It is derived fresh on
// every call and never cached across requests.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     int64 // epoch seconds at which the trailing window has fully drained
}

// Limiter decides whether an identity may make one more request in the
// current window. Every call consumes one unit of budget, admitted or not.
type Limiter interface {
	Allow(ctx context.Context, identity string) (Decision, error)
}

// RedisLimiter implements a sliding window over a redis sorted set per
// identity: the decision at time T reflects calls in the trailing window
// ending at T, so a client cannot double its quota by straddling a
// fixed-window boundary.
type RedisLimiter struct {
	client *redis.Client
	quota  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, quota int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		quota:  quota,
		window: window,
	}
}

// Allow records the call against the identity's ledger and returns the
// admission decision. A single redis round trip, no retries: if the store
// is unreachable the error propagates and the caller fails closed.
func (l *RedisLimiter) Allow(ctx context.Context, identity string) (Decision, error) {
	now := time.Now()
	key := windowKey(identity)
	cutoff := strconv.FormatInt(now.Add(-l.window).UnixNano(), 10)

	// One atomic transaction: prune expired entries, record this call,
	// read the trailing count, refresh the key's TTL.
	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", cutoff)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	})
	countCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	return decide(countCmd.Val(), l.quota, l.window, now), nil
}

func windowKey(identity string) string {
	return "ratelimit:chat:" + identity
}

// decide maps the trailing-window count (including the current call) to an
// admission decision.
func decide(count int64, quota int, window time.Duration, now time.Time) Decision {
	remaining := int64(quota) - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(quota),
		Limit:     quota,
		Remaining: int(remaining),
		Reset:     now.Add(window).Unix(),
	}
}
