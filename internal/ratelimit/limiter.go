// Package ratelimit applies a Redis-backed token bucket to inbound
// guest messages. The bucket state lives in Redis so several bot
// replicas behind the same token share one budget per guest.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ermekov/club-table-reservation/internal/config"
)

// limiterScript refills and consumes the bucket atomically server-side.
var limiterScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return allowed
`)

// Limiter gates messages per guest id. A nil Redis client disables
// limiting entirely; with Redis down mid-flight the limiter fails
// open, since dropping guest messages is worse than skipping the cap.
type Limiter struct {
	rdb *redis.Client
	cfg config.RateLimitConfig
}

// New builds a limiter. rdb may be nil.
func New(cfg config.RateLimitConfig, rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb, cfg: cfg}
}

// Allow reports whether the guest may send another message right now.
func (l *Limiter) Allow(ctx context.Context, guestID int64) bool {
	if !l.cfg.Enabled || l.rdb == nil {
		return true
	}
	key := fmt.Sprintf("%s:guest:%d", l.cfg.Prefix, guestID)
	res, err := limiterScript.Run(ctx, l.rdb, []string{key},
		time.Now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		int(l.cfg.TTL.Seconds()),
	).Int()
	if err != nil {
		return true
	}
	return res == 1
}
