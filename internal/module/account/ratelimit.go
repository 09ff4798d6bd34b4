package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InviteLimiter throttles invite issuance per admin.
type InviteLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// slidingWindowScript drops entries older than the window, then admits
// the request if fewer than limit remain.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	if redis.call('ZCARD', key) >= limit then
		return 0
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, ttl)
	return 1
`)

// RedisInviteLimiter keeps a sliding window per key in Redis.
type RedisInviteLimiter struct {
	redis  redis.UniversalClient
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisInviteLimiter creates a Redis-backed limiter.
func NewRedisInviteLimiter(client redis.UniversalClient, limit int, window time.Duration, now func() time.Time) *RedisInviteLimiter {
	if now == nil {
		now = time.Now
	}
	return &RedisInviteLimiter{redis: client, limit: limit, window: window, now: now}
}

// Allow implements InviteLimiter.
func (l *RedisInviteLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	allowed, err := slidingWindowScript.Run(ctx, l.redis,
		[]string{"ratelimit:invites:" + key},
		now.Add(-l.window).UnixMilli(),
		now.UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
		fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewString()),
	).Int()
	if err != nil {
		return false, fmt.Errorf("invite rate limit check: %w", err)
	}
	return allowed == 1, nil
}

// MemoryInviteLimiter is the single-process sliding window limiter.
type MemoryInviteLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewMemoryInviteLimiter creates an in-memory limiter.
func NewMemoryInviteLimiter(limit int, window time.Duration, now func() time.Time) *MemoryInviteLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryInviteLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    now,
	}
}

// Allow implements InviteLimiter.
func (l *MemoryInviteLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	hits := l.hits[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.hits[key] = kept
		return false, nil
	}
	l.hits[key] = append(kept, now)
	return true, nil
}

// unlimited admits everything.
type unlimited struct{}

func (unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

// NewInviteLimiter picks the limiter for the given settings: none when
// limit is 0, Redis when a client is available, memory otherwise.
func NewInviteLimiter(client redis.UniversalClient, limit int, window time.Duration, now func() time.Time) InviteLimiter {
	switch {
	case limit <= 0:
		return unlimited{}
	case client != nil:
		return NewRedisInviteLimiter(client, limit, window, now)
	default:
		return NewMemoryInviteLimiter(limit, window, now)
	}
}
