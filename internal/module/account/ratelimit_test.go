package account

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryInviteLimiter(t *testing.T) {
	ctx := context.Background()
	now := baseTime
	l := NewMemoryInviteLimiter(2, time.Hour, func() time.Time { return now })

	for range 2 {
		ok, err := l.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	now = baseTime.Add(time.Hour + time.Second)
	ok, err = l.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisInviteLimiter(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := baseTime
	l := NewRedisInviteLimiter(client, 2, time.Hour, func() time.Time { return now })

	for range 2 {
		ok, err := l.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, mr.Exists("ratelimit:invites:alice"))
	members, err := mr.ZMembers("ratelimit:invites:alice")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	now = baseTime.Add(time.Hour + time.Second)
	ok, err = l.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisInviteLimiter_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	l := NewRedisInviteLimiter(client, 2, time.Hour, nil)
	_, err := l.Allow(context.Background(), "alice")
	assert.Error(t, err)
}

func TestNewInviteLimiter(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })

	assert.IsType(t, unlimited{}, NewInviteLimiter(client, 0, time.Hour, nil))
	assert.IsType(t, &RedisInviteLimiter{}, NewInviteLimiter(client, 5, time.Hour, nil))
	assert.IsType(t, &MemoryInviteLimiter{}, NewInviteLimiter(nil, 5, time.Hour, nil))
}
