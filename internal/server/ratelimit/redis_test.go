package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "rl"), mr
}

func TestRedisStore_FixedWindow(t *testing.T) {
	s, mr := newRedisStore(t)
	rule := EndpointConfig{Limit: 2, Window: time.Minute}
	ctx := context.Background()

	info, err := s.Take(ctx, "c:POST:/auth/login", rule)
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)
	assert.True(t, mr.Exists("rl:c:POST:/auth/login"))
	assert.Equal(t, time.Minute, mr.TTL("rl:c:POST:/auth/login"))

	info, err = s.Take(ctx, "c:POST:/auth/login", rule)
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)

	info, err = s.Take(ctx, "c:POST:/auth/login", rule)
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.Equal(t, time.Minute, info.RetryAfter)

	mr.FastForward(time.Minute)
	info, err = s.Take(ctx, "c:POST:/auth/login", rule)
	require.NoError(t, err)
	assert.True(t, info.Allowed, "a new window starts once the key expires")
}

func TestRedisStore_SharedAcrossLimiters(t *testing.T) {
	s, _ := newRedisStore(t)
	cfg := testConfig()
	a := NewLimiter(cfg, s, nil)
	b := NewLimiter(cfg, s, nil)
	ctx := context.Background()

	ok, _ := a.Allow(ctx, "c", "/auth/login", "POST")
	require.True(t, ok)
	ok, _ = b.Allow(ctx, "c", "/auth/login", "POST")
	require.True(t, ok)

	ok, _ = a.Allow(ctx, "c", "/auth/login", "POST")
	assert.False(t, ok, "replicas share the window")
}

func TestRedisStore_FailsOpenWhenDown(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, err := s.Take(context.Background(), "k", EndpointConfig{Limit: 1, Window: time.Second})
	require.Error(t, err)

	l := NewLimiter(testConfig(), s, nil)
	ok, _ := l.Allow(context.Background(), "c", "/auth/login", "POST")
	assert.True(t, ok)
}
