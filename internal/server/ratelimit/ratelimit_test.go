package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/hiring-pipeline/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClockedStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(0)
	s.now = clock.Now
	return s, clock
}

func TestTokenBucket_Take(t *testing.T) {
	start := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	bucket := newTokenBucket(10, 1.0, start)

	for i := 0; i < 10; i++ {
		allowed, _, _ := bucket.take(start)
		assert.True(t, allowed, "request %d", i+1)
	}
	allowed, remaining, full := bucket.take(start)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, start.Add(10*time.Second), full)

	allowed, _, _ = bucket.take(start.Add(1100 * time.Millisecond))
	assert.True(t, allowed, "one token refills after a second")
	allowed, _, _ = bucket.take(start.Add(1100 * time.Millisecond))
	assert.False(t, allowed)
}

func TestTokenBucket_RefillCapsAtCapacity(t *testing.T) {
	start := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	bucket := newTokenBucket(3, 1.0, start)
	bucket.take(start)

	_, remaining, _ := bucket.take(start.Add(time.Hour))
	assert.Equal(t, 2, remaining)
}

func TestMemoryStore_Take(t *testing.T) {
	s, clock := newClockedStore()
	rule := EndpointConfig{Limit: 60, Window: time.Minute, Burst: 2}
	ctx := context.Background()

	info, err := s.Take(ctx, "k", rule)
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 60, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	_, _ = s.Take(ctx, "k", rule)
	info, _ = s.Take(ctx, "k", rule)
	assert.False(t, info.Allowed)
	assert.Equal(t, time.Second, info.RetryAfter)

	other, _ := s.Take(ctx, "other", rule)
	assert.True(t, other.Allowed, "keys are independent")

	clock.Advance(time.Second)
	info, _ = s.Take(ctx, "k", rule)
	assert.True(t, info.Allowed)
}

func TestMemoryStore_EvictIdle(t *testing.T) {
	s, clock := newClockedStore()
	rule := EndpointConfig{Limit: 10, Window: time.Minute}
	ctx := context.Background()

	_, _ = s.Take(ctx, "stale", rule)
	clock.Advance(2 * time.Hour)
	_, _ = s.Take(ctx, "fresh", rule)
	require.Equal(t, 2, s.size())

	s.evictIdle()
	assert.Equal(t, 1, s.size())
}

func TestMemoryStore_CloseStopsCleanup(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewMemoryStore(time.Millisecond)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  5,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.66": true},
		EndpointConfigs: []EndpointConfig{
			{Path: "/auth/login", Method: "POST", Limit: 2, Window: time.Minute, Burst: 2},
			{Path: "/ats/", Method: "PATCH", Limit: 3, Window: time.Minute, Burst: 3},
		},
	}
}

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(testConfig(), nil, nil)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow(ctx, "client", "/ats/jobs", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 5, info.Limit)
	}
	allowed, info := l.Allow(ctx, "client", "/ats/jobs", "GET")
	assert.False(t, allowed)
	assert.Positive(t, info.RetryAfter)

	allowed, _ = l.Allow(ctx, "another", "/ats/jobs", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	l := NewLimiter(testConfig(), nil, nil)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow(ctx, "10.0.0.1", "/auth/login", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow(ctx, "10.0.0.66", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(FromConfig(config.RateLimitConfig{Enabled: false}), nil, nil)
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow(context.Background(), "client", "/auth/login", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	l := NewLimiter(testConfig(), nil, nil)
	defer l.Stop()
	ctx := context.Background()

	l.Allow(ctx, "c", "/auth/login", "POST")
	l.Allow(ctx, "c", "/auth/login", "POST")
	allowed, info := l.Allow(ctx, "c", "/auth/login", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 2, info.Limit)

	// prefix rules share a counter across paths
	for i := 0; i < 3; i++ {
		path := fmt.Sprintf("/ats/interviews/%d", i)
		allowed, _ := l.Allow(ctx, "c", path, "PATCH")
		require.True(t, allowed)
	}
	allowed, _ = l.Allow(ctx, "c", "/ats/tasks/9", "PATCH")
	assert.False(t, allowed)

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow(ctx, "c", "/health", "GET")
		require.True(t, allowed, "health is unlimited")
	}
}

type brokenStore struct{}

func (brokenStore) Take(context.Context, string, EndpointConfig) (Info, error) {
	return Info{}, fmt.Errorf("connection refused")
}

func (brokenStore) Close() error { return nil }

func TestLimiter_FailsOpen(t *testing.T) {
	l := NewLimiter(testConfig(), brokenStore{}, nil)
	allowed, info := l.Allow(context.Background(), "c", "/auth/login", "POST")
	assert.True(t, allowed)
	assert.True(t, info.Allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 50
	l := NewLimiter(cfg, nil, nil)
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := l.Allow(context.Background(), "c", "/ats/jobs", "GET")
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil, nil, nil)
	defer l.Stop()
	assert.True(t, l.config.Enabled)
	assert.Equal(t, 1000, l.config.DefaultLimit)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.RateLimitConfig{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Whitelist:     []string{" 127.0.0.1 ", ""},
		Blacklist:     []string{"10.1.1.1"},
	})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"127.0.0.1": true}, cfg.Whitelist)
	assert.True(t, cfg.Blacklist["10.1.1.1"])
	assert.NotEmpty(t, cfg.EndpointConfigs)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name     string
		path     string
		method   string
		wantPath string
		wantNil  bool
	}{
		{name: "exact", path: "/auth/login", method: "POST", wantPath: "/auth/login"},
		{name: "longest prefix", path: "/ats/jobs/123/applications", method: "POST", wantPath: "/ats/jobs/"},
		{name: "shorter prefix", path: "/ats/interviews/9", method: "PATCH", wantPath: "/ats/"},
		{name: "method mismatch", path: "/auth/login", method: "GET", wantNil: true},
		{name: "read falls back", path: "/ats/jobs", method: "GET", wantNil: true},
		{name: "health", path: "/health", method: "GET", wantPath: "/health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}

	health := MatchEndpoint("/health", "GET", configs)
	assert.Zero(t, health.Limit, "health carries no limit")
}
