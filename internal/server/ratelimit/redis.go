package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript counts a hit and returns the count together with the window's
// remaining lifetime in milliseconds.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

const redisTimeout = 250 * time.Millisecond

// RedisStore counts requests in fixed windows shared by every replica.
type RedisStore struct {
	client *redis.Client
	prefix string
	script *redis.Script
	now    func() time.Time
}

// NewRedisStore creates a store writing keys under prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		script: redis.NewScript(fixedWindowScript),
		now:    time.Now,
	}
}

func (s *RedisStore) Take(ctx context.Context, key string, rule EndpointConfig) (Info, error) {
	window := rule.Window.Milliseconds()
	if window <= 0 {
		window = 1
	}
	if s.prefix != "" {
		key = s.prefix + ":" + key
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	res, err := s.script.Run(ctx, s.client, []string{key}, window).Int64Slice()
	if err != nil {
		return Info{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	if len(res) != 2 {
		return Info{}, fmt.Errorf("unexpected rate limit script result: %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = rule.Window
	}
	info := Info{
		Allowed:   count <= rule.Limit,
		Limit:     rule.Limit,
		Remaining: max(rule.Limit-count, 0),
		ResetTime: s.now().Add(ttl),
	}
	if !info.Allowed {
		info.RetryAfter = ttl
	}
	return info, nil
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisStore) Close() error {
	return nil
}
