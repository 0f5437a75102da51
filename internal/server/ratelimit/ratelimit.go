// Package ratelimit limits requests per client, endpoint and method. Counters live in
// process memory (token buckets) or in Redis (fixed windows shared across replicas).
package ratelimit

import (
	"context"
	"time"

	"github.com/jonathan/hiring-pipeline/internal/logging"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Store counts requests for a key under a rule.
type Store interface {
	Take(ctx context.Context, key string, rule EndpointConfig) (Info, error)
	Close() error
}

// Limiter applies the configured rules to incoming requests.
type Limiter struct {
	config *Config
	store  Store
	log    *logging.Logger
}

// NewLimiter creates a limiter. A nil store selects an in-memory store.
func NewLimiter(cfg *Config, store Store, log *logging.Logger) *Limiter {
	if cfg == nil {
		cfg = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}
	if log == nil {
		log = logging.NewNop()
	}
	if store == nil {
		cleanup := time.Duration(0)
		if cfg.Enabled {
			cleanup = cfg.CleanupInterval
		}
		store = NewMemoryStore(cleanup)
	}
	return &Limiter{config: cfg, store: store, log: log}
}

// Allow reports whether a request from clientID to method+path may proceed.
// Store failures let the request through.
func (l *Limiter) Allow(ctx context.Context, clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	rule := MatchEndpoint(path, method, l.config.EndpointConfigs)
	if rule == nil {
		rule = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if rule.Limit <= 0 || rule.Window <= 0 {
		return true, Info{Allowed: true}
	}

	// prefix rules share one counter per client
	scope := path
	if rule.Path != "" {
		scope = rule.Path
	}
	info, err := l.store.Take(ctx, clientID+":"+method+":"+scope, *rule)
	if err != nil {
		l.log.Warn("rate limit store unavailable", "error", err)
		return true, Info{Allowed: true}
	}
	return info.Allowed, info
}

// Stop releases the store.
func (l *Limiter) Stop() {
	if err := l.store.Close(); err != nil {
		l.log.Warn("failed to close rate limit store", "error", err)
	}
}
