package permcache

import (
	"context"
	"log/slog"
	"time"
)

// Store is a pluggable cache of permission sets keyed by opaque strings.
//
// Implementations must return defensive copies from Get and GetStale; callers
// may mutate the returned slice freely. Entries expire after the TTL passed to
// Set, but are retained for an additional bounded stale window so that
// GetStale can serve them as a degraded fallback.
type Store interface {
	// Get returns the permission set for key if present and not expired.
	Get(ctx context.Context, key string) ([]string, bool)

	// GetStale returns the permission set for key if present, even past its
	// TTL, as long as the stale retention window has not elapsed.
	GetStale(ctx context.Context, key string) ([]string, bool)

	// Set stores the permission set under key with the given TTL.
	Set(ctx context.Context, key string, perms []string, ttl time.Duration)

	// DeletePattern removes every entry whose key matches the pattern.
	// A trailing "*" matches any suffix; without it the pattern is an exact key.
	DeletePattern(ctx context.Context, pattern string)

	// Close releases any resources held by the store.
	Close() error
}

// New selects and constructs a cache backend from the configuration.
//
// An empty RedisURL yields the in-process backend. A configured RedisURL is
// attempted first; if the connection cannot be established the in-process
// backend is substituted and a warning is logged, so a degraded cache tier
// never blocks process startup. The fallback is a deliberate resilience
// choice: a local cache beats no cache.
func New(ctx context.Context, cfg Config, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}

	if cfg.RedisURL == "" {
		return NewMemoryStore(cfg)
	}

	store, err := NewRedisStore(ctx, cfg, log)
	if err != nil {
		log.Warn("permcache: redis backend unavailable, falling back to in-process cache",
			slog.Any("error", err))
		return NewMemoryStore(cfg)
	}
	return store
}
