package authz

import (
	"log/slog"
	"time"

	"github.com/permkit/permkit/pkg/breaker"
	"github.com/permkit/permkit/pkg/permcache"
)

const (
	// DefaultTTL is the nominal cache lifetime of a resolved permission set.
	DefaultTTL = 5 * time.Minute
	// DefaultTTLJitter is the max random extra TTL as a fraction of the TTL.
	DefaultTTLJitter = 0.1
	// DefaultFetchTimeout is the hard bound on a single backing-store fetch.
	DefaultFetchTimeout = 5 * time.Second
)

// engineConfig holds engine construction settings.
type engineConfig struct {
	store        permcache.Store
	cb           *breaker.CircuitBreaker
	log          *slog.Logger
	ttl          time.Duration
	jitter       float64
	fetchTimeout time.Duration
	ownsStore    bool
}

// Option configures engine construction.
type Option func(*engineConfig)

// WithStore injects a cache store. The engine will not close an injected
// store; its lifecycle stays with the caller.
func WithStore(store permcache.Store) Option {
	return func(c *engineConfig) {
		c.store = store
		c.ownsStore = false
	}
}

// WithBreaker injects a circuit breaker, letting the caller keep a handle on
// it for monitoring.
func WithBreaker(cb *breaker.CircuitBreaker) Option {
	return func(c *engineConfig) {
		c.cb = cb
	}
}

// WithLogger sets the logger used for degraded-mode warnings.
func WithLogger(log *slog.Logger) Option {
	return func(c *engineConfig) {
		c.log = log
	}
}

// WithTTL sets the nominal cache TTL for resolved permission sets.
func WithTTL(ttl time.Duration) Option {
	return func(c *engineConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithTTLJitter sets the max random extra TTL as a fraction of the TTL.
// Zero disables jitter.
func WithTTLJitter(fraction float64) Option {
	return func(c *engineConfig) {
		if fraction >= 0 {
			c.jitter = fraction
		}
	}
}

// WithFetchTimeout sets the hard bound on a single backing-store fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *engineConfig) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}
