package authz

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/permkit/permkit/pkg/breaker"
	"github.com/permkit/permkit/pkg/permcache"
	"github.com/permkit/permkit/pkg/permissions"
)

const (
	keyPrefix   = "authz:"
	globalScope = "global"
)

// Engine resolves and caches the effective permission sets of users within
// tenants, and answers authorization checks against them.
//
// Construct one Engine at process start and hand it to every consumer; it is
// safe for arbitrary concurrent use. Unrelated keys never block each other:
// coordination is scoped per cache key only.
type Engine struct {
	source GrantSource
	store  permcache.Store
	cb     *breaker.CircuitBreaker
	flight singleflight.Group
	log    *slog.Logger

	ttl          time.Duration
	jitter       float64
	fetchTimeout time.Duration

	ownsStore bool
}

// New creates an engine over the given grant source. Without options it uses
// an in-process cache, default breaker thresholds, and slog.Default().
func New(source GrantSource, opts ...Option) *Engine {
	cfg := engineConfig{
		ttl:          DefaultTTL,
		jitter:       DefaultTTLJitter,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.log == nil {
		cfg.log = slog.Default()
	}
	if cfg.cb == nil {
		cfg.cb = breaker.New(0, 0)
	}
	if cfg.store == nil {
		cfg.store = permcache.NewMemoryStore(permcache.Config{})
		cfg.ownsStore = true
	}

	return &Engine{
		source:       source,
		store:        cfg.store,
		cb:           cfg.cb,
		log:          cfg.log,
		ttl:          cfg.ttl,
		jitter:       cfg.jitter,
		fetchTimeout: cfg.fetchTimeout,
		ownsStore:    cfg.ownsStore,
	}
}

// NewFromConfig creates an engine wired from environment-driven configuration:
// the cache backend is selected by the config (falling back to in-process on
// redis construction failure) and breaker thresholds come from the config
// unless overridden by options.
func NewFromConfig(ctx context.Context, cfg Config, source GrantSource, opts ...Option) *Engine {
	var scratch engineConfig
	for _, opt := range opts {
		opt(&scratch)
	}

	log := scratch.log
	if log == nil {
		log = slog.Default()
	}

	base := []Option{
		WithTTL(cfg.TTL),
		WithTTLJitter(cfg.TTLJitter),
		WithFetchTimeout(cfg.FetchTimeout),
	}
	if scratch.cb == nil {
		base = append(base, WithBreaker(breaker.New(cfg.BreakerFailureThreshold, cfg.BreakerCooldown)))
	}
	if scratch.store == nil {
		store := permcache.New(ctx, cfg.Cache, log)
		base = append(base, func(c *engineConfig) {
			c.store = store
			c.ownsStore = true
		})
	}

	return New(source, append(base, opts...)...)
}

// GetUserPermissions resolves the effective permission set for a user within
// a tenant. An empty locationID resolves the tenant-wide scope.
//
// Resolution order: fresh cache hit, then a single-flight-coordinated,
// timeout-bounded backing-store fetch guarded by the circuit breaker, with a
// bounded stale cache read as the degraded fallback when the store is open or
// failing. A stale result is returned with a logged warning, never an error.
func (e *Engine) GetUserPermissions(ctx context.Context, tenantID, userID, locationID string) ([]string, error) {
	if tenantID == "" || userID == "" {
		return nil, ErrMissingIdentity
	}

	key := userKey(tenantID, userID, locationID)
	if perms, ok := e.store.Get(ctx, key); ok {
		return perms, nil
	}

	return e.resolve(ctx, key, func(ctx context.Context) ([]string, error) {
		return e.source.FetchGrants(ctx, tenantID, userID, locationID)
	})
}

// GetUserPermissionsForRole resolves the permission set a user gains through
// one specific role. The fetch verifies the user actually holds the role; a
// role-scoped request for a role the user does not hold yields an empty set
// without error, since that is expected stale-client or adversarial input.
func (e *Engine) GetUserPermissionsForRole(ctx context.Context, tenantID, userID, roleID, locationID string) ([]string, error) {
	if tenantID == "" || userID == "" || roleID == "" {
		return nil, ErrMissingIdentity
	}

	key := roleKey(tenantID, userID, roleID, locationID)
	if perms, ok := e.store.Get(ctx, key); ok {
		return perms, nil
	}

	return e.resolve(ctx, key, func(ctx context.Context) ([]string, error) {
		holds, err := e.source.HoldsRole(ctx, tenantID, userID, roleID, locationID)
		if err != nil {
			return nil, err
		}
		if !holds {
			e.log.Debug("authz: role-scoped request for role not held",
				slog.String("tenant", tenantID),
				slog.String("user", userID),
				slog.String("role", roleID))
			return []string{}, nil
		}
		return e.source.FetchRoleGrants(ctx, tenantID, roleID)
	})
}

// HasPermission reports whether the user holds a permission matching the
// requested string. On resolution failure it returns the error so the caller
// can apply default-deny; it never grants access on uncertainty.
func (e *Engine) HasPermission(ctx context.Context, tenantID, userID, locationID, permission string) (bool, error) {
	perms, err := e.GetUserPermissions(ctx, tenantID, userID, locationID)
	if err != nil {
		return false, err
	}
	return permissions.HasPermission(perms, permission), nil
}

// InvalidateCache removes every cached permission set for the user across all
// location scopes and role-scoped variants. Role-management mutation paths
// must call this after any role or assignment change.
func (e *Engine) InvalidateCache(ctx context.Context, tenantID, userID string) {
	e.store.DeletePattern(ctx, keyPrefix+tenantID+":"+userID+":*")
}

// BreakerStats exposes the current breaker counters for logs and monitoring.
func (e *Engine) BreakerStats() breaker.Stats {
	return e.cb.Stats()
}

// Close releases resources the engine owns. A store injected via WithStore
// stays open; its lifecycle belongs to whoever constructed it.
func (e *Engine) Close() error {
	if e.ownsStore {
		return e.store.Close()
	}
	return nil
}

// resolve coalesces concurrent misses for an identical key into one
// underlying fetch; every concurrent caller observes the outcome of exactly
// that fetch. A caller whose context ends while waiting detaches with its
// context error; the flight itself continues for the remaining waiters.
func (e *Engine) resolve(ctx context.Context, key string, fetch func(context.Context) ([]string, error)) ([]string, error) {
	ch := e.flight.DoChan(key, func() (any, error) {
		return e.fetchAndCache(ctx, key, fetch)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	}
}

// fetchAndCache runs inside the single-flight region for key.
func (e *Engine) fetchAndCache(ctx context.Context, key string, fetch func(context.Context) ([]string, error)) ([]string, error) {
	// Another flight may have completed while this one queued.
	if perms, ok := e.store.Get(ctx, key); ok {
		return perms, nil
	}

	if !e.cb.Allow() {
		if stale, ok := e.store.GetStale(ctx, key); ok {
			e.log.Warn("authz: backing store circuit open, serving stale permissions",
				slog.String("key", key))
			return stale, nil
		}
		// No fallback data exists, so the query still runs once: the breaker
		// degrades load and latency, never correctness.
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	perms, err := fetch(fetchCtx)
	if err != nil {
		e.cb.RecordFailure()

		if stale, ok := e.store.GetStale(ctx, key); ok {
			e.log.Warn("authz: backing store fetch failed, serving stale permissions",
				slog.String("key", key),
				slog.Any("error", err))
			return stale, nil
		}

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, errors.Join(ErrStoreTimeout, err)
		case errors.Is(err, context.Canceled):
			return nil, err
		default:
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
	}

	e.cb.RecordSuccess()

	perms = permissions.Normalize(perms)
	if perms == nil {
		perms = []string{}
	}
	e.store.Set(ctx, key, perms, e.jitteredTTL())

	return perms, nil
}

// jitteredTTL spreads expiry across keys sharing the nominal TTL so a burst
// of resolutions does not produce a synchronized mass expiry later.
func (e *Engine) jitteredTTL() time.Duration {
	if e.jitter <= 0 {
		return e.ttl
	}
	return e.ttl + time.Duration(rand.Float64()*e.jitter*float64(e.ttl))
}

func userKey(tenantID, userID, locationID string) string {
	return keyPrefix + tenantID + ":" + userID + ":" + scopeOf(locationID)
}

func roleKey(tenantID, userID, roleID, locationID string) string {
	return keyPrefix + tenantID + ":" + userID + ":role:" + roleID + ":" + scopeOf(locationID)
}

func scopeOf(locationID string) string {
	if locationID == "" {
		return globalScope
	}
	return locationID
}
