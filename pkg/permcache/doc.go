// Package permcache provides the cache tier for resolved permission sets:
// a pluggable Store interface with an in-process backend and a redis-backed
// distributed backend.
//
// Both backends share the same expiry model. An entry is fresh until its TTL
// elapses and then remains retrievable through GetStale for a bounded stale
// window, which callers use as a degraded fallback when the durable store is
// unavailable. Reads always return defensive copies, so one caller mutating a
// returned set can never corrupt another caller's view.
//
// # Backend selection
//
// The New factory picks the backend from configuration: a configured redis
// URL selects the distributed backend, and any construction failure falls
// back to the in-process backend with a logged warning instead of failing
// startup.
//
//	cfg, err := permcache.LoadConfig()
//	if err != nil {
//	    // handle error
//	}
//
//	store := permcache.New(ctx, cfg, slog.Default())
//	defer store.Close()
//
//	store.Set(ctx, "authz:acme:u1:global", []string{"orders.*"}, 5*time.Minute)
//	perms, ok := store.Get(ctx, "authz:acme:u1:global")
//
// # Invalidation
//
// DeletePattern removes every key matching a prefix pattern such as
// "authz:acme:u1:*". The redis backend walks the keyspace with SCAN in
// bounded pages rather than issuing a single unbounded operation, so bulk
// invalidation never blocks the shared store.
package permcache
