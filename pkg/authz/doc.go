// Package authz resolves which permissions a user holds within one tenant of
// a multi-tenant application, and answers authorization checks against the
// resolved set. It sits on the hot path of every protected operation, so the
// design centers on a caching and resilience pipeline rather than on policy
// evaluation:
//
//   - resolved permission sets are cached with a jittered TTL
//   - concurrent cache misses for the same key share one backing-store fetch
//   - every fetch is bounded by a hard timeout
//   - a circuit breaker sheds load from a failing store, preferring bounded
//     stale cache data over fresh queries while open
//   - when neither fresh nor stale data exists, the query still runs, so the
//     breaker degrades latency and load but never correctness
//
// The durable store behind the engine is abstracted as a GrantSource. Three
// implementations ship with the package: PostgresSource for production,
// StaticSource for tests and programmatic setup, and NewFileSource for
// YAML-defined roles in development.
//
// # Usage
//
//	cfg, err := authz.LoadConfig()
//	if err != nil {
//	    // handle error
//	}
//
//	source := authz.NewPostgresSource(pool)
//	engine := authz.NewFromConfig(ctx, cfg, source)
//	defer engine.Close()
//
//	ok, err := engine.HasPermission(ctx, tenantID, userID, "", "orders.void")
//	if err != nil {
//	    // backing store unreachable and no cached data: deny by default
//	}
//
// # Invalidation
//
// The engine owns no write path. Any operation that mutates roles or role
// assignments must call InvalidateCache(tenantID, userID) afterwards; the
// engine then drops every location- and role-scoped entry for that user via
// a prefix pattern delete, leaving unrelated entries untouched. Until
// invalidation (or TTL expiry) a revoked role remains effective; the lag is
// bounded by the TTL.
//
// # HTTP integration
//
// RequirePermission adapts the engine to net/http middleware. It reads the
// Actor placed in the request context by the authentication layer:
//
//	mux.Handle("/orders/void", authz.RequirePermission(engine, "orders.void")(handler))
//
// A denial caused by a store outage responds 503 with a distinct message
// rather than 403, so enforcement and outages are distinguishable in logs.
package authz
