package authz

import "errors"

var (
	// ErrStoreTimeout is returned when the backing-store fetch exceeded the
	// configured hard bound and no stale fallback data was available.
	ErrStoreTimeout = errors.New("authz: backing store fetch timed out")

	// ErrStoreUnavailable is returned when the backing-store fetch failed and
	// no stale fallback data was available. Callers must apply default-deny.
	ErrStoreUnavailable = errors.New("authz: backing store unavailable")

	// ErrPermissionDenied is a genuine policy denial, as opposed to a denial
	// caused by an unreachable backing store.
	ErrPermissionDenied = errors.New("authz: permission denied")

	// ErrNoActorInContext is returned when no actor is found in the request context.
	ErrNoActorInContext = errors.New("authz: no actor in context")

	// ErrMissingIdentity is returned when a tenant or user identifier is empty.
	ErrMissingIdentity = errors.New("authz: tenant and user identifiers are required")

	// ErrInvalidDatabaseConfig is returned when the database URL cannot be parsed.
	ErrInvalidDatabaseConfig = errors.New("authz: invalid database configuration")

	// ErrDatabaseUnreachable is returned when the database cannot be reached
	// within the configured retry budget.
	ErrDatabaseUnreachable = errors.New("authz: database unreachable")
)
