package authz

import (
	"context"
	"errors"
	"net/http"
)

// PermissionChecker is the engine surface the middleware needs.
type PermissionChecker interface {
	HasPermission(ctx context.Context, tenantID, userID, locationID, permission string) (bool, error)
}

// ErrorHandler handles authorization failures in the middleware.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// middlewareConfig holds middleware configuration.
type middlewareConfig struct {
	errorHandler ErrorHandler
}

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*middlewareConfig)

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// RequirePermission creates HTTP middleware that checks the actor in the
// request context against one required permission.
//
// An impersonated actor bypasses the check entirely. A genuine policy denial
// responds 403; a denial caused by an unreachable backing store responds 503
// with a distinct message, so operators can tell outages apart from
// enforcement. Resolution errors always deny.
func RequirePermission(checker PermissionChecker, permission string, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{errorHandler: defaultErrorHandler}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				cfg.errorHandler(w, r, ErrNoActorInContext)
				return
			}

			if actor.Impersonated {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := checker.HasPermission(r.Context(), actor.TenantID, actor.UserID, actor.LocationID, permission)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if !allowed {
				cfg.errorHandler(w, r, ErrPermissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoActorInContext):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrPermissionDenied):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		// Store outages must be distinguishable from policy denials.
		http.Error(w, "Temporarily unable to verify access", http.StatusServiceUnavailable)
	}
}
