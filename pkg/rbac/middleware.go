package rbac

import (
	"errors"
	"net/http"
	"slices"
)

// ErrorHandler writes the response for a denied request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	extract      SubjectExtractor
	errorHandler ErrorHandler
}

// MiddlewareOption configures RequireRole and RequirePermission.
type MiddlewareOption func(*middlewareConfig)

// WithSubjectExtractor sets how the subject is found. Defaults to
// DefaultSubject.
func WithSubjectExtractor(fn SubjectExtractor) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.extract = fn
		}
	}
}

// WithErrorHandler sets the denial handler.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func newMiddlewareConfig(opts []MiddlewareOption) *middlewareConfig {
	c := &middlewareConfig{extract: DefaultSubject, errorHandler: defaultErrorHandler}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequireRole admits subjects whose role is one of roles.
func RequireRole(roles []string, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := newMiddlewareConfig(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := cfg.extract(r.Context())
			if !ok {
				cfg.errorHandler(w, r, ErrNoSubject)
				return
			}
			if !slices.Contains(roles, s.Role) {
				cfg.errorHandler(w, r, ErrInsufficientPermissions)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission admits subjects granted permission by authz.
func RequirePermission(authz *Authorizer, permission string, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := newMiddlewareConfig(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := cfg.extract(r.Context())
			if !ok {
				cfg.errorHandler(w, r, ErrNoSubject)
				return
			}
			if err := authz.Allowed(s, permission); err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HTTPStatus maps authorization errors to status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoSubject):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInsufficientPermissions), errors.Is(err, ErrInvalidRole):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status := HTTPStatus(err)
	http.Error(w, http.StatusText(status), status)
}
