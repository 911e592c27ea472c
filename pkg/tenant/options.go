package tenant

import (
	"log/slog"
	"net/http"
	"time"
)

// ErrorHandler writes the response for a failed resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type config struct {
	provider     Provider
	cache        Cache
	cacheTTL     time.Duration
	errorHandler ErrorHandler
	skipPaths    []string
	logger       *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithProvider makes the middleware load the organization for every key
// and reject unknown or inactive tenants before any database is opened.
func WithProvider(p Provider) Option {
	return func(c *config) { c.provider = p }
}

// WithCache sets the cache for provider lookups.
func WithCache(cache Cache) Option {
	return func(c *config) { c.cache = cache }
}

// WithCacheTTL sets how long provider lookups are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) { c.cacheTTL = ttl }
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) { c.skipPaths = append(c.skipPaths, paths...) }
}

// WithLogger sets the logger for resolution failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status := HTTPStatus(err)
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}
	http.Error(w, msg, status)
}
