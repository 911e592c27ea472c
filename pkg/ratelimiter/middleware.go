package ratelimiter

import (
	"errors"
	"hash/fnv"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/tenant"
)

// maxKeyLength is the maximum allowed length for a rate limit key.
const maxKeyLength = 64

// KeyFunc extracts a rate limit key from the request. An empty key
// bypasses the limiter.
type KeyFunc func(r *http.Request) string

// TenantKey limits per resolved tenant.
func TenantKey(r *http.Request) string {
	key, _ := tenant.KeyFromContext(r.Context())
	if key == "" {
		return ""
	}
	return "tenant:" + key
}

// ClientIP limits per client address, preferring X-Real-IP.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return "ip:" + ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return ""
	}
	return "ip:" + host
}

// Composite combines key functions. Long keys are hashed with FNV-1a.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		if len(parts) == 0 {
			return ""
		}

		combined := strings.Join(parts, ":")
		if len(combined) > maxKeyLength {
			h := fnv.New64a()
			h.Write([]byte(combined))
			return strconv.FormatUint(h.Sum64(), 36)
		}
		return combined
	}
}

// ErrorHandler writes the response for a rejected or failed check.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	errorHandler ErrorHandler
	logger       *slog.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithErrorHandler sets the rejection handler.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithLogger sets the logger for limiter failures.
func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Middleware rejects requests over the limit with ErrRateLimited and sets
// the X-RateLimit-* and Retry-After headers.
func Middleware(rl RateLimiter, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: defaultErrorHandler,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := rl.Allow(r.Context(), key)
			if err != nil {
				cfg.logger.ErrorContext(r.Context(), "rate limit check failed",
					logger.Error(err),
					logger.Component("ratelimiter"),
				)
				cfg.errorHandler(w, r, err)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				retry := int(result.RetryAfter().Seconds())
				w.Header().Set("Retry-After", strconv.Itoa(max(1, retry)))
				cfg.errorHandler(w, r, ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, ErrRateLimited) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
