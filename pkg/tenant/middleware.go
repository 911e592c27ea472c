package tenant

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/tenantdb"
)

// Connector ensures a live tenant connection; *tenantdb.Registry
// implements it.
type Connector interface {
	EnsureTenant(ctx context.Context, key string) (*tenantdb.Connection, error)
}

// ModelSource returns the bound models for a connected key;
// *tenantdb.Binder implements it.
type ModelSource[M any] interface {
	Models(key string) (M, error)
}

// Middleware resolves the tenant key, ensures its connection, binds its
// models and attaches a Context[M] to the request. Any failure stops the
// request before the next handler runs.
func Middleware[M any](resolver Resolver, connector Connector, models ModelSource[M], opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		cacheTTL:     5 * time.Minute,
		errorHandler: defaultErrorHandler,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.provider != nil && cfg.cache == nil {
		cfg.cache = NewInMemoryCache(DefaultCacheSize)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			tc, err := resolve(r, cfg, resolver, connector, models)
			if err != nil {
				if HTTPStatus(err) >= http.StatusInternalServerError {
					cfg.logger.ErrorContext(r.Context(), "tenant resolution failed", logger.Error(err))
				}
				cfg.errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), tc)))
		})
	}
}

func resolve[M any](r *http.Request, cfg *config, resolver Resolver, connector Connector, source ModelSource[M]) (*Context[M], error) {
	ctx := r.Context()

	raw, err := resolver.Resolve(r)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrTenantKeyMissing
	}
	key, err := tenantdb.ParseKey(raw)
	if err != nil {
		return nil, err
	}

	var info *Info
	if cfg.provider != nil {
		if info, err = lookup(ctx, cfg, key); err != nil {
			return nil, err
		}
	}

	conn, err := connector.EnsureTenant(ctx, key)
	if err != nil {
		return nil, err
	}
	models, err := source.Models(key)
	if err != nil {
		return nil, err
	}

	return &Context[M]{
		Key:          key,
		Database:     conn.DatabaseName(),
		Generation:   conn.Generation(),
		Models:       models,
		Organization: info,
	}, nil
}

func lookup(ctx context.Context, cfg *config, key string) (*Info, error) {
	info, ok := cfg.cache.Get(ctx, key)
	if !ok {
		var err error
		if info, err = cfg.provider.GetByKey(ctx, key); err != nil {
			return nil, err
		}
		cfg.cache.Set(ctx, key, info, cfg.cacheTTL)
	}
	if !info.Active {
		return nil, ErrInactiveTenant
	}
	return info, nil
}

// RequireTenant rejects requests that reach it without a tenant context.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := KeyFromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
