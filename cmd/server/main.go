// Command server runs the multi-tenant rental API: the control plane for
// organizations and platform admins, and the per-organization user and
// rental routes, each backed by its own database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/webix/udirdlaga/modules/admin"
	"github.com/webix/udirdlaga/modules/organization"
	"github.com/webix/udirdlaga/modules/tenantdata"
	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/config"
	"github.com/webix/udirdlaga/pkg/httpserver"
	"github.com/webix/udirdlaga/pkg/jwt"
	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/mongo"
	"github.com/webix/udirdlaga/pkg/ratelimiter"
	"github.com/webix/udirdlaga/pkg/redis"
	"github.com/webix/udirdlaga/pkg/requestid"
	"github.com/webix/udirdlaga/pkg/tenant"
	"github.com/webix/udirdlaga/pkg/tenantdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg.Log, logger.WithContextExtractors(
		requestid.LoggerExtractor(),
		tenant.LoggerExtractor(),
	))
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger.SetAsDefault(log)

	control, err := mongo.New(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	controlDB, err := mongo.DatabaseName(cfg.Mongo.URI)
	if err != nil {
		return err
	}

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry := tenantdb.NewRegistry(tenantdb.NewMongoOpener(cfg.Mongo), controlDB,
		tenantdb.WithConfig(cfg.TenantDB),
		tenantdb.WithDefaultOpener(tenantdb.OpenerFunc(func(_ context.Context, database string) (tenantdb.Handle, error) {
			return tenantdb.ClientHandle(control, database), nil
		})),
		tenantdb.WithLogger(log.With(logger.Component("tenantdb"))),
		tenantdb.WithMetrics(tenantdb.NewMetrics(metrics)),
	)
	defaultConn, err := registry.EnsureDefault(ctx)
	if err != nil {
		return err
	}
	binder := tenantdb.NewBinder(registry, tenantdata.Factory)

	organizations := organization.NewMongoStore(defaultConn.Database())
	admins := admin.NewMongoStore(defaultConn.Database())
	if err := errors.Join(organizations.EnsureIndexes(ctx), admins.EnsureIndexes(ctx)); err != nil {
		return fmt.Errorf("control-plane indexes: %w", err)
	}

	var (
		denylist    jwt.Denylist = jwt.NewMemoryDenylist()
		redisClient *goredis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		denylist = redis.NewDenylist(redis.NewStorage(redisClient, cfg.Redis.KeyPrefix))
	} else {
		log.Warn("REDIS_URL not set, revoked tokens are kept in memory")
	}

	tokens, err := jwt.NewFromConfig(cfg.JWT)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	if _, err := admin.Bootstrap(ctx, admins, hasher, cfg.Admin, log); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	limiter, err := ratelimiter.New(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	cache := tenant.NewInMemoryCache(cfg.TenantCacheMax)

	checks := []httpserver.Check{{Name: "mongodb", Fn: mongo.Healthcheck(control)}}
	if redisClient != nil {
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(redisClient)})
	}

	router := newRouter(routerDeps{
		cfg:           cfg,
		log:           log,
		registry:      registry,
		binder:        binder,
		organizations: organizations,
		admins:        admins,
		hasher:        hasher,
		tokens:        tokens,
		denylist:      denylist,
		limiter:       limiter,
		cache:         cache,
		checks:        checks,
		metrics:       metrics,
	})

	server := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook("tenant connections", registry.CloseAll),
		httpserver.WithShutdownHook("tenant cache", func(context.Context) error { return cache.Close() }),
		httpserver.WithShutdownHook("redis", func(context.Context) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Close()
		}),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go limiter.Run(ctx, time.Minute)

	return server.Run(ctx, router)
}
