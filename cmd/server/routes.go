package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webix/udirdlaga/internal/httperr"
	"github.com/webix/udirdlaga/modules/admin"
	"github.com/webix/udirdlaga/modules/organization"
	"github.com/webix/udirdlaga/modules/rental"
	"github.com/webix/udirdlaga/modules/tenantauth"
	"github.com/webix/udirdlaga/modules/tenantdata"
	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/httpserver"
	"github.com/webix/udirdlaga/pkg/jwt"
	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/ratelimiter"
	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/requestid"
	"github.com/webix/udirdlaga/pkg/tenant"
	"github.com/webix/udirdlaga/pkg/tenantdb"
)

type routerDeps struct {
	cfg           Config
	log           *slog.Logger
	registry      *tenantdb.Registry
	binder        *tenantdb.Binder[tenantdata.Models]
	organizations organization.Store
	admins        admin.Store
	hasher        *auth.Hasher
	tokens        *jwt.Service
	denylist      jwt.Denylist
	limiter       ratelimiter.RateLimiter
	cache         tenant.Cache
	checks        []httpserver.Check
	metrics       *prometheus.Registry
}

func newRouter(d routerDeps) http.Handler {
	log := d.log
	tenantPolicy := rbac.MustAuthorizer(rbac.TenantPolicy())
	platformPolicy := rbac.MustAuthorizer(rbac.PlatformPolicy())

	authn := auth.NewAuthenticator(
		auth.WithHasher(d.hasher),
		auth.WithLogger(log.With(logger.Component("auth"))),
	)

	admins := admin.NewHandler(d.admins, authn, d.tokens,
		admin.WithDenylist(d.denylist),
		admin.WithLogger(log.With(logger.Component("admin"))),
	)
	operations := admin.NewTenantsHandler(d.registry, platformPolicy, log.With(logger.Component("operations")))

	orgs := organization.NewHandler(
		organization.NewService(d.organizations, tenantdata.NewProvisioner(d.registry, d.binder),
			organization.WithCache(d.cache),
			organization.WithHasher(d.hasher),
			organization.WithServiceLogger(log.With(logger.Component("organization"))),
		),
		platformPolicy,
		organization.WithLogger(log.With(logger.Component("organization"))),
	)

	members := tenantauth.NewHandler(authn, d.tokens,
		tenantauth.WithDenylist(d.denylist),
		tenantauth.WithLogger(log.With(logger.Component("tenantauth"))),
	)
	rentals := rental.NewHandler(tenantdata.Rentals, tenantPolicy,
		rental.WithPolicy(d.cfg.Rental),
		rental.WithLogger(log.With(logger.Component("rental"))),
	)

	resolveTenant := tenant.Middleware[tenantdata.Models](tenant.NewDefaultResolver(), d.registry, d.binder,
		tenant.WithProvider(organization.NewProvider(d.organizations)),
		tenant.WithCache(d.cache),
		tenant.WithCacheTTL(d.cfg.TenantCacheTTL),
		tenant.WithErrorHandler(httperr.Writer(log)),
		tenant.WithLogger(log.With(logger.Component("tenant"))),
	)
	limitErrors := ratelimiter.WithErrorHandler(httperr.Writer(log))
	perTenant := ratelimiter.Middleware(d.limiter, ratelimiter.TenantKey, limitErrors,
		ratelimiter.WithLogger(log))
	perClient := ratelimiter.Middleware(d.limiter, ratelimiter.ClientIP, limitErrors,
		ratelimiter.WithLogger(log))

	ready := httpserver.ReadinessHandler(log, d.cfg.ReadyTimeout, d.checks...)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	r.Get("/api/health", ready)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", ready)
	if d.cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(d.metrics, promhttp.HandlerOpts{}))
	}

	r.With(perClient).Mount("/api/auth", admins.Routes())
	r.With(admins.Protect()).Mount("/api/admin/tenants", operations.Routes())
	r.With(perClient).Mount("/api/organizations", orgs.Routes(admins.Protect()))

	r.Route("/api/tenant/{subdomain}", func(r chi.Router) {
		r.Use(resolveTenant, perTenant)
		r.Mount("/auth", members.Routes())
		r.With(members.Protect()).Mount("/rentals", rentals.Routes())
	})

	return r
}
