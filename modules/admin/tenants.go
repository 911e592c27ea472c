package admin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/webix/udirdlaga/handler"
	"github.com/webix/udirdlaga/internal/httperr"
	"github.com/webix/udirdlaga/pkg/binder"
	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/tenantdb"
)

// PermManageConnections guards the tenant connection routes.
const PermManageConnections = "manage_connections"

// Connections is the part of tenantdb.Registry the operations routes use.
type Connections interface {
	Keys() []string
	CloseTenant(ctx context.Context, key string) error
}

// TenantsHandler serves /api/admin/tenants.
type TenantsHandler struct {
	conns Connections
	authz *rbac.Authorizer
	log   *slog.Logger
}

func NewTenantsHandler(conns Connections, authz *rbac.Authorizer, log *slog.Logger) *TenantsHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TenantsHandler{conns: conns, authz: authz, log: log}
}

// Routes must be mounted behind Handler.Protect.
func (h *TenantsHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(rbac.RequirePermission(h.authz, PermManageConnections,
		rbac.WithErrorHandler(httperr.Writer(h.log))))

	r.Get("/connections", handler.Wrap(h.list))
	r.Delete("/{subdomain}/connection", handler.Wrap(h.close,
		handler.WithBinders[handler.Context, closeRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, closeRequest](httperr.Handler(h.log, mappings...))))
	return r
}

func (h *TenantsHandler) list(handler.Context, struct{}) handler.Response {
	keys := h.conns.Keys()
	slices.Sort(keys)
	return handler.JSON(map[string]any{"connections": keys, "count": len(keys)})
}

type closeRequest struct {
	Subdomain string `path:"subdomain"`
}

func (h *TenantsHandler) close(ctx handler.Context, req closeRequest) handler.Response {
	key, err := tenantdb.ParseKey(req.Subdomain)
	if err != nil {
		return httperr.Response(err)
	}
	if !slices.Contains(h.conns.Keys(), key) {
		return httperr.Response(ErrNotConnected, mappings...)
	}
	if err := h.conns.CloseTenant(ctx, key); err != nil {
		return httperr.Response(err)
	}
	h.log.InfoContext(ctx, "tenant connection closed by admin", logger.TenantKey(key))
	return handler.JSON(map[string]any{"subdomain": key}, handler.WithMessage("Tenant connection closed"))
}
