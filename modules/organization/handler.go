package organization

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webix/udirdlaga/handler"
	"github.com/webix/udirdlaga/internal/httperr"
	"github.com/webix/udirdlaga/pkg/binder"
	"github.com/webix/udirdlaga/pkg/rbac"
)

// Platform permissions checked by the organization routes.
const (
	PermManage = "manage_organizations"
	PermDelete = "delete_organizations"
)

var mappings = []httperr.Mapping{
	httperr.Map(ErrNotFound, handler.ErrNotFound.WithMessage("Organization not found")),
	httperr.Map(ErrInvalidID, handler.ErrBadRequest.WithMessage("Invalid organization id")),
	httperr.Map(ErrSubdomainTaken, handler.ErrBadRequest.WithMessage("Subdomain is already taken")),
	httperr.Map(ErrRegistrationExists, handler.ErrBadRequest.WithMessage("Registration number already exists")),
	httperr.Map(ErrVerificationMismatch, handler.ErrBadRequest.WithMessage("Invalid or expired verification token")),
	httperr.Map(ErrVerificationExpired, handler.ErrBadRequest.WithMessage("Invalid or expired verification token")),
}

// Handler serves /api/organizations.
type Handler struct {
	svc   *Service
	authz *rbac.Authorizer
	log   *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler creates the handler. authz checks the platform policy.
func NewHandler(svc *Service, authz *rbac.Authorizer, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:   svc,
		authz: authz,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the public lookups and, behind protect, the management
// routes. protect must store the platform admin with rbac.WithSubject.
func (h *Handler) Routes(protect func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	deny := rbac.WithErrorHandler(httperr.Writer(h.log))

	r.Get("/subdomain/{subdomain}", handler.Wrap(h.bySubdomain,
		handler.WithBinders[handler.Context, subdomainRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, subdomainRequest](httperr.Handler(h.log, mappings...))))
	r.Get("/check-subdomain/{subdomain}", handler.Wrap(h.checkSubdomain,
		handler.WithBinders[handler.Context, subdomainRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, subdomainRequest](httperr.Handler(h.log, mappings...))))

	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Use(rbac.RequirePermission(h.authz, PermManage, deny))

		r.Post("/", handler.Wrap(h.register,
			handler.WithBinders[handler.Context, RegisterInput](binder.JSON()),
			handler.WithErrorHandler[handler.Context, RegisterInput](httperr.Handler(h.log, mappings...))))
		r.Get("/", handler.Wrap(h.list,
			handler.WithBinders[handler.Context, ListQuery](binder.Query()),
			handler.WithErrorHandler[handler.Context, ListQuery](httperr.Handler(h.log, mappings...))))
		r.Get("/{id}", handler.Wrap(h.get,
			handler.WithBinders[handler.Context, idRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, idRequest](httperr.Handler(h.log, mappings...))))
		r.Put("/{id}", handler.Wrap(h.update,
			handler.WithBinders[handler.Context, updateRequest](binder.Path(chi.URLParam), binder.JSON()),
			handler.WithErrorHandler[handler.Context, updateRequest](httperr.Handler(h.log, mappings...))))
		r.With(rbac.RequirePermission(h.authz, PermDelete, deny)).Delete("/{id}", handler.Wrap(h.delete,
			handler.WithBinders[handler.Context, idRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, idRequest](httperr.Handler(h.log, mappings...))))
		r.Post("/{id}/verify", handler.Wrap(h.verify,
			handler.WithBinders[handler.Context, verifyRequest](binder.Path(chi.URLParam), binder.Query()),
			handler.WithErrorHandler[handler.Context, verifyRequest](httperr.Handler(h.log, mappings...))))
	})
	return r
}

type subdomainRequest struct {
	Subdomain string `path:"subdomain"`
}

type idRequest struct {
	ID string `path:"id"`
}

type updateRequest struct {
	ID string `path:"id" json:"-"`
	UpdateInput
}

type verifyRequest struct {
	ID    string `path:"id" query:"-"`
	Token string `path:"-" query:"token"`
}

func (h *Handler) bySubdomain(ctx handler.Context, req subdomainRequest) handler.Response {
	org, err := h.svc.GetBySubdomain(ctx, req.Subdomain)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.JSON(map[string]any{"organization": org})
}

func (h *Handler) checkSubdomain(ctx handler.Context, req subdomainRequest) handler.Response {
	key, available, err := h.svc.CheckSubdomain(ctx, req.Subdomain)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.JSON(map[string]any{"subdomain": key, "available": available})
}

func (h *Handler) register(ctx handler.Context, req RegisterInput) handler.Response {
	var createdBy string
	if s, ok := rbac.SubjectFromContext(ctx); ok {
		createdBy = s.ID
	}
	org, err := h.svc.Register(ctx, req, createdBy)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.Created(map[string]any{"organization": org.Summary()}, "Organization registered successfully")
}

func (h *Handler) list(ctx handler.Context, req ListQuery) handler.Response {
	orgs, page, err := h.svc.List(ctx, req)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.JSON(map[string]any{"organizations": orgs, "pagination": page})
}

func (h *Handler) get(ctx handler.Context, req idRequest) handler.Response {
	org, err := h.svc.Get(ctx, req.ID)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.JSON(map[string]any{"organization": org})
}

func (h *Handler) update(ctx handler.Context, req updateRequest) handler.Response {
	org, err := h.svc.Update(ctx, req.ID, req.UpdateInput)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.JSON(map[string]any{"organization": org},
		handler.WithMessage("Organization updated successfully"))
}

func (h *Handler) delete(ctx handler.Context, req idRequest) handler.Response {
	if err := h.svc.Delete(ctx, req.ID); err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.JSON(nil, handler.WithMessage("Organization deleted successfully"))
}

func (h *Handler) verify(ctx handler.Context, req verifyRequest) handler.Response {
	org, err := h.svc.Verify(ctx, req.ID, req.Token)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.JSON(map[string]any{"organization": org},
		handler.WithMessage("Organization verified successfully"))
}
