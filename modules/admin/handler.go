package admin

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/webix/udirdlaga/handler"
	"github.com/webix/udirdlaga/internal/httperr"
	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/binder"
	"github.com/webix/udirdlaga/pkg/jwt"
	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/validator"
)

var mappings = []httperr.Mapping{
	httperr.Map(ErrAdminGone, handler.ErrUnauthorized.WithMessage("Token is valid but admin no longer exists")),
	httperr.Map(ErrTenantToken, handler.ErrUnauthorized.WithMessage("Invalid token")),
	httperr.Map(ErrNotConnected, handler.ErrNotFound.WithMessage("Tenant has no open connection")),
}

// Handler serves /api/auth for platform admins.
type Handler struct {
	store    Store
	authn    *auth.Authenticator
	tokens   *jwt.Service
	denylist jwt.Denylist
	now      func() time.Time
	log      *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithDenylist enables token revocation on logout.
func WithDenylist(d jwt.Denylist) Option {
	return func(h *Handler) { h.denylist = d }
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler creates the admin auth handler.
func NewHandler(store Store, authn *auth.Authenticator, tokens *jwt.Service, opts ...Option) *Handler {
	h := &Handler{
		store:  store,
		authn:  authn,
		tokens: tokens,
		now:    time.Now,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes serves the endpoint index and login publicly and me/logout
// behind Protect.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", handler.Wrap(h.index))
	r.Post("/login", handler.Wrap(h.login,
		handler.WithBinders[handler.Context, loginRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, loginRequest](httperr.Handler(h.log, mappings...))))

	r.Group(func(r chi.Router) {
		r.Use(h.Protect())
		r.Get("/me", handler.Wrap(h.me))
		r.Post("/logout", handler.Wrap(h.logout,
			handler.WithErrorHandler[handler.Context, struct{}](httperr.Handler(h.log, mappings...))))
	})
	return r
}

// Protect verifies a platform token and loads its admin. The admin is
// stored with WithAdmin and its rbac.Subject with rbac.WithSubject.
func (h *Handler) Protect() func(http.Handler) http.Handler {
	fail := httperr.Writer(h.log, mappings...)
	verify := jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
		Service:      h.tokens,
		Denylist:     h.denylist,
		ErrorHandler: fail,
	})
	return func(next http.Handler) http.Handler {
		return verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			claims, ok := jwt.GetClaims(ctx)
			if !ok {
				fail(w, r, jwt.ErrMissingClaims)
				return
			}
			if claims.Subdomain != "" {
				fail(w, r, ErrTenantToken)
				return
			}
			a, err := h.store.FindByID(ctx, claims.UserID)
			if err != nil {
				fail(w, r, err)
				return
			}
			if a == nil {
				fail(w, r, ErrAdminGone)
				return
			}
			if a.IsLocked(h.now()) {
				fail(w, r, auth.ErrAccountLocked)
				return
			}
			if !a.IsActive {
				fail(w, r, auth.ErrAccountInactive)
				return
			}
			ctx = rbac.WithSubject(WithAdmin(ctx, a), a.Subject())
			next.ServeHTTP(w, r.WithContext(ctx))
		}))
	}
}

func (h *Handler) index(handler.Context, struct{}) handler.Response {
	return handler.JSON(map[string]any{
		"endpoints": map[string]string{
			"login":  "POST /api/auth/login",
			"me":     "GET /api/auth/me (protected)",
			"logout": "POST /api/auth/logout (protected)",
		},
	}, handler.WithMessage("Authentication endpoints"))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Admin *Admin `json:"admin"`
	Token string `json:"token"`
}

func (h *Handler) login(ctx handler.Context, req loginRequest) handler.Response {
	if err := validator.Apply(
		validator.Required("username", req.Username),
		validator.Required("password", req.Password),
	); err != nil {
		return handler.JSONError(err)
	}

	account, err := h.authn.Authenticate(ctx, Accounts(h.store), req.Username, req.Password)
	if err != nil {
		return httperr.Response(err)
	}
	a, err := h.store.FindByID(ctx, account.ID)
	if err != nil {
		return httperr.Response(err)
	}
	if a == nil {
		return httperr.Response(ErrAdminGone, mappings...)
	}

	token, _, err := h.tokens.Issue(account.ID, "")
	if err != nil {
		return httperr.Response(err)
	}
	h.log.InfoContext(ctx, "admin logged in",
		logger.Event("login"),
		logger.UserID(account.ID),
		logger.Role(a.Role),
	)
	return handler.JSON(loginResponse{Admin: a, Token: token}, handler.WithMessage("Login successful"))
}

func (h *Handler) me(ctx handler.Context, _ struct{}) handler.Response {
	a, ok := FromContext(ctx)
	if !ok {
		return httperr.Response(jwt.ErrMissingClaims)
	}
	return handler.JSON(map[string]any{"admin": a})
}

func (h *Handler) logout(ctx handler.Context, _ struct{}) handler.Response {
	claims, ok := jwt.GetClaims(ctx)
	if !ok {
		return httperr.Response(jwt.ErrMissingClaims)
	}
	if h.denylist != nil && claims.ExpiresAt != nil {
		if err := h.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return httperr.Response(err)
		}
	}
	h.log.InfoContext(ctx, "admin logged out", logger.Event("logout"), logger.UserID(claims.UserID))
	return handler.JSON(nil, handler.WithMessage("Logged out successfully"))
}
