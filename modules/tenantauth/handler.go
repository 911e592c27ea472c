package tenantauth

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/webix/udirdlaga/handler"
	"github.com/webix/udirdlaga/internal/httperr"
	"github.com/webix/udirdlaga/modules/tenantdata"
	"github.com/webix/udirdlaga/modules/user"
	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/binder"
	"github.com/webix/udirdlaga/pkg/jwt"
	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/tenant"
	"github.com/webix/udirdlaga/pkg/validator"
)

var mappings = []httperr.Mapping{
	httperr.Map(ErrTenantMismatch, handler.ErrUnauthorized.WithMessage("Invalid token for this organization")),
	httperr.Map(ErrUserGone, handler.ErrUnauthorized.WithMessage("Token is valid but user no longer exists")),
}

// Handler authenticates the users of a tenant.
type Handler struct {
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

// NewHandler creates the tenant auth handler.
func NewHandler(authn *auth.Authenticator, tokens *jwt.Service, opts ...Option) *Handler {
	h := &Handler{
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

// Routes serves login publicly and me/logout behind Protect. It expects
// the tenant middleware to run first.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/login", handler.Wrap(h.login,
		handler.WithBinders[handler.Context, loginRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, loginRequest](httperr.Handler(h.log))))

	r.Group(func(r chi.Router) {
		r.Use(h.Protect())
		r.Get("/me", handler.Wrap(h.me))
		r.Post("/logout", handler.Wrap(h.logout))
	})
	return r
}

// Protect verifies the bearer token and then runs Authenticate.
func (h *Handler) Protect() func(http.Handler) http.Handler {
	verify := jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
		Service:      h.tokens,
		Denylist:     h.denylist,
		ErrorHandler: httperr.Writer(h.log, mappings...),
	})
	return func(next http.Handler) http.Handler {
		return verify(h.Authenticate(next))
	}
}

// Authenticate loads the user named by verified claims from the tenant
// database and attaches it as the tenant principal. The token must have
// been issued for the request's tenant.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	fail := httperr.Writer(h.log, mappings...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := jwt.GetClaims(ctx)
		if !ok {
			fail(w, r, jwt.ErrMissingClaims)
			return
		}
		key, ok := tenant.KeyFromContext(ctx)
		if !ok {
			fail(w, r, tenant.ErrNoTenantInContext)
			return
		}
		if claims.Subdomain == "" || claims.Subdomain != key {
			fail(w, r, ErrTenantMismatch)
			return
		}

		users, err := tenantdata.Users(ctx)
		if err != nil {
			fail(w, r, err)
			return
		}
		u, err := users.FindByID(ctx, claims.UserID)
		if err != nil {
			fail(w, r, err)
			return
		}
		if u == nil {
			fail(w, r, ErrUserGone)
			return
		}
		if u.IsLocked(h.now()) {
			fail(w, r, auth.ErrAccountLocked)
			return
		}
		if !u.IsActive() {
			fail(w, r, auth.ErrAccountInactive)
			return
		}

		ctx, err = tenant.WithPrincipal(ctx, &tenant.Principal{
			ID:          u.ID.Hex(),
			Username:    u.Username,
			Role:        u.Role,
			Permissions: u.Permissions,
		})
		if err != nil {
			fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(ctx, u)))
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      *user.User `json:"user"`
	Token     string     `json:"token"`
	Subdomain string     `json:"subdomain"`
}

func (h *Handler) login(ctx handler.Context, req loginRequest) handler.Response {
	if err := validator.Apply(
		validator.Required("username", req.Username),
		validator.Required("password", req.Password),
	); err != nil {
		return handler.JSONError(err)
	}

	tc, ok := tenant.FromContext[tenantdata.Models](ctx)
	if !ok {
		return httperr.Response(tenant.ErrNoTenantInContext)
	}
	users := tc.Models.Users

	account, err := h.authn.Authenticate(ctx, user.Accounts(users), req.Username, req.Password)
	if err != nil {
		return httperr.Response(err)
	}
	u, err := users.FindByID(ctx, account.ID)
	if err != nil {
		return httperr.Response(err)
	}
	if u == nil {
		return httperr.Response(ErrUserGone, mappings...)
	}

	token, _, err := h.tokens.Issue(account.ID, tc.Key)
	if err != nil {
		return httperr.Response(err)
	}
	h.log.InfoContext(ctx, "tenant user logged in",
		logger.Event("login"),
		logger.TenantKey(tc.Key),
		logger.UserID(account.ID),
	)
	return handler.JSON(loginResponse{User: u, Token: token, Subdomain: tc.Key},
		handler.WithMessage("Login successful"))
}

func (h *Handler) me(ctx handler.Context, _ struct{}) handler.Response {
	u, ok := UserFromContext(ctx)
	if !ok {
		return httperr.Response(jwt.ErrMissingClaims)
	}
	return handler.JSON(map[string]any{"user": u})
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
	h.log.InfoContext(ctx, "tenant user logged out",
		logger.Event("logout"),
		logger.TenantKey(claims.Subdomain),
		logger.UserID(claims.UserID),
	)
	return handler.JSON(nil, handler.WithMessage("Logged out successfully"))
}
