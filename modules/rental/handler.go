package rental

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/webix/udirdlaga/handler"
	"github.com/webix/udirdlaga/internal/httperr"
	"github.com/webix/udirdlaga/pkg/binder"
	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/tenant"
	"github.com/webix/udirdlaga/pkg/validator"
)

// Policy holds the rental settings of an organization.
type Policy struct {
	MaxPeriodDays int     `env:"RENTAL_MAX_DAYS" envDefault:"30"`
	LateFeePerDay float64 `env:"RENTAL_LATE_FEE_PER_DAY" envDefault:"0"`
	GraceDays     int     `env:"RENTAL_GRACE_DAYS" envDefault:"3"`
}

// DefaultPolicy matches the organization defaults.
func DefaultPolicy() Policy {
	return Policy{MaxPeriodDays: 30, GraceDays: 3}
}

// StoreFunc returns the rental store of the request's tenant.
type StoreFunc func(ctx context.Context) (Store, error)

// View is a rental with its derived state at response time.
type View struct {
	Rental
	DaysRemaining int  `json:"daysRemaining"`
	IsOverdue     bool `json:"isOverdue"`
}

// Handler serves the rental routes of a tenant.
type Handler struct {
	stores StoreFunc
	authz  *rbac.Authorizer
	policy Policy
	now    func() time.Time
	log    *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

func WithPolicy(p Policy) HandlerOption {
	return func(h *Handler) {
		if p.MaxPeriodDays > 0 {
			h.policy = p
		}
	}
}

func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler creates the rental handler. authz checks the tenant policy.
func NewHandler(stores StoreFunc, authz *rbac.Authorizer, opts ...HandlerOption) *Handler {
	h := &Handler{
		stores: stores,
		authz:  authz,
		policy: DefaultPolicy(),
		now:    time.Now,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var mappings = []httperr.Mapping{
	httperr.Map(ErrNotFound, handler.ErrNotFound.WithMessage("Rental not found")),
	httperr.Map(ErrNotActive, handler.ErrConflict.WithMessage("Rental is not active")),
	httperr.Map(ErrInvalidID, handler.ErrBadRequest.WithMessage("Invalid id")),
}

// Routes mounts the handlers. Callers must authenticate the tenant user
// before these routes.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	deny := rbac.WithErrorHandler(httperr.Writer(h.log))

	r.With(rbac.RequirePermission(h.authz, rbac.PermRead, deny)).Get("/", handler.Wrap(h.mine,
		handler.WithErrorHandler[handler.Context, struct{}](httperr.Handler(h.log))))
	r.With(rbac.RequirePermission(h.authz, rbac.PermRead, deny)).Post("/", handler.Wrap(h.create,
		handler.WithBinders[handler.Context, createRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, createRequest](httperr.Handler(h.log))))

	r.Group(func(r chi.Router) {
		r.Use(rbac.RequirePermission(h.authz, rbac.PermManageContent, deny))
		r.Get("/overdue", handler.Wrap(h.overdue,
			handler.WithErrorHandler[handler.Context, struct{}](httperr.Handler(h.log))))
		r.Get("/webtoon/{webtoonID}", handler.Wrap(h.byWebtoon,
			handler.WithBinders[handler.Context, webtoonRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, webtoonRequest](httperr.Handler(h.log))))
	})

	r.With(rbac.RequirePermission(h.authz, rbac.PermRead, deny)).Post("/{id}/return", handler.Wrap(h.markReturned,
		handler.WithBinders[handler.Context, idRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, idRequest](httperr.Handler(h.log))))

	return r
}

func (h *Handler) view(r Rental, now time.Time) View {
	return View{Rental: r, DaysRemaining: r.DaysRemaining(now), IsOverdue: r.IsOverdue(now)}
}

func (h *Handler) views(rentals []Rental) []View {
	now := h.now()
	out := make([]View, 0, len(rentals))
	for _, r := range rentals {
		out = append(out, h.view(r, now))
	}
	return out
}

func (h *Handler) mine(ctx handler.Context, _ struct{}) handler.Response {
	p, ok := tenant.PrincipalFromContext(ctx)
	if !ok {
		return httperr.Response(rbac.ErrNoSubject)
	}
	store, err := h.stores(ctx)
	if err != nil {
		return httperr.Response(err)
	}
	rentals, err := store.ActiveByUser(ctx, p.ID)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.JSON(map[string]any{"rentals": h.views(rentals)})
}

type createRequest struct {
	Webtoon       string        `json:"webtoon"`
	Chapters      []int         `json:"chapters"`
	PeriodDays    int           `json:"rentalPeriod"`
	TotalCost     float64       `json:"totalCost"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Notes         string        `json:"notes"`
}

func (h *Handler) create(ctx handler.Context, req createRequest) handler.Response {
	p, ok := tenant.PrincipalFromContext(ctx)
	if !ok {
		return httperr.Response(rbac.ErrNoSubject)
	}
	userID, err := bson.ObjectIDFromHex(p.ID)
	if err != nil {
		return httperr.Response(ErrInvalidID, mappings...)
	}
	if err := validator.Apply(validator.ValidObjectID("webtoon", req.Webtoon)); err != nil {
		return handler.JSONError(err)
	}
	webtoonID, _ := bson.ObjectIDFromHex(req.Webtoon)

	now := h.now()
	rental := New(userID, webtoonID, now, req.PeriodDays, req.TotalCost)
	if req.PaymentMethod != "" {
		rental.PaymentMethod = req.PaymentMethod
	}
	rental.Notes = req.Notes
	for _, n := range req.Chapters {
		rental.Chapters = append(rental.Chapters, Chapter{Number: n, RentedAt: rental.StartDate})
	}
	if err := rental.Validate(h.policy.MaxPeriodDays); err != nil {
		return handler.JSONError(err)
	}

	store, err := h.stores(ctx)
	if err != nil {
		return httperr.Response(err)
	}
	if err := store.Create(ctx, rental); err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.Created(map[string]any{"rental": h.view(*rental, now)}, "Rental created successfully")
}

func (h *Handler) overdue(ctx handler.Context, _ struct{}) handler.Response {
	store, err := h.stores(ctx)
	if err != nil {
		return httperr.Response(err)
	}
	now := h.now()
	rentals, err := store.Expired(ctx, now)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	for i := range rentals {
		rentals[i].ApplyLateFee(now, h.policy.LateFeePerDay, h.policy.GraceDays)
	}
	return handler.JSON(map[string]any{"rentals": h.views(rentals)})
}

type webtoonRequest struct {
	WebtoonID string `path:"webtoonID"`
}

func (h *Handler) byWebtoon(ctx handler.Context, req webtoonRequest) handler.Response {
	store, err := h.stores(ctx)
	if err != nil {
		return httperr.Response(err)
	}
	rentals, err := store.ByWebtoon(ctx, req.WebtoonID)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	return handler.JSON(map[string]any{"rentals": h.views(rentals)})
}

type idRequest struct {
	ID string `path:"id"`
}

// markReturned closes a rental of the caller, or of anyone for content
// managers, charging the late fee first.
func (h *Handler) markReturned(ctx handler.Context, req idRequest) handler.Response {
	p, ok := tenant.PrincipalFromContext(ctx)
	if !ok {
		return httperr.Response(rbac.ErrNoSubject)
	}
	store, err := h.stores(ctx)
	if err != nil {
		return httperr.Response(err)
	}
	rental, err := store.FindByID(ctx, req.ID)
	if err != nil {
		return httperr.Response(err, mappings...)
	}
	if rental.User.Hex() != p.ID {
		subject := rbac.Subject{ID: p.ID, Role: p.Role, Permissions: p.Permissions}
		if err := h.authz.Allowed(subject, rbac.PermManageContent); err != nil {
			return httperr.Response(err)
		}
	}

	now := h.now()
	rental.ApplyLateFee(now, h.policy.LateFeePerDay, h.policy.GraceDays)
	if err := rental.MarkReturned(now); err != nil {
		return httperr.Response(err, mappings...)
	}
	if err := store.Update(ctx, rental); err != nil {
		return httperr.Response(err, mappings...)
	}
	h.log.InfoContext(ctx, "rental returned",
		slog.String("rental_id", rental.ID.Hex()),
		slog.Float64("late_fee", rental.LateFee),
	)
	return handler.JSON(map[string]any{"rental": h.view(*rental, now)}, handler.WithMessage("Rental returned successfully"))
}
