package organization

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/webix/udirdlaga/modules/user"
	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/tenant"
	"github.com/webix/udirdlaga/pkg/tenantdb"
	"github.com/webix/udirdlaga/pkg/token"
)

// Tenants opens and closes tenant databases.
type Tenants interface {
	// Provision opens the database of key and returns its user store.
	Provision(ctx context.Context, key string) (user.Store, error)
	Release(ctx context.Context, key string) error
}

// Service implements the organization operations of the control plane.
type Service struct {
	store   Store
	tenants Tenants
	hasher  *auth.Hasher
	cache   tenant.Cache
	now     func() time.Time
	log     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache sets the tenant lookup cache to invalidate on changes.
func WithCache(c tenant.Cache) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithHasher(h *auth.Hasher) ServiceOption {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates the organization service.
func NewService(store Store, tenants Tenants, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		tenants: tenants,
		hasher:  auth.NewHasher(auth.DefaultCost),
		cache:   tenant.NewNoOpCache(),
		now:     time.Now,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a pending organization and provisions its tenant
// database. When in carries an owner, the owner is created as an active
// user of the new tenant and recorded as its first admin.
func (s *Service) Register(ctx context.Context, in RegisterInput, createdBy string) (*Organization, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	available, err := s.store.SubdomainAvailable(ctx, in.Subdomain)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrSubdomainTaken
	}
	exists, err := s.store.RegistrationExists(ctx, in.RegistrationNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrRegistrationExists
	}

	var owner *user.User
	if in.Owner != nil {
		hash, err := s.hasher.Hash(in.Owner.Password)
		if err != nil {
			return nil, err
		}
		owner = in.Owner.User()
		owner.PasswordHash = hash
	}

	code, err := token.Random(token.DefaultSize)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	expires := now.Add(VerificationTTL)

	org := in.Organization(now)
	org.VerificationToken = code
	org.VerificationExpires = &expires
	org.CreatedBy = createdBy

	// The tenant database is ready before the subdomain is claimed, so a
	// failed open leaves nothing behind.
	users, err := s.tenants.Provision(ctx, org.Subdomain)
	if err != nil {
		return nil, fmt.Errorf("provision tenant %s: %w", org.Subdomain, err)
	}
	if err := s.store.Create(ctx, org); err != nil {
		return nil, err
	}
	if owner != nil {
		if err := s.addOwner(ctx, users, org, owner, now); err != nil {
			if rerr := s.store.Remove(ctx, org.ID.Hex()); rerr != nil {
				s.log.ErrorContext(ctx, "failed to remove half-registered organization",
					logger.TenantKey(org.Subdomain), logger.Error(rerr))
			}
			return nil, err
		}
	}

	s.log.InfoContext(ctx, "organization registered",
		logger.TenantKey(org.Subdomain),
		slog.String("organization_id", org.ID.Hex()),
		slog.Bool("with_owner", owner != nil),
	)
	return org, nil
}

func (s *Service) addOwner(ctx context.Context, users user.Store, org *Organization, owner *user.User, now time.Time) error {
	if err := users.Create(ctx, owner); err != nil {
		return fmt.Errorf("create owner of %s: %w", org.Subdomain, err)
	}
	org.AddAdmin(owner.ID, owner.Role, owner.Permissions, now)
	return s.store.Update(ctx, org)
}

// List returns one page of organizations.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Organization, Pagination, error) {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, Pagination{}, err
	}
	orgs, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, Pagination{}, err
	}
	return orgs, NewPagination(q, total), nil
}

// Get returns an organization by id, including deleted ones.
func (s *Service) Get(ctx context.Context, id string) (*Organization, error) {
	return s.store.FindByID(ctx, id)
}

// GetBySubdomain returns the active or pending organization of raw.
func (s *Service) GetBySubdomain(ctx context.Context, raw string) (*Organization, error) {
	key, err := tenantdb.ParseKey(raw)
	if err != nil {
		return nil, err
	}
	return s.store.FindBySubdomain(ctx, key, StatusActive, StatusPending)
}

// CheckSubdomain reports whether raw may be registered. The normalized
// key is returned alongside.
func (s *Service) CheckSubdomain(ctx context.Context, raw string) (string, bool, error) {
	key, err := tenantdb.ParseKey(raw)
	if err != nil {
		return "", false, err
	}
	available, err := s.store.SubdomainAvailable(ctx, key)
	if err != nil {
		return "", false, err
	}
	return key, available, nil
}

// Update applies in to the organization id.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Organization, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	org, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(org)
	if err := s.store.Update(ctx, org); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, org.Subdomain)
	return org, nil
}

// Delete marks the organization deleted and closes its tenant
// connection. Tenant data is kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	org, err := s.live(ctx, id)
	if err != nil {
		return err
	}
	org.Status = StatusDeleted
	if err := s.store.Update(ctx, org); err != nil {
		return err
	}
	s.cache.Delete(ctx, org.Subdomain)

	if err := s.tenants.Release(ctx, org.Subdomain); err != nil {
		// The record is already deleted; a dangling connection is closed
		// at shutdown.
		s.log.WarnContext(ctx, "close tenant connection after delete",
			logger.TenantKey(org.Subdomain),
			logger.Error(err),
		)
	}
	s.log.InfoContext(ctx, "organization deleted",
		logger.TenantKey(org.Subdomain),
		slog.String("organization_id", org.ID.Hex()),
	)
	return nil
}

// Verify activates the organization. A non-empty code must match the
// pending verification token before it expires.
func (s *Service) Verify(ctx context.Context, id, code string) (*Organization, error) {
	org, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if code != "" {
		if org.VerificationToken == "" || !token.Equal(code, org.VerificationToken) {
			return nil, ErrVerificationMismatch
		}
		if org.VerificationExpires != nil && now.After(*org.VerificationExpires) {
			return nil, ErrVerificationExpired
		}
	}
	org.Verify(now)
	if err := s.store.Update(ctx, org); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, org.Subdomain)
	return org, nil
}

func (s *Service) live(ctx context.Context, id string) (*Organization, error) {
	org, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org.Status == StatusDeleted {
		return nil, ErrNotFound
	}
	return org, nil
}

// Provider resolves tenant keys against the organizations store.
type Provider struct {
	store Store
}

// NewProvider returns the tenant.Provider of the control plane.
func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// GetByKey returns tenant.ErrTenantNotFound for unknown and deleted
// organizations.
func (p *Provider) GetByKey(ctx context.Context, key string) (*tenant.Info, error) {
	org, err := p.store.FindBySubdomain(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, tenant.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	if org.Status == StatusDeleted {
		return nil, tenant.ErrTenantNotFound
	}
	return org.Info(), nil
}
