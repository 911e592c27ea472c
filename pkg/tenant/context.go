package tenant

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// Principal is the authenticated tenant user of a request.
type Principal struct {
	ID          string
	Username    string
	Role        string
	Permissions []string
}

// Context is the request-scoped view of a tenant: its key, the database
// backing it, the bound models and, once authenticated, the principal.
// It is built per request and never shared between requests.
type Context[M any] struct {
	Key          string
	Database     string
	Generation   uint64
	Models       M
	Organization *Info
	Principal    *Principal
}

func (c *Context[M]) tenantKey() string     { return c.Key }
func (c *Context[M]) principal() *Principal { return c.Principal }
func (c *Context[M]) organization() *Info   { return c.Organization }
func (c *Context[M]) withPrincipal(p *Principal) any {
	cp := *c
	cp.Principal = p
	return &cp
}

// scoped is implemented by every *Context[M], so callers that do not know
// the model type can still read the key and principal.
type scoped interface {
	tenantKey() string
	principal() *Principal
	organization() *Info
	withPrincipal(p *Principal) any
}

// WithContext attaches tc to ctx.
func WithContext[M any](ctx context.Context, tc *Context[M]) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext returns the tenant context attached by Middleware.
func FromContext[M any](ctx context.Context) (*Context[M], bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context[M])
	return tc, ok && tc != nil
}

// MustFromContext is FromContext for handlers mounted behind Middleware.
// It panics when the context carries no tenant.
func MustFromContext[M any](ctx context.Context) *Context[M] {
	tc, ok := FromContext[M](ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return tc
}

// KeyFromContext returns the tenant key without knowing the model type.
func KeyFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(contextKey{}).(scoped)
	if !ok {
		return "", false
	}
	return s.tenantKey(), true
}

// OrganizationFromContext returns the organization resolved for the
// request, if a Provider was configured.
func OrganizationFromContext(ctx context.Context) (*Info, bool) {
	s, ok := ctx.Value(contextKey{}).(scoped)
	if !ok || s.organization() == nil {
		return nil, false
	}
	return s.organization(), true
}

// WithPrincipal returns a context whose tenant context carries p. The
// existing tenant context is copied, not modified. It returns
// ErrNoTenantInContext if ctx has no tenant context.
func WithPrincipal(ctx context.Context, p *Principal) (context.Context, error) {
	s, ok := ctx.Value(contextKey{}).(scoped)
	if !ok {
		return ctx, ErrNoTenantInContext
	}
	return context.WithValue(ctx, contextKey{}, s.withPrincipal(p)), nil
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	s, ok := ctx.Value(contextKey{}).(scoped)
	if !ok || s.principal() == nil {
		return nil, false
	}
	return s.principal(), true
}

// LoggerExtractor adds the tenant key to log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if key, ok := KeyFromContext(ctx); ok {
			return slog.String("tenant", key), true
		}
		return slog.Attr{}, false
	}
}
