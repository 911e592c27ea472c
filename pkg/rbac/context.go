package rbac

import (
	"context"

	"github.com/webix/udirdlaga/pkg/tenant"
)

type subjectCtxKey struct{}

// WithSubject stores s in ctx.
func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, subjectCtxKey{}, s)
}

// SubjectFromContext returns the subject stored by WithSubject.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectCtxKey{}).(Subject)
	return s, ok
}

// SubjectExtractor finds the subject of a request.
type SubjectExtractor func(ctx context.Context) (Subject, bool)

// TenantSubject reads the principal of the tenant context.
func TenantSubject(ctx context.Context) (Subject, bool) {
	p, ok := tenant.PrincipalFromContext(ctx)
	if !ok {
		return Subject{}, false
	}
	return Subject{ID: p.ID, Role: p.Role, Permissions: p.Permissions}, true
}

// DefaultSubject prefers the tenant principal and falls back to a subject
// stored with WithSubject.
func DefaultSubject(ctx context.Context) (Subject, bool) {
	if s, ok := TenantSubject(ctx); ok {
		return s, true
	}
	return SubjectFromContext(ctx)
}
