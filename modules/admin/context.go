package admin

import "context"

type adminCtxKey struct{}

// WithAdmin stores the authenticated admin in ctx.
func WithAdmin(ctx context.Context, a *Admin) context.Context {
	return context.WithValue(ctx, adminCtxKey{}, a)
}

// FromContext returns the admin stored by the Authenticate middleware.
func FromContext(ctx context.Context) (*Admin, bool) {
	a, ok := ctx.Value(adminCtxKey{}).(*Admin)
	return a, ok && a != nil
}
