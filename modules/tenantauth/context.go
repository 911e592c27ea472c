package tenantauth

import (
	"context"

	"github.com/webix/udirdlaga/modules/user"
)

type userCtxKey struct{}

// WithUser stores the authenticated tenant user in ctx.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the user stored by the Authenticate middleware.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*user.User)
	return u, ok && u != nil
}
