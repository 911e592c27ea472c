package rbac_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/tenant"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func withPrincipal(t *testing.T, p *tenant.Principal) context.Context {
	t.Helper()
	ctx := tenant.WithContext(context.Background(), &tenant.Context[struct{}]{Key: "acme"})
	ctx, err := tenant.WithPrincipal(ctx, p)
	require.NoError(t, err)
	return ctx
}

func serve(h http.Handler, ctx context.Context) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	return rec.Code
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	mw := rbac.RequireRole([]string{rbac.RoleOwner, rbac.RoleAdmin})

	assert.Equal(t, http.StatusNoContent, serve(mw(ok), withPrincipal(t, &tenant.Principal{ID: "1", Role: rbac.RoleAdmin})))
	assert.Equal(t, http.StatusForbidden, serve(mw(ok), withPrincipal(t, &tenant.Principal{ID: "1", Role: rbac.RoleUser})))
	assert.Equal(t, http.StatusUnauthorized, serve(mw(ok), context.Background()))

	t.Run("platform subject", func(t *testing.T) {
		t.Parallel()
		mw := rbac.RequireRole([]string{rbac.RoleSuperAdmin})
		ctx := rbac.WithSubject(context.Background(), rbac.Subject{ID: "a1", Role: rbac.RoleSuperAdmin})
		assert.Equal(t, http.StatusNoContent, serve(mw(ok), ctx))
	})
}

func TestRequirePermission(t *testing.T) {
	t.Parallel()

	authz := rbac.MustAuthorizer(rbac.TenantPolicy())
	mw := rbac.RequirePermission(authz, rbac.PermManageUsers)

	assert.Equal(t, http.StatusNoContent, serve(mw(ok), withPrincipal(t, &tenant.Principal{Role: rbac.RoleOwner})))
	assert.Equal(t, http.StatusNoContent, serve(mw(ok), withPrincipal(t, &tenant.Principal{Role: rbac.RoleUser, Permissions: []string{rbac.PermManageUsers}})))
	assert.Equal(t, http.StatusForbidden, serve(mw(ok), withPrincipal(t, &tenant.Principal{Role: rbac.RoleModerator})))
	assert.Equal(t, http.StatusUnauthorized, serve(mw(ok), context.Background()))

	t.Run("custom extractor and error handler", func(t *testing.T) {
		t.Parallel()
		var got error
		mw := rbac.RequirePermission(authz, rbac.PermDelete,
			rbac.WithSubjectExtractor(func(context.Context) (rbac.Subject, bool) {
				return rbac.Subject{Role: rbac.RoleUser}, true
			}),
			rbac.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
				got = err
				w.WriteHeader(http.StatusTeapot)
			}),
		)
		assert.Equal(t, http.StatusTeapot, serve(mw(ok), context.Background()))
		assert.ErrorIs(t, got, rbac.ErrInsufficientPermissions)
	})
}

func TestDefaultSubject(t *testing.T) {
	t.Parallel()

	ctx := withPrincipal(t, &tenant.Principal{ID: "u1", Role: rbac.RoleUser})
	ctx = rbac.WithSubject(ctx, rbac.Subject{ID: "a1", Role: rbac.RoleSuperAdmin})

	s, found := rbac.DefaultSubject(ctx)
	require.True(t, found)
	assert.Equal(t, "u1", s.ID)

	_, found = rbac.DefaultSubject(context.Background())
	assert.False(t, found)
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()
	assert.Equal(t, http.StatusUnauthorized, rbac.HTTPStatus(rbac.ErrNoSubject))
	assert.Equal(t, http.StatusForbidden, rbac.HTTPStatus(rbac.ErrInsufficientPermissions))
	assert.Equal(t, http.StatusInternalServerError, rbac.HTTPStatus(assert.AnError))
}
