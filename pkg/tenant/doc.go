// Package tenant identifies the tenant of an HTTP request and carries it
// through the request's lifetime.
//
// # Resolution
//
// NewDefaultResolver looks for the raw key in four places, in priority
// order:
//
//  1. the path segment after "/api/tenant/" (e.g. /api/tenant/acme/auth/login)
//  2. the "subdomain" query parameter
//  3. the "X-Tenant-Subdomain" header
//  4. the "subdomain" field of a JSON body
//
// The default resolver is strict: when two sources carry different keys
// the request is rejected with ErrTenantKeyConflict instead of silently
// preferring one. Resolvers never normalize; Middleware runs
// tenantdb.ParseKey on the result.
//
// # Middleware
//
// Middleware drives each request through resolve, normalize, optional
// organization check (WithProvider), connection ensure and model binding,
// then attaches a *Context[M]:
//
//	mw := tenant.Middleware(tenant.NewDefaultResolver(), registry, binder,
//		tenant.WithProvider(orgs),
//		tenant.WithErrorHandler(writeError),
//	)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		tc := tenant.MustFromContext[Models](r.Context())
//		user, err := tc.Models.Users.FindByUsername(r.Context(), "jane")
//	}
//
// A failure at any step ends the request; handlers never observe a partial
// context. Authentication later adds the principal with WithPrincipal,
// which copies the context rather than mutating it.
//
// # Errors
//
// HTTPStatus maps ErrTenantKeyMissing, ErrTenantKeyConflict and
// tenantdb.ErrInvalidTenantKey to 400, ErrTenantNotFound to 404,
// ErrInactiveTenant to 403 and everything else, including
// tenantdb.ErrConnection, to 500.
package tenant
