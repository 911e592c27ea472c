// Package organization manages the tenants of the platform as recorded in
// the control-plane database.
//
// An organization's subdomain is its tenant key. Registration creates a
// pending organization, provisions its tenant database and optionally
// creates its owner there. Deletion is soft: the record is kept with
// status "deleted", the tenant connection is closed and the subdomain
// becomes available again.
//
//	svc := organization.NewService(store, tenantdata.NewProvisioner(registry, binder),
//		organization.WithCache(cache),
//	)
//	r.Mount("/api/organizations", organization.NewHandler(svc, platformAuthz).Routes(admins.Protect()))
//
// Provider adapts the store to tenant.Provider for the tenant middleware.
package organization
