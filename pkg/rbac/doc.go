// Package rbac provides role-based access control with role inheritance.
//
// Two policies are embedded as YAML: TenantPolicy for users inside a
// tenant database (user < moderator < admin < owner) and PlatformPolicy
// for control-plane administrators (admin < super_admin). Custom policies
// can be loaded with NewYAMLRoleSource or NewInMemRoleSource.
//
//	authz := rbac.MustAuthorizer(rbac.TenantPolicy())
//	err := authz.Can(rbac.RoleModerator, rbac.PermManageContent) // nil
//
// RequireRole and RequirePermission guard routes. By default the subject
// is the tenant principal attached by the tenant auth middleware; platform
// admin routes store a Subject with WithSubject instead.
//
//	r.With(rbac.RequirePermission(authz, rbac.PermManageUsers)).Post("/users", create)
//	r.With(rbac.RequireRole([]string{rbac.RoleSuperAdmin})).Delete("/connection", closeConn)
//
// Missing subjects map to 401, denials to 403 (see HTTPStatus).
package rbac
