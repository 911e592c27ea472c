// Package admin authenticates platform administrators and serves the
// operations routes for tenant connections.
//
// Admin tokens are issued by the same jwt.Service as tenant tokens but
// carry no subdomain; Protect rejects tenant tokens and stores the admin
// as the rbac.Subject checked against the platform policy.
package admin
