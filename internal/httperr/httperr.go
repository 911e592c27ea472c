// Package httperr maps domain sentinel errors onto handler.HTTPError so
// every layer of the API answers with the same JSON envelope.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/webix/udirdlaga/handler"
	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/jwt"
	"github.com/webix/udirdlaga/pkg/ratelimiter"
	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/tenant"
	"github.com/webix/udirdlaga/pkg/tenantdb"
)

// Mapping pairs a sentinel with the response it should produce.
type Mapping struct {
	Target error
	Err    handler.HTTPError
}

// Map is a shorthand for building a Mapping.
func Map(target error, err handler.HTTPError) Mapping {
	return Mapping{Target: target, Err: err}
}

var defaults = []Mapping{
	Map(tenant.ErrTenantKeyMissing, handler.ErrBadRequest.WithMessage("Organization subdomain is required")),
	Map(tenant.ErrTenantKeyConflict, handler.ErrBadRequest.WithMessage("Conflicting organization subdomains in request")),
	Map(tenantdb.ErrInvalidTenantKey, handler.ErrBadRequest.WithMessage("Invalid organization subdomain")),
	Map(tenant.ErrTenantNotFound, handler.ErrNotFound.WithMessage("Organization not found")),
	Map(tenant.ErrInactiveTenant, handler.ErrForbidden.WithMessage("Organization is not active")),
	Map(tenant.ErrNoTenantInContext, handler.ErrBadRequest.WithMessage("Organization context is required")),
	Map(tenantdb.ErrConnection, handler.ErrServiceUnavailable.WithMessage("Organization database is unavailable")),
	Map(tenantdb.ErrNoConnection, handler.ErrServiceUnavailable.WithMessage("Organization database is unavailable")),
	Map(tenantdb.ErrNoDefaultConnection, handler.ErrServiceUnavailable),
	Map(tenantdb.ErrRegistryClosed, handler.ErrServiceUnavailable),

	Map(jwt.ErrMissingToken, handler.ErrUnauthorized.WithMessage("Authentication required")),
	Map(jwt.ErrExpiredToken, handler.ErrUnauthorized.WithMessage("Token has expired")),
	Map(jwt.ErrRevokedToken, handler.ErrUnauthorized.WithMessage("Token has been revoked")),
	Map(jwt.ErrInvalidToken, handler.ErrUnauthorized.WithMessage("Invalid token")),
	Map(jwt.ErrInvalidSignature, handler.ErrUnauthorized.WithMessage("Invalid token")),
	Map(jwt.ErrInvalidClaims, handler.ErrUnauthorized.WithMessage("Invalid token")),
	Map(jwt.ErrMissingClaims, handler.ErrUnauthorized.WithMessage("Authentication required")),

	Map(auth.ErrInvalidCredentials, handler.ErrUnauthorized.WithMessage("Invalid credentials")),
	Map(auth.ErrAccountInactive, handler.ErrUnauthorized.WithMessage("Account is inactive")),
	Map(auth.ErrAccountLocked, handler.ErrLocked.WithMessage("Account is temporarily locked due to too many failed login attempts")),
	Map(auth.ErrUnauthorized, handler.ErrUnauthorized),

	Map(rbac.ErrNoSubject, handler.ErrUnauthorized.WithMessage("Authentication required")),
	Map(rbac.ErrInsufficientPermissions, handler.ErrForbidden.WithMessage("Insufficient permissions")),
	Map(rbac.ErrInvalidRole, handler.ErrForbidden.WithMessage("Insufficient permissions")),

	Map(ratelimiter.ErrRateLimited, handler.ErrTooManyRequests.WithMessage("Too many requests")),
}

// From joins the matching HTTPError onto err. Extra mappings are checked
// before the defaults. Errors that already carry an HTTPError, or match
// nothing, are returned unchanged.
func From(err error, extra ...Mapping) error {
	if err == nil {
		return nil
	}
	var httpErr handler.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}
	for _, m := range extra {
		if errors.Is(err, m.Target) {
			return errors.Join(m.Err, err)
		}
	}
	for _, m := range defaults {
		if errors.Is(err, m.Target) {
			return errors.Join(m.Err, err)
		}
	}
	return err
}

// Response renders err as a JSON error after mapping it.
func Response(err error, extra ...Mapping) handler.Response {
	return handler.JSONError(From(err, extra...))
}

// Writer returns a middleware error callback that renders mapped errors
// through handler.WriteError.
func Writer(log *slog.Logger, extra ...Mapping) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		handler.WriteError(log, w, r, From(err, extra...))
	}
}

// Handler is the handler.Wrap error handler for mapped errors.
func Handler(log *slog.Logger, extra ...Mapping) handler.ErrorHandler[handler.Context] {
	next := handler.NewErrorHandler(log)
	return func(ctx handler.Context, err error) {
		next(ctx, From(err, extra...))
	}
}
