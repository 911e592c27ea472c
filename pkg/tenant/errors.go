package tenant

import (
	"errors"
	"net/http"

	"github.com/webix/udirdlaga/pkg/tenantdb"
)

var (
	// ErrTenantKeyMissing is returned when no request source carries a key.
	ErrTenantKeyMissing = errors.New("tenant key is required")

	// ErrTenantKeyConflict is returned when two request sources carry
	// different keys.
	ErrTenantKeyConflict = errors.New("tenant key sources disagree")

	// ErrTenantNotFound is returned when no organization owns the key.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInactiveTenant is returned for suspended, inactive or deleted
	// organizations.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrNoTenantInContext is returned when a handler requires a tenant
	// context that was never attached.
	ErrNoTenantInContext = errors.New("no tenant in context")
)

// HTTPStatus maps resolution errors to response status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrTenantKeyMissing),
		errors.Is(err, ErrTenantKeyConflict),
		errors.Is(err, tenantdb.ErrInvalidTenantKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInactiveTenant):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
