package tenantdb

import "errors"

var (
	// ErrInvalidTenantKey is returned when a raw key fails normalization.
	ErrInvalidTenantKey = errors.New("invalid tenant key format")

	// ErrConnection is returned when a tenant or control-plane database
	// cannot be opened. The registry keeps no entry for the failed key.
	ErrConnection = errors.New("tenant database connection failed")

	// ErrNoConnection is returned by the binder when models are requested
	// for a key that has no live connection.
	ErrNoConnection = errors.New("no tenant database connection")

	// ErrRegistryClosed is returned by an open that completed after
	// CloseAll. Its handle has already been closed.
	ErrRegistryClosed = errors.New("tenant registry closed")

	// ErrNoDefaultConnection is returned when the control-plane connection
	// is requested before EnsureDefault succeeded.
	ErrNoDefaultConnection = errors.New("control-plane connection not established")
)
