package rbac

import "errors"

var (
	// ErrInvalidRole is returned when a role does not exist.
	ErrInvalidRole = errors.New("rbac.invalid_role")

	// ErrInsufficientPermissions is returned when required permissions are not granted.
	ErrInsufficientPermissions = errors.New("rbac.insufficient_permissions")

	// ErrNoSubject is returned when no authenticated subject is in the context.
	ErrNoSubject = errors.New("rbac.no_subject")

	// ErrCircularInheritance is returned when roles have circular inheritance.
	ErrCircularInheritance = errors.New("rbac.circular_inheritance")

	// ErrInvalidPolicy is returned when a policy document cannot be decoded.
	ErrInvalidPolicy = errors.New("rbac.invalid_policy")
)
