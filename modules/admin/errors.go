package admin

import "errors"

var (
	ErrAdminExists  = errors.New("admin already exists")
	ErrAdminGone    = errors.New("token admin no longer exists")
	ErrTenantToken  = errors.New("tenant token used for a platform route")
	ErrInvalidID    = errors.New("invalid admin id")
	ErrNotConnected = errors.New("tenant has no open connection")
)
