package auth

import "errors"

// Credential errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is temporarily locked due to too many failed login attempts")
	ErrAccountInactive    = errors.New("account is not active")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Password-specific errors
var (
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooLong  = errors.New("password is too long")
)
