package organization

import "errors"

var (
	ErrNotFound             = errors.New("organization not found")
	ErrSubdomainTaken       = errors.New("subdomain is already taken")
	ErrRegistrationExists   = errors.New("registration number already exists")
	ErrInvalidID            = errors.New("invalid organization id")
	ErrVerificationExpired  = errors.New("verification token expired")
	ErrVerificationMismatch = errors.New("verification token does not match")
)
