package tenantauth

import "errors"

var (
	ErrTenantMismatch = errors.New("token was issued for another organization")
	ErrUserGone       = errors.New("token user no longer exists")
)
