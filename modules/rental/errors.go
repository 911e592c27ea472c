package rental

import "errors"

var (
	ErrNotFound  = errors.New("rental not found")
	ErrNotActive = errors.New("rental is not active")
	ErrInvalidID = errors.New("invalid rental id")
)
