package user

import "errors"

var (
	ErrUserExists = errors.New("user with this username or email already exists")
	ErrInvalidID  = errors.New("invalid user id")
)
