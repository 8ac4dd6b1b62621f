package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("user with this email already exists")
)
