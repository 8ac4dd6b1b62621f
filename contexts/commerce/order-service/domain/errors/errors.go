package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrOrderNotFound  = errors.New("order not found")
	ErrUnknownUser    = errors.New("referenced user not recognized")
)
