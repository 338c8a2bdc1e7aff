package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidPrice       = errors.New("price must be greater than zero")
	ErrInsufficientAmount = errors.New("amount too small for current price")
	ErrInvalidOrder       = errors.New("invalid order parameters")
	ErrRateLimited        = errors.New("rate limited")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrLockHeld           = errors.New("lock already held")
)
