package service

import "errors"

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	ErrInvalidID      = errors.New("invalid id")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrEmailTaken     = errors.New("email already exists")
	ErrBadCredentials = errors.New("invalid credentials")
)
