package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrUnauthorized       = errors.New("session token rejected")
	ErrForbidden          = errors.New("admin role required")
	ErrNotFound           = errors.New("resource not found")
	ErrUnavailable        = errors.New("service unavailable")
)
