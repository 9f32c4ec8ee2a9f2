package auth

import "errors"

// Common errors
var (
	// ErrInvalidCredentials is returned for every failed login, whatever the cause
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoSession          = errors.New("no active session")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)
