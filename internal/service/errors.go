package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers use errors.Is to check for specific conditions; the API layer
// maps them to HTTP status codes.
var (
	// ErrInvalidCredentials indicates the password did not match the
	// stored hash for an existing account. Distinct from
	// store.ErrUserNotFound so login can report "no such account" and
	// "wrong password" separately.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRefreshTokenExpired indicates a stored refresh token is past
	// its expiry and cannot be exchanged.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
