package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrSecretTooShort is returned when the signing secret is shorter than
	// MinSecretLength bytes.
	ErrSecretTooShort = errors.New("signing secret is too short")

	// ErrInvalidLifetime is returned for a non-positive token lifetime.
	ErrInvalidLifetime = errors.New("token lifetime must be positive")
)
