package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Specific validation errors below wrap it.
	ErrValidation = errors.New("validation failed")

	ErrInvalidUsername     = fmt.Errorf("%w: username must be 3-50 characters without whitespace", ErrValidation)
	ErrInvalidEmail        = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrEmptyPasswordHash   = fmt.Errorf("%w: password hash cannot be empty", ErrValidation)
	ErrNameTooLong         = fmt.Errorf("%w: first and last name must be at most 50 characters", ErrValidation)
	ErrTokenPairIncomplete = fmt.Errorf("%w: token and expiry must be set together", ErrValidation)
)
