package models

import (
	"errors"
	"fmt"
)

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}

var (
	// ErrNotFound indicates the requested resource id does not resolve
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the request carries no valid principal
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the principal lacks ownership or the admin role
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates malformed input
	ErrValidation = errors.New("validation error")

	// ErrConflict is reserved for conflicting writes, toggles never return it
	ErrConflict = errors.New("conflict")
)

// Validationf wraps ErrValidation with a formatted detail
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted detail
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Forbiddenf wraps ErrForbidden with a formatted detail
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
