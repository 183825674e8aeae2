// Package apperrors defines the typed errors returned by the analysis engine
// and the tool server.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// ErrorTypeInsufficientInput covers too few points, collinear points and
	// singular solves.
	ErrorTypeInsufficientInput ErrorType = "insufficient_or_degenerate_input"
	// ErrorTypeInvalidGeometry means the input is not approximated by any real
	// circle (negative squared radius).
	ErrorTypeInvalidGeometry ErrorType = "invalid_geometry"
	// ErrorTypeNoIntersectionData means no line collection produced a single
	// intersection point.
	ErrorTypeNoIntersectionData ErrorType = "no_intersection_data"
	// ErrorTypeNotFitted means an operation needs a fitted circle first.
	ErrorTypeNotFitted ErrorType = "not_fitted"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewInsufficientInputError creates a new insufficient or degenerate input error
func NewInsufficientInputError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInsufficientInput, Message: message, Cause: cause}
}

// NewInvalidGeometryError creates a new invalid geometry error
func NewInvalidGeometryError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInvalidGeometry, Message: message, Cause: cause}
}

// NewNoIntersectionDataError creates a new no intersection data error
func NewNoIntersectionDataError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeNoIntersectionData, Message: message, Cause: cause}
}

// NewNotFittedError creates a new not fitted error
func NewNotFittedError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeNotFitted, Message: message, Cause: cause}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, Cause: cause}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message, Cause: cause}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Cause: cause}
}

// IsType checks if err, or any error it wraps, is an AppError of the given type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// TypeOf returns the type of the first AppError in err's chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}
