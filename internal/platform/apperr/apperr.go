// Copyright (c) 2026 Roastlog. All rights reserved.

/*
Package apperr defines the centralized error handling framework for Roastlog.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct carrying a machine-readable Code, an error Type, and
    Recoverable/Retryable flags so clients can decide between a retry button,
    a wait timer, or a "contact support" path.
  - Mapping: Explicit mapping from AppError to standard HTTP status codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Types

// Error type identifiers grouped under a purpose-named taxonomy. These appear
// verbatim in the `error.type` field of the API error envelope.
const (
	TypeRateLimitExceeded = "rate_limit_exceeded"
	TypeCSRFViolation     = "csrf_violation"
	TypeValidationError   = "validation_error"
	TypeEmailConflict     = "email_conflict"
	TypeInternalError     = "internal_error"
)

// # Error Codes

// Machine-readable codes exposed in the `error.code` field.
const (
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeCSRFViolation     = "CSRF_VIOLATION"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeEmailExists       = "EMAIL_EXISTS"
	CodeInternalError     = "INTERNAL_ERROR"
)

// AppError is the canonical error type for the Roastlog API.
//
// It carries an HTTP status code, a machine-readable code and type, a
// client-safe message, recoverability flags, and an optional slice of
// field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Type is the error taxonomy identifier (e.g. "validation_error").
	Type string `json:"type"`
	// Code is a machine-readable error identifier (e.g. "EMAIL_EXISTS").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"message"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Recoverable reports whether the caller can recover from this error at all.
	Recoverable bool `json:"recoverable"`
	// Retryable reports whether an immediate retry of the same request can succeed.
	Retryable bool `json:"retryable"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Path is the JSON field name that failed validation.
	Path string `json:"path"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// ValidationError creates a 400 [AppError] with optional per-field details.
// Retryable immediately after the caller corrects its input.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Type:        TypeValidationError,
		Code:        CodeValidationError,
		Message:     msg,
		HTTPStatus:  http.StatusBadRequest,
		Recoverable: true,
		Retryable:   true,
		Details:     details,
	}
}

// CSRFViolation creates a 403 [AppError]. The client should refresh its
// token and resubmit, so the error is marked retryable.
func CSRFViolation() *AppError {
	return &AppError{
		Type:        TypeCSRFViolation,
		Code:        CodeCSRFViolation,
		Message:     "Missing or invalid CSRF token",
		HTTPStatus:  http.StatusForbidden,
		Recoverable: true,
		Retryable:   true,
	}
}

// EmailExists creates a 409 [AppError] for a duplicate registration email.
// Not retryable: resubmitting the same email can never succeed.
func EmailExists() *AppError {
	return &AppError{
		Type:        TypeEmailConflict,
		Code:        CodeEmailExists,
		Message:     "An account with this email address already exists",
		HTTPStatus:  http.StatusConflict,
		Recoverable: true,
		Retryable:   false,
	}
}

// RateLimited creates a 429 [AppError]. Not immediately retryable: the
// client must wait out the window communicated via Retry-After.
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Type:        TypeRateLimitExceeded,
		Code:        CodeRateLimitExceeded,
		Message:     fmt.Sprintf("Too many registration attempts. Try again in %ds.", retryAfterSeconds),
		HTTPStatus:  http.StatusTooManyRequests,
		Recoverable: true,
		Retryable:   false,
	}
}

// Unexpected wraps an unexpected failure inside the registration flow.
//
// The boundary handler converts every non-AppError into this 400 response:
// the client receives a generic message and may retry later, while the cause
// is retained for server-side logging only.
func Unexpected(cause error) *AppError {
	return &AppError{
		Type:        TypeInternalError,
		Code:        CodeInternalError,
		Message:     "Registration could not be completed. Please try again later.",
		HTTPStatus:  http.StatusBadRequest,
		Recoverable: true,
		Retryable:   true,
		Cause:       cause,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error
// outside the registration flow (infrastructure, health checks).
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Type:        TypeInternalError,
		Code:        CodeInternalError,
		Message:     "An unexpected error occurred",
		HTTPStatus:  http.StatusInternalServerError,
		Recoverable: true,
		Retryable:   true,
		Cause:       cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
