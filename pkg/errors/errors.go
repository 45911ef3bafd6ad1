package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so cloned errors compare equal to their template.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors grouped by taxonomy.
var (
	// validation
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")

	// not found
	ErrNotFound = New("NOT_FOUND", http.StatusNotFound, "resource not found")

	// conflict
	ErrConflict        = New("CONFLICT", http.StatusConflict, "conflict")
	ErrAlreadyEnrolled = New("ALREADY_ENROLLED", http.StatusConflict, "already enrolled in this course")
	ErrAlreadyApplied  = New("ALREADY_APPLIED", http.StatusConflict, "already applied to this opportunity")

	// auth
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrInvalidToken       = New("INVALID_TOKEN", http.StatusUnauthorized, "invalid or expired reset link")
	ErrTokenExpired       = New("TOKEN_EXPIRED", http.StatusUnauthorized, "reset link has expired, please request a new one")
	ErrNotEnrolled        = New("NOT_ENROLLED", http.StatusForbidden, "you need to enroll in this course first")

	// persistence and collaborators
	ErrPersistence        = New("PERSISTENCE_ERROR", http.StatusInternalServerError, "something went wrong, please try again")
	ErrMailDelivery       = New("MAIL_DELIVERY_FAILED", http.StatusBadGateway, "error sending email, please try again")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrServiceUnavailable = New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "service not configured")
	ErrRateLimited        = New("RATE_LIMITED", http.StatusTooManyRequests, "too many requests, please try again later")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Persistence wraps a storage failure behind the generic persistence message.
func Persistence(err error, message string) *Error {
	wrapped := Wrap(err, ErrPersistence.Code, ErrPersistence.Status, ErrPersistence.Message)
	if message != "" {
		wrapped.Err = fmt.Errorf("%s: %w", message, err)
	}
	return wrapped
}

// Validation wraps a validation failure with a user-facing message.
func Validation(err error, message string) *Error {
	return Wrap(err, ErrValidation.Code, ErrValidation.Status, message)
}
