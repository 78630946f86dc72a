package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeUnavailable      ErrorType = "unavailable"
	ErrorTypeExpired          ErrorType = "expired"
	ErrorTypeToggleFetch      ErrorType = "toggle_fetch"
	ErrorTypeMisconfiguration ErrorType = "misconfiguration"
	ErrorTypeUnauthorized     ErrorType = "unauthorized"
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeInternal         ErrorType = "internal"
	ErrorTypeExternal         ErrorType = "external"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Domain error variables

var (
	// ErrSessionUnavailable: identity provider unreachable or returned no
	// valid session during recovery. Recovered locally by falling back to
	// unauthenticated; never surfaced to end users.
	ErrSessionUnavailable = NewDomainError(ErrorTypeUnavailable, "session unavailable", nil)

	// ErrSessionExpired: a previously valid session was rejected on refresh
	ErrSessionExpired = NewDomainError(ErrorTypeExpired, "session expired", nil)

	// ErrToggleFetchFailed: the feature configuration fetch failed; the
	// previous cache is retained
	ErrToggleFetchFailed = NewDomainError(ErrorTypeToggleFetch, "feature toggle fetch failed", nil)

	// ErrPolicyMisconfigured: a route declared a role or feature outside
	// the known enumerations. Programming error; fails fast at wiring time.
	ErrPolicyMisconfigured = NewDomainError(ErrorTypeMisconfiguration, "route policy misconfigured", nil)

	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "invalid credentials", nil)
	ErrInvalidInput       = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInternal           = NewDomainError(ErrorTypeInternal, "internal error", nil)
)

// IsSessionUnavailableError checks if an error is a session availability error
func IsSessionUnavailableError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeUnavailable
	}
	return false
}

// IsSessionExpiredError checks if an error is a session expiry error
func IsSessionExpiredError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeExpired
	}
	return false
}

// IsToggleFetchError checks if an error is a toggle fetch error
func IsToggleFetchError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeToggleFetch
	}
	return false
}

// IsMisconfigurationError checks if an error is a policy misconfiguration
func IsMisconfigurationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeMisconfiguration
	}
	return false
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapExternal wraps an error as an external service error
func WrapExternal(message string, err error) error {
	return NewDomainError(ErrorTypeExternal, message, err)
}
