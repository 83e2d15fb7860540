package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/talent-gateway/internal/domain"
)

// DomainError standardizes gateway errors. Message is the caller-facing text
// rendered as {"error": message}; Code and Err stay server-side for logs and
// metrics only.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

// NewAuthenticationRequired reports a missing, expired or forged session.
// One message for all three cases: the distinction must not leak.
func NewAuthenticationRequired() error {
	return NewDomainError("AUTHENTICATION_REQUIRED", "Authentication required", http.StatusUnauthorized)
}

// NewAdminRequired reports a valid session lacking the admin role.
func NewAdminRequired() error {
	return NewDomainError("AUTHORIZATION_DENIED", "Admin access required", http.StatusForbidden)
}

// NewRoleRequired reports a valid session with an insufficient role.
func NewRoleRequired(have domain.Role) error {
	err := NewDomainError("AUTHORIZATION_DENIED", "Insufficient role", http.StatusForbidden)
	err.Err = fmt.Errorf("session role %s not permitted", have)
	return err
}

// NewInvalidCredentials reports a rejected login attempt.
func NewInvalidCredentials() error {
	return NewDomainError("INVALID_CREDENTIALS", "Invalid email or password", http.StatusUnauthorized)
}

// NewUpstreamUnavailable reports a network-level failure talking to the
// backend. The real cause is kept for server-side logging; callers only ever
// see the fixed message.
func NewUpstreamUnavailable(cause error) error {
	return &DomainError{
		Code:       "UPSTREAM_UNAVAILABLE",
		Message:    "Upstream service unavailable",
		HTTPStatus: http.StatusInternalServerError,
		Err:        cause,
	}
}

// NewMalformedPayload reports a request body that failed to parse.
func NewMalformedPayload(cause error) error {
	return &DomainError{
		Code:       "MALFORMED_PAYLOAD",
		Message:    "Malformed request payload",
		HTTPStatus: http.StatusBadRequest,
		Err:        cause,
	}
}

// NewInternalError wraps an unexpected failure with a generic message.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
