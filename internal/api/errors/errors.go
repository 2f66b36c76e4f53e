// Package errors defines the error taxonomy surfaced by the auth API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an APIError.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// APIError is an error with a client-facing message and HTTP status.
type APIError struct {
	Kind     Kind
	HTTPCode int
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches another APIError of the same kind and message.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// As returns the APIError in err's chain, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an APIError of kind k.
func IsKind(err error, k Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == k
}

func newError(kind Kind, code int, message string) *APIError {
	return &APIError{Kind: kind, HTTPCode: code, Message: message}
}

// NewErrValidation reports malformed input.
func NewErrValidation(message string) *APIError {
	return newError(KindValidation, http.StatusBadRequest, message)
}

// NewErrEmailIsTaken reports a duplicate registration.
func NewErrEmailIsTaken() *APIError {
	return newError(KindConflict, http.StatusBadRequest, "email already registered")
}

// NewErrInvalidCredentials is returned for unknown users and bad passwords alike.
func NewErrInvalidCredentials() *APIError {
	return newError(KindAuth, http.StatusUnauthorized, "invalid credentials")
}

func NewErrInvalidRefreshToken() *APIError {
	return newError(KindAuth, http.StatusUnauthorized, "invalid refresh token")
}

func NewErrRefreshUserNotFound() *APIError {
	return newError(KindAuth, http.StatusUnauthorized, "user not found")
}

func NewErrRefreshTokenRevoked() *APIError {
	return newError(KindAuth, http.StatusUnauthorized, "refresh token revoked")
}

func NewErrRefreshTokenExpired() *APIError {
	return newError(KindAuth, http.StatusUnauthorized, "refresh token expired")
}

func NewErrMissingAuthorizationToken() *APIError {
	return newError(KindAuth, http.StatusUnauthorized, "missing access token")
}

func NewErrInvalidAuthorizationToken() *APIError {
	return newError(KindAuth, http.StatusUnauthorized, "invalid or expired access token")
}

// NewErrUserNotFound reports a user that vanished after authentication.
func NewErrUserNotFound() *APIError {
	return newError(KindNotFound, http.StatusNotFound, "user not found")
}

// NewErrInternalServerError wraps an unexpected failure. Its message never
// includes the cause.
func NewErrInternalServerError(err error) *APIError {
	e := newError(KindInternal, http.StatusInternalServerError, "internal server error")
	e.Err = err
	return e
}
