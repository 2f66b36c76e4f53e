package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Is(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("refresh: %w", NewErrRefreshTokenRevoked())

	assert.True(t, errors.Is(wrapped, NewErrRefreshTokenRevoked()))
	assert.False(t, errors.Is(wrapped, NewErrRefreshTokenExpired()))
	assert.False(t, errors.Is(wrapped, NewErrUserNotFound()))
}

func TestAPIError_SameMessageDifferentKind(t *testing.T) {
	t.Parallel()

	// "user not found" exists both as an auth failure and as a 404.
	assert.False(t, errors.Is(NewErrRefreshUserNotFound(), NewErrUserNotFound()))
}

func TestAs(t *testing.T) {
	t.Parallel()

	apiErr, ok := As(fmt.Errorf("outer: %w", NewErrEmailIsTaken()))
	require.True(t, ok)
	assert.Equal(t, KindConflict, apiErr.Kind)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPCode)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestNewErrInternalServerError_HidesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewErrInternalServerError(cause)

	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode)
}

func TestKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *APIError
		kind Kind
		code int
	}{
		{NewErrValidation("bad"), KindValidation, http.StatusBadRequest},
		{NewErrEmailIsTaken(), KindConflict, http.StatusBadRequest},
		{NewErrInvalidCredentials(), KindAuth, http.StatusUnauthorized},
		{NewErrInvalidRefreshToken(), KindAuth, http.StatusUnauthorized},
		{NewErrMissingAuthorizationToken(), KindAuth, http.StatusUnauthorized},
		{NewErrInvalidAuthorizationToken(), KindAuth, http.StatusUnauthorized},
		{NewErrUserNotFound(), KindNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.err.Message, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.code, tt.err.HTTPCode)
			assert.True(t, IsKind(tt.err, tt.kind))
		})
	}
}
