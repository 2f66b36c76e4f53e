package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/dtroode/authsession/internal/api/errors"
	"github.com/dtroode/authsession/internal/api/http/dto"
	"github.com/dtroode/authsession/internal/testutil"
)

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
		reason  string
	}{
		{name: "validation", err: apiErrors.NewErrValidation("email is required"), code: 400, message: "email is required", reason: "Bad Request"},
		{name: "conflict", err: apiErrors.NewErrEmailIsTaken(), code: 400, message: "email already registered", reason: "Bad Request"},
		{name: "auth", err: apiErrors.NewErrInvalidCredentials(), code: 401, message: "invalid credentials", reason: "Unauthorized"},
		{name: "wrapped auth", err: fmt.Errorf("ctx: %w", apiErrors.NewErrRefreshTokenRevoked()), code: 401, message: "refresh token revoked", reason: "Unauthorized"},
		{name: "not found", err: apiErrors.NewErrUserNotFound(), code: 404, message: "user not found", reason: "Not Found"},
		{name: "opaque", err: assert.AnError, code: 500, message: "internal server error", reason: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, testutil.MakeNoopLogger(), tt.err)

			require.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body dto.ErrorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, dto.ErrorBody{StatusCode: tt.code, Message: tt.message, Error: tt.reason}, body)
		})
	}
}

func TestJSON_NoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
