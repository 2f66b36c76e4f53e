package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpContext "github.com/dtroode/authsession/internal/api/http/context"
	"github.com/dtroode/authsession/internal/api/http/dto"
	"github.com/dtroode/authsession/internal/hasher"
	"github.com/dtroode/authsession/internal/metrics"
	"github.com/dtroode/authsession/internal/model"
	"github.com/dtroode/authsession/internal/repository/memory"
	"github.com/dtroode/authsession/internal/service"
	"github.com/dtroode/authsession/internal/testutil"
	"github.com/dtroode/authsession/internal/token"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := memory.NewDB()
	users := memory.NewUserRepository(db)
	log := testutil.MakeNoopLogger()
	codec := token.NewJWT("access", "refresh", 15*time.Minute, 7*24*time.Hour)
	tokens := service.NewTokenService(codec, users, memory.NewRefreshTokenRepository(db), hasher.NewToken(4), log)
	auth := service.NewAuth(users, hasher.NewBcrypt(4), tokens, model.LogoutScopeAll, log)

	r := New(auth, tokens, httpContext.NewManager(), db, metrics.New(), log)
	srv := httptest.NewServer(r.Register())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, bearer string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeAuth(t *testing.T, resp *http.Response) dto.AuthResult {
	t.Helper()
	var out dto.AuthResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRouter_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Email: "A@X.com", Password: "secret1", DisplayName: "Alice"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decodeAuth(t, resp)
	assert.Equal(t, "a@x.com", registered.User.Email)

	resp = do(t, srv, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Email: "a@x.com", Password: "secret1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/users/me", registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.UserProfile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, registered.User, me)

	resp = do(t, srv, http.MethodPost, "/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: registered.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decodeAuth(t, resp)

	resp = do(t, srv, http.MethodPost, "/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: registered.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var errBody dto.ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.Equal(t, dto.ErrorBody{StatusCode: 401, Message: "refresh token revoked", Error: "Unauthorized"}, errBody)

	resp = do(t, srv, http.MethodPost, "/auth/logout", rotated.AccessToken, dto.LogoutRequest{RefreshToken: rotated.RefreshToken})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: rotated.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_LoginFailures(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Email: "a@x.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "a@x.com", Password: "nope123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "", Password: "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/auth/logout", "", dto.LogoutRequest{RefreshToken: "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_Ops(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Email: "m@x.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `authsession_auth_operations_total{operation="register",result="success"} 1`)

	resp = do(t, srv, http.MethodGet, "/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
