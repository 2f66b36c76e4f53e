package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dtroode/authsession/internal/api/http/dto"
)

const defaultRequestTimeout = 10 * time.Second

// ResponseError is a non-2xx answer of the server.
type ResponseError struct {
	StatusCode int
	Message    string
	Reason     string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded with %d", e.StatusCode)
	}
	return e.Message
}

// IsUnauthorized reports whether err is a 401 answer.
func IsUnauthorized(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusUnauthorized
}

// API calls the auth HTTP endpoints. Token acquiring calls go out as is,
// calls that need the access token go through Transport.
type API struct {
	baseURL string
	timeout time.Duration
	raw     *http.Client
	authed  *http.Client
}

// NewAPI creates API for baseURL. base is the underlying transport,
// http.DefaultTransport when nil. A non-positive timeout means 10s.
func NewAPI(baseURL string, coordinator *Coordinator, base http.RoundTripper, timeout time.Duration) *API {
	if base == nil {
		base = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		raw:     &http.Client{Transport: base},
		authed:  &http.Client{Transport: NewTransport(base, coordinator)},
	}
}

// TokenSource yields the current value of a token each time it is called.
type TokenSource func(ctx context.Context) (string, error)

// bodySource produces the request payload. It runs again when a request
// is replayed, so a replay carries the values current at that moment.
type bodySource func(ctx context.Context) (any, error)

func jsonBody(v any) bodySource {
	return func(context.Context) (any, error) { return v, nil }
}

func (b bodySource) encode(ctx context.Context) (io.ReadCloser, error) {
	v, err := b(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a *API) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResult, error) {
	var result dto.AuthResult
	err := a.do(ctx, a.raw, http.MethodPost, "/auth/register", jsonBody(req), &result)
	return result, err
}

func (a *API) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResult, error) {
	var result dto.AuthResult
	err := a.do(ctx, a.raw, http.MethodPost, "/auth/login", jsonBody(req), &result)
	return result, err
}

func (a *API) Refresh(ctx context.Context, refreshToken string) (dto.AuthResult, error) {
	var result dto.AuthResult
	err := a.do(ctx, a.raw, http.MethodPost, refreshPath, jsonBody(dto.RefreshTokenRequest{RefreshToken: refreshToken}), &result)
	return result, err
}

// Logout revokes the refresh token returned by refreshToken. The token is
// read when the request is sent and again if Transport replays it after a
// refresh, which rotates the stored token.
func (a *API) Logout(ctx context.Context, refreshToken TokenSource) error {
	body := func(ctx context.Context) (any, error) {
		token, err := refreshToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read refresh token: %w", err)
		}
		return dto.LogoutRequest{RefreshToken: token}, nil
	}
	return a.do(ctx, a.authed, http.MethodPost, "/auth/logout", body, nil)
}

func (a *API) Me(ctx context.Context) (dto.UserProfile, error) {
	var profile dto.UserProfile
	err := a.do(ctx, a.authed, http.MethodGet, "/users/me", nil, &profile)
	return profile, err
}

func (a *API) do(ctx context.Context, client *http.Client, method, path string, in bodySource, out any) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		body, err := in.encode(ctx)
		if err != nil {
			return err
		}
		// The length is left unknown: a replayed body may differ in size.
		req.Body = body
		req.GetBody = func() (io.ReadCloser, error) {
			return in.encode(ctx)
		}
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	respErr := &ResponseError{StatusCode: resp.StatusCode}

	var body dto.ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		respErr.Message = body.Message
		respErr.Reason = body.Error
	}
	return respErr
}
