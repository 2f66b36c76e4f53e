package client

import (
	"io"
	"net/http"
	"strings"
)

const refreshPath = "/auth/refresh"

// Transport attaches the cached access token to outgoing requests. On a
// 401 it refreshes through the coordinator and replays the request once.
type Transport struct {
	base        http.RoundTripper
	coordinator *Coordinator
}

// NewTransport wraps base, http.DefaultTransport when nil.
func NewTransport(base http.RoundTripper, coordinator *Coordinator) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, coordinator: coordinator}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	sent := t.coordinator.AccessToken()
	resp, err := t.base.RoundTrip(withBearer(req, sent))
	if err != nil || resp.StatusCode != http.StatusUnauthorized || isRefreshCall(req) {
		return resp, err
	}

	// A refresh that completed meanwhile has already replaced the token.
	token := t.coordinator.AccessToken()
	if token == "" || token == sent {
		token, err = t.coordinator.RefreshAccessToken(req.Context())
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		if token == "" {
			return resp, nil
		}
	}

	retry, ok := rewind(req)
	if !ok {
		return resp, nil
	}
	drain(resp)

	return t.base.RoundTrip(withBearer(retry, token))
}

func withBearer(req *http.Request, token string) *http.Request {
	if token == "" {
		return req
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// rewind returns a copy of req with a fresh body. Requests whose body
// cannot be recreated are not replayed.
func rewind(req *http.Request) (*http.Request, bool) {
	r := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return r, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	r.Body = body
	return r, true
}

func isRefreshCall(req *http.Request) bool {
	return strings.HasSuffix(req.URL.Path, refreshPath)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
