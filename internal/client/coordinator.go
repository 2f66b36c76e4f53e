// Package client implements the client side of the session protocol:
// a volatile access token cache with a coordinated refresh, durable
// refresh token storage and an HTTP transport that retries on 401.
package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const refreshFlightKey = "refresh"

// RefreshExecutor obtains a new access token. An empty token with a nil
// error means the session cannot be refreshed.
type RefreshExecutor func(ctx context.Context) (string, error)

// Coordinator holds the access token in memory and makes sure at most
// one refresh runs at a time. Concurrent callers share its outcome.
type Coordinator struct {
	mu                   sync.RWMutex
	accessToken          string
	accessTokenExpiresAt time.Time
	executor             RefreshExecutor

	group singleflight.Group
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

func (c *Coordinator) SetAccessToken(token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accessToken = token
	c.accessTokenExpiresAt = expiresAt
}

func (c *Coordinator) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.accessToken
}

func (c *Coordinator) AccessTokenExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.accessTokenExpiresAt
}

// SetRefreshExecutor registers the function RefreshAccessToken delegates to.
func (c *Coordinator) SetRefreshExecutor(executor RefreshExecutor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.executor = executor
}

// RefreshAccessToken runs the registered executor, or joins the one
// already in flight. Without an executor it returns an empty token.
// A caller whose ctx ends stops waiting; the shared refresh keeps going.
func (c *Coordinator) RefreshAccessToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	executor := c.executor
	c.mu.RUnlock()

	if executor == nil {
		return "", nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(refreshFlightKey, func() (any, error) {
		token, err := executor(flightCtx)
		return token, err
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		token, _ := res.Val.(string)
		return token, nil
	}
}

// Clear drops the access token and the executor and forgets any refresh
// in flight, so the next call starts over.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.accessToken = ""
	c.accessTokenExpiresAt = time.Time{}
	c.executor = nil
	c.mu.Unlock()

	c.group.Forget(refreshFlightKey)
}
