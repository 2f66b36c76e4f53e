package client

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	refreshTokenKey          = "auth.refreshToken"
	refreshTokenExpiresAtKey = "auth.refreshTokenExpiresAt"
)

// KV is a durable string key-value store. Get returns an empty value
// for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// RefreshHandle persists the refresh token and its expiry.
type RefreshHandle struct {
	kv  KV
	now func() time.Time
}

func NewRefreshHandle(kv KV) *RefreshHandle {
	return &RefreshHandle{kv: kv, now: time.Now}
}

// Set stores token with its ISO 8601 expiry.
func (h *RefreshHandle) Set(ctx context.Context, token, expiresAt string) error {
	if err := h.kv.Set(ctx, refreshTokenKey, token); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	if err := h.kv.Set(ctx, refreshTokenExpiresAtKey, expiresAt); err != nil {
		return fmt.Errorf("failed to store refresh token expiry: %w", err)
	}
	return nil
}

// Get returns the stored token and expiry as they were written.
func (h *RefreshHandle) Get(ctx context.Context) (token, expiresAt string, err error) {
	token, err = h.kv.Get(ctx, refreshTokenKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to read refresh token: %w", err)
	}
	expiresAt, err = h.kv.Get(ctx, refreshTokenExpiresAtKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to read refresh token expiry: %w", err)
	}
	return token, expiresAt, nil
}

func (h *RefreshHandle) Clear(ctx context.Context) error {
	return errors.Join(
		h.kv.Delete(ctx, refreshTokenKey),
		h.kv.Delete(ctx, refreshTokenExpiresAtKey),
	)
}

// GetValidRefreshToken returns the stored token if its expiry lies in the
// future. A missing, unreadable or past expiry clears the storage and
// yields an empty token.
func (h *RefreshHandle) GetValidRefreshToken(ctx context.Context) (string, error) {
	token, expiresAt, err := h.Get(ctx)
	if err != nil {
		return "", err
	}

	if token != "" && expiresAt != "" {
		exp, err := time.Parse(time.RFC3339, expiresAt)
		if err == nil && exp.After(h.now()) {
			return token, nil
		}
	}

	if err := h.Clear(ctx); err != nil {
		return "", fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return "", nil
}

// ExpiresAt returns the parsed expiry of the stored token, zero if none.
func (h *RefreshHandle) ExpiresAt(ctx context.Context) (time.Time, error) {
	_, expiresAt, err := h.Get(ctx)
	if err != nil || expiresAt == "" {
		return time.Time{}, err
	}
	exp, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return time.Time{}, nil
	}
	return exp, nil
}
