package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authsession/internal/client/storage"
	"github.com/dtroode/authsession/internal/mocks"
)

func TestRefreshHandle_SetGetClear(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	h := NewRefreshHandle(kv)

	require.NoError(t, h.Set(ctx, "tok", "2030-01-01T00:00:00Z"))

	token, expiresAt, err := h.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "2030-01-01T00:00:00Z", expiresAt)

	stored, err := kv.Get(ctx, "auth.refreshToken")
	require.NoError(t, err)
	assert.Equal(t, "tok", stored)

	require.NoError(t, h.Clear(ctx))
	token, expiresAt, err = h.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, expiresAt)
}

func TestRefreshHandle_GetValidRefreshToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		token     string
		expiresAt string
		want      string
	}{
		{name: "future expiry", token: "tok", expiresAt: "2025-06-08T12:00:00.123Z", want: "tok"},
		{name: "past expiry", token: "tok", expiresAt: "2025-05-01T00:00:00Z"},
		{name: "expiry equals now", token: "tok", expiresAt: "2025-06-01T12:00:00Z"},
		{name: "unparseable expiry", token: "tok", expiresAt: "next week"},
		{name: "missing expiry", token: "tok"},
		{name: "missing token", expiresAt: "2030-01-01T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := storage.NewMemory()
			h := NewRefreshHandle(kv)
			h.now = func() time.Time { return now }

			if tt.token != "" {
				require.NoError(t, kv.Set(ctx, "auth.refreshToken", tt.token))
			}
			if tt.expiresAt != "" {
				require.NoError(t, kv.Set(ctx, "auth.refreshTokenExpiresAt", tt.expiresAt))
			}

			got, err := h.GetValidRefreshToken(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			if tt.want == "" {
				token, expiresAt, err := h.Get(ctx)
				require.NoError(t, err)
				assert.Empty(t, token)
				assert.Empty(t, expiresAt)
			}
		})
	}
}

func TestRefreshHandle_StoreErrors(t *testing.T) {
	ctx := context.Background()
	kvErr := errors.New("disk full")

	t.Run("set", func(t *testing.T) {
		kv := mocks.NewKV(t)
		kv.On("Set", mock.Anything, "auth.refreshToken", "tok").Return(kvErr).Once()

		err := NewRefreshHandle(kv).Set(ctx, "tok", "2030-01-01T00:00:00Z")
		require.ErrorIs(t, err, kvErr)
	})

	t.Run("get", func(t *testing.T) {
		kv := mocks.NewKV(t)
		kv.On("Get", mock.Anything, "auth.refreshToken").Return("", kvErr).Once()

		_, err := NewRefreshHandle(kv).GetValidRefreshToken(ctx)
		require.ErrorIs(t, err, kvErr)
	})

	t.Run("clear", func(t *testing.T) {
		kv := mocks.NewKV(t)
		kv.On("Delete", mock.Anything, "auth.refreshToken").Return(kvErr).Once()
		kv.On("Delete", mock.Anything, "auth.refreshTokenExpiresAt").Return(nil).Once()

		err := NewRefreshHandle(kv).Clear(ctx)
		require.ErrorIs(t, err, kvErr)
	})
}

func TestRefreshHandle_ExpiresAt(t *testing.T) {
	ctx := context.Background()
	h := NewRefreshHandle(storage.NewMemory())

	exp, err := h.ExpiresAt(ctx)
	require.NoError(t, err)
	assert.True(t, exp.IsZero())

	require.NoError(t, h.Set(ctx, "tok", "2030-01-01T00:00:00Z"))
	exp, err = h.ExpiresAt(ctx)
	require.NoError(t, err)
	assert.True(t, exp.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}
