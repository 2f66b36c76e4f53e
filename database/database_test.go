package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		body, err := fs.ReadFile(migrations, "migrations/"+e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", e.Name())
		assert.Contains(t, string(body), "-- +goose Down", e.Name())
	}
}

func TestRefreshTokensReferenceUsers(t *testing.T) {
	body, err := fs.ReadFile(migrations, "migrations/00002_refresh_tokens.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "REFERENCES users (id) ON DELETE CASCADE"))
}
