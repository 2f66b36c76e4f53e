package hasher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt_HashAndCompare(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := h.Compare("secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcrypt_SaltedHashesDiffer(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	first, err := h.Hash("secret1")
	require.NoError(t, err)
	second, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcrypt_MalformedHash(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	ok, err := h.Compare("secret1", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestBcrypt_TooLong(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrSecretTooLong)
}

func TestNewBcrypt_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(100).cost)
	assert.Equal(t, 12, NewBcrypt(12).cost)
}

func TestToken_DistinguishesLongSharedPrefix(t *testing.T) {
	h := NewToken(bcrypt.MinCost)
	prefix := strings.Repeat("eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.", 3)

	hash, err := h.Hash(prefix + "first")
	require.NoError(t, err)

	ok, err := h.Compare(prefix+"first", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(prefix+"second", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}
