// Package hasher provides the one-way hashes used for passwords and
// refresh tokens.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/authsession/internal/model"
)

var (
	_ model.Hasher = (*Bcrypt)(nil)
	_ model.Hasher = (*Token)(nil)
)

// ErrSecretTooLong is returned for secrets bcrypt cannot hash without truncation.
var ErrSecretTooLong = bcrypt.ErrPasswordTooLong

// Bcrypt hashes passwords with bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a bcrypt hasher. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns the bcrypt hash of secret.
func (b *Bcrypt) Hash(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(h), nil
}

// Compare reports whether secret matches the bcrypt hash.
func (b *Bcrypt) Compare(secret, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to compare secret: %w", err)
}

// Token hashes signed refresh tokens. bcrypt reads at most 72 bytes and
// JWTs of one user share long prefixes, so the token is reduced to its
// SHA-256 digest first.
type Token struct {
	bcrypt *Bcrypt
}

// NewToken creates a refresh token hasher.
func NewToken(cost int) *Token {
	return &Token{bcrypt: NewBcrypt(cost)}
}

// Hash returns the salted one-way hash of token.
func (t *Token) Hash(token string) (string, error) {
	return t.bcrypt.Hash(digest(token))
}

// Compare reports whether token matches hash.
func (t *Token) Compare(token, hash string) (bool, error) {
	return t.bcrypt.Compare(digest(token), hash)
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
