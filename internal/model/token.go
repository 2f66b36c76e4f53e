package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenCodec signs and verifies access and refresh tokens.
type TokenCodec interface {
	GenerateAccessToken(subject Subject) (IssuedToken, error)
	GenerateRefreshToken(subject Subject) (IssuedToken, error)
	ParseAccessToken(token string) (Claims, error)
	ParseRefreshToken(token string) (Claims, error)
}

// Subject is the identity embedded into issued tokens.
type Subject struct {
	UserID uuid.UUID
	Email  string
}

// Claims are the verified contents of a token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// IssuedToken is a signed token with the expiry taken from its own claims.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenPair holds a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	TokenPair
	User Profile
}
