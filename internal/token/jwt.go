package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/authsession/internal/model"
)

var _ model.TokenCodec = (*JWT)(nil)

// Claims represents JWT claims with token type and user email.
// The user ID travels in the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	TokenType string `json:"typ"`
}

// JWT implements TokenCodec backed by symmetric HMAC with
// independent keys and lifetimes for access and refresh tokens.
type JWT struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures JWT.
type Option func(*JWT)

// WithClock overrides the time source used to issue and validate tokens.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// NewJWT creates a new JWT token codec.
func NewJWT(accessKey, refreshKey string, accessTTL, refreshTTL time.Duration, opts ...Option) *JWT {
	j := &JWT{
		accessKey:  []byte(accessKey),
		refreshKey: []byte(refreshKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// GenerateAccessToken creates a short-lived access token.
func (j *JWT) GenerateAccessToken(subject model.Subject) (model.IssuedToken, error) {
	issued, err := j.generate(subject, typeAccess, j.accessKey, j.accessTTL)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return issued, nil
}

// GenerateRefreshToken creates a long-lived refresh token.
func (j *JWT) GenerateRefreshToken(subject model.Subject) (model.IssuedToken, error) {
	issued, err := j.generate(subject, typeRefresh, j.refreshKey, j.refreshTTL)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return issued, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.Claims, error) {
	claims, err := j.parse(tokenString, typeAccess, j.accessKey)
	if err != nil {
		return model.Claims{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	return claims, nil
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (j *JWT) ParseRefreshToken(tokenString string) (model.Claims, error) {
	claims, err := j.parse(tokenString, typeRefresh, j.refreshKey)
	if err != nil {
		return model.Claims{}, fmt.Errorf("failed to parse refresh token: %w", err)
	}
	return claims, nil
}

func (j *JWT) generate(subject model.Subject, tokenType string, key []byte, ttl time.Duration) (model.IssuedToken, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:     subject.Email,
		TokenType: tokenType,
	})

	tokenString, err := token.SignedString(key)
	if err != nil {
		return model.IssuedToken{}, err
	}

	// Expiry is read back from the signed token so callers see exactly
	// what verification will enforce.
	expiresAt, err := decodeExpiry(tokenString)
	if err != nil {
		return model.IssuedToken{}, err
	}

	return model.IssuedToken{Token: tokenString, ExpiresAt: expiresAt}, nil
}

func (j *JWT) parse(tokenString, tokenType string, key []byte) (model.Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return model.Claims{}, err
	}
	if !token.Valid {
		return model.Claims{}, errors.New("token is invalid")
	}
	if claims.TokenType != tokenType {
		return model.Claims{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Claims{}, fmt.Errorf("invalid subject: %w", err)
	}

	return model.Claims{
		UserID:    userID,
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func decodeExpiry(tokenString string) (time.Time, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}
