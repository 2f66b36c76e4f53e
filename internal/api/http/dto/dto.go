// Package dto holds the JSON bodies of the auth HTTP API. The client
// decodes the same types.
package dto

import (
	"time"

	"github.com/dtroode/authsession/internal/model"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UserProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// AuthResult carries a token pair. Expiry times are ISO 8601 in UTC.
type AuthResult struct {
	AccessToken           string      `json:"accessToken"`
	AccessTokenExpiresAt  time.Time   `json:"accessTokenExpiresAt"`
	RefreshToken          string      `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time   `json:"refreshTokenExpiresAt"`
	User                  UserProfile `json:"user"`
}

type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func FromProfile(p model.Profile) UserProfile {
	return UserProfile{ID: p.ID, Email: p.Email, DisplayName: p.DisplayName}
}

func FromAuthResult(r model.AuthResult) AuthResult {
	return AuthResult{
		AccessToken:           r.AccessToken,
		AccessTokenExpiresAt:  r.AccessTokenExpiresAt.UTC(),
		RefreshToken:          r.RefreshToken,
		RefreshTokenExpiresAt: r.RefreshTokenExpiresAt.UTC(),
		User:                  FromProfile(r.User),
	}
}
