package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dtroode/authsession/internal/api/http/dto"
	"github.com/dtroode/authsession/internal/logger"
)

// ErrSessionCleared is returned by a refresh whose session was cleared
// while the refresh was in flight. Its result is discarded.
var ErrSessionCleared = errors.New("session cleared during refresh")

// Session ties the API, the coordinator and the refresh handle together.
type Session struct {
	api         *API
	coordinator *Coordinator
	handle      *RefreshHandle
	logger      *logger.Logger

	// mu guards user and generation and serializes adopting a token pair
	// with Clear. generation changes on every Clear.
	mu         sync.RWMutex
	user       *dto.UserProfile
	generation uint64
}

// NewSession creates Session and registers its Refresh with coordinator.
func NewSession(api *API, coordinator *Coordinator, handle *RefreshHandle, logger *logger.Logger) *Session {
	s := &Session{
		api:         api,
		coordinator: coordinator,
		handle:      handle,
		logger:      logger,
	}
	coordinator.SetRefreshExecutor(s.Refresh)
	return s
}

// HandleAuthResult adopts a token pair: user and access token in memory,
// refresh token in durable storage.
func (s *Session) HandleAuthResult(ctx context.Context, result dto.AuthResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.adoptLocked(ctx, result)
}

func (s *Session) adoptLocked(ctx context.Context, result dto.AuthResult) error {
	user := result.User
	s.user = &user

	s.coordinator.SetAccessToken(result.AccessToken, result.AccessTokenExpiresAt)
	s.coordinator.SetRefreshExecutor(s.Refresh)

	expiresAt := result.RefreshTokenExpiresAt.UTC().Format(time.RFC3339Nano)
	if err := s.handle.Set(ctx, result.RefreshToken, expiresAt); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Refresh exchanges the persisted refresh token for a new pair and
// returns the new access token. Without a valid persisted token the
// session is cleared and an empty token returned. Any failure also
// clears the session. A pair that arrives after Clear is dropped and
// ErrSessionCleared returned.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	generation := s.currentGeneration()

	token, err := s.handle.GetValidRefreshToken(ctx)
	if err != nil {
		s.clearQuietly(ctx)
		return "", err
	}
	if token == "" {
		s.clearQuietly(ctx)
		return "", nil
	}

	result, err := s.api.Refresh(ctx, token)
	if err != nil {
		s.logger.Debug("Session: refresh failed", "error", err)
		s.clearQuietly(ctx)
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}

	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		s.logger.Debug("Session: dropping refresh result of a cleared session")
		return "", ErrSessionCleared
	}
	err = s.adoptLocked(ctx, result)
	s.mu.Unlock()

	if err != nil {
		s.clearQuietly(ctx)
		return "", err
	}
	return result.AccessToken, nil
}

// Bootstrap restores the session from a persisted refresh token, if any.
// Failures are logged and leave the session signed out.
func (s *Session) Bootstrap(ctx context.Context) {
	token, err := s.handle.GetValidRefreshToken(ctx)
	if err != nil {
		s.logger.Warn("Session: failed to read persisted session", "error", err)
		return
	}
	if token == "" {
		return
	}

	if _, err := s.coordinator.RefreshAccessToken(ctx); err != nil {
		s.logger.Warn("Session: failed to restore session", "error", err)
	}
}

func (s *Session) Register(ctx context.Context, email, password, displayName string) (dto.UserProfile, error) {
	result, err := s.api.Register(ctx, dto.RegisterRequest{Email: email, Password: password, DisplayName: displayName})
	if err != nil {
		return dto.UserProfile{}, err
	}
	if err := s.HandleAuthResult(ctx, result); err != nil {
		return dto.UserProfile{}, err
	}
	return result.User, nil
}

func (s *Session) Login(ctx context.Context, email, password string) (dto.UserProfile, error) {
	result, err := s.api.Login(ctx, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return dto.UserProfile{}, err
	}
	if err := s.HandleAuthResult(ctx, result); err != nil {
		return dto.UserProfile{}, err
	}
	return result.User, nil
}

// Logout revokes the session on the server when possible and always
// clears local state. Only a failure to clear local state is returned.
// The logout body carries the refresh token stored at send time, so a
// refresh done by Transport on a 401 is followed by the rotated token.
func (s *Session) Logout(ctx context.Context) error {
	token, err := s.handle.GetValidRefreshToken(ctx)
	if err != nil {
		s.logger.Debug("Session: failed to read refresh token", "error", err)
	}
	if token != "" {
		if err := s.api.Logout(ctx, s.handle.GetValidRefreshToken); err != nil {
			s.logger.Debug("Session: logout request failed", "error", err)
		}
	}

	return s.Clear(ctx)
}

// Me fetches the current profile and caches it.
func (s *Session) Me(ctx context.Context) (dto.UserProfile, error) {
	profile, err := s.api.Me(ctx)
	if err != nil {
		return dto.UserProfile{}, err
	}

	s.mu.Lock()
	s.user = &profile
	s.mu.Unlock()

	return profile, nil
}

// User returns the cached profile.
func (s *Session) User() (dto.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return dto.UserProfile{}, false
	}
	return *s.user, true
}

// Authenticated reports whether an access token is cached.
func (s *Session) Authenticated() bool {
	return s.coordinator.AccessToken() != ""
}

// Clear drops the profile, the access token and the persisted refresh
// token. A refresh still in flight will not restore them.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.generation++
	s.coordinator.Clear()

	if err := s.handle.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

func (s *Session) clearQuietly(ctx context.Context) {
	if err := s.Clear(ctx); err != nil {
		s.logger.Warn("Session: failed to clear session", "error", err)
	}
}

func (s *Session) currentGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.generation
}
