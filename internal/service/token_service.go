package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/authsession/internal/api/errors"
	"github.com/dtroode/authsession/internal/logger"
	"github.com/dtroode/authsession/internal/model"
)

// TokenService issues token pairs and enforces single-use rotation of
// refresh tokens against the per-user record set.
type TokenService struct {
	codec  model.TokenCodec
	users  model.UserStore
	store  model.RefreshTokenStore
	hasher model.Hasher
	logger *logger.Logger
	now    func() time.Time
}

type TokenServiceOption func(*TokenService)

// WithTokenClock overrides the clock used for record expiry checks.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(
	codec model.TokenCodec,
	users model.UserStore,
	store model.RefreshTokenStore,
	hasher model.Hasher,
	logger *logger.Logger,
	opts ...TokenServiceOption,
) *TokenService {
	s := &TokenService{
		codec:  codec,
		users:  users,
		store:  store,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a new pair for the user and records the refresh token hash.
func (s *TokenService) Issue(ctx context.Context, user model.User) (model.AuthResult, error) {
	subject := model.Subject{UserID: user.ID, Email: user.Email}

	access, err := s.codec.GenerateAccessToken(subject)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.codec.GenerateRefreshToken(subject)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue refresh: %w", err)
	}

	hash, err := s.hasher.Hash(refresh.Token)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("hash refresh: %w", err)
	}

	record := model.RefreshTokenRecord{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: refresh.ExpiresAt,
		CreatedAt: s.now(),
	}
	if err := s.store.Add(ctx, record); err != nil {
		return model.AuthResult{}, fmt.Errorf("persist refresh: %w", err)
	}

	return model.AuthResult{
		TokenPair: model.TokenPair{
			AccessToken:           access.Token,
			AccessTokenExpiresAt:  access.ExpiresAt,
			RefreshToken:          refresh.Token,
			RefreshTokenExpiresAt: refresh.ExpiresAt,
		},
		User: user.Profile(),
	}, nil
}

// Refresh consumes the presented refresh token and issues a new pair.
func (s *TokenService) Refresh(ctx context.Context, presented string) (model.AuthResult, error) {
	claims, err := s.codec.ParseRefreshToken(presented)
	if err != nil {
		s.logger.Debug("Token service: refresh token rejected",
			"error", err.Error())
		return model.AuthResult{}, apiErrors.NewErrInvalidRefreshToken()
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.AuthResult{}, apiErrors.NewErrRefreshUserNotFound()
		}
		return model.AuthResult{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	record, found, err := s.match(ctx, user.ID, presented)
	if err != nil {
		return model.AuthResult{}, err
	}
	if !found {
		s.logger.Warn("Token service: refresh token has no live record",
			"user_id", user.PublicID(),
			"token_id", claims.TokenID)
		return model.AuthResult{}, apiErrors.NewErrRefreshTokenRevoked()
	}

	if record.Expired(s.now()) {
		if _, err := s.store.Remove(ctx, user.ID, record.TokenHash); err != nil {
			return model.AuthResult{}, fmt.Errorf("remove expired refresh: %w", err)
		}
		return model.AuthResult{}, apiErrors.NewErrRefreshTokenExpired()
	}

	removed, err := s.store.Remove(ctx, user.ID, record.TokenHash)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("consume refresh: %w", err)
	}
	if !removed {
		s.logger.Warn("Token service: refresh token consumed concurrently",
			"user_id", user.PublicID(),
			"token_id", claims.TokenID)
		return model.AuthResult{}, apiErrors.NewErrRefreshTokenRevoked()
	}

	return s.Issue(ctx, user)
}

// Revoke applies the logout scope when the presented token matches a live
// record of the user. Unknown users and unmatched tokens are ignored.
func (s *TokenService) Revoke(ctx context.Context, userID uuid.UUID, presented string, scope model.LogoutScope) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user by id: %w", err)
	}

	record, found, err := s.match(ctx, userID, presented)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if scope == model.LogoutScopeSingle {
		if _, err := s.store.Remove(ctx, userID, record.TokenHash); err != nil {
			return fmt.Errorf("revoke refresh: %w", err)
		}
		return nil
	}

	if err := s.store.RemoveAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all refresh: %w", err)
	}
	return nil
}

// GetClaims verifies an access token.
func (s *TokenService) GetClaims(_ context.Context, token string) (model.Claims, error) {
	return s.codec.ParseAccessToken(token)
}

// RemoveExpired purges records whose expiry has passed.
func (s *TokenService) RemoveExpired(ctx context.Context) (int64, error) {
	n, err := s.store.RemoveExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("remove expired refresh: %w", err)
	}
	return n, nil
}

func (s *TokenService) match(ctx context.Context, userID uuid.UUID, presented string) (model.RefreshTokenRecord, bool, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return model.RefreshTokenRecord{}, false, fmt.Errorf("list refresh: %w", err)
	}

	for _, rec := range records {
		ok, err := s.hasher.Compare(presented, rec.TokenHash)
		if err != nil {
			s.logger.Warn("Token service: unreadable refresh token hash",
				"user_id", userID.String(),
				"error", err.Error())
			continue
		}
		if ok {
			return rec, true, nil
		}
	}

	return model.RefreshTokenRecord{}, false, nil
}
