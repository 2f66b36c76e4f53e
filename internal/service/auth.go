package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/authsession/internal/api/errors"
	"github.com/dtroode/authsession/internal/logger"
	"github.com/dtroode/authsession/internal/model"
)

// Auth implements registration, login, refresh, logout and profile lookup.
type Auth struct {
	userStore    model.UserStore
	passwords    model.Hasher
	tokenService *TokenService
	logoutScope  model.LogoutScope
	logger       *logger.Logger

	decoyOnce sync.Once
	decoyHash string
}

func NewAuth(
	userStore model.UserStore,
	passwords model.Hasher,
	tokenService *TokenService,
	logoutScope model.LogoutScope,
	logger *logger.Logger,
) *Auth {
	if logoutScope == "" {
		logoutScope = model.LogoutScopeAll
	}
	return &Auth{
		userStore:    userStore,
		passwords:    passwords,
		tokenService: tokenService,
		logoutScope:  logoutScope,
		logger:       logger,
	}
}

func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.AuthResult, error) {
	email := normalizeEmail(params.Email)
	displayName := strings.TrimSpace(params.DisplayName)

	a.logger.Debug("Auth service: starting user registration",
		"email", email)

	if err := validateEmail(email); err != nil {
		return model.AuthResult{}, err
	}
	if err := validatePassword(params.Password); err != nil {
		return model.AuthResult{}, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return model.AuthResult{}, err
	}

	_, err := a.userStore.GetByEmail(ctx, email)
	if err == nil {
		a.logger.Info("Auth service: user already exists",
			"email", email)
		return model.AuthResult{}, apiErrors.NewErrEmailIsTaken()
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := a.passwords.Hash(params.Password)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.AuthResult{}, apiErrors.NewErrEmailIsTaken()
		}
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	result, err := a.tokenService.Issue(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.PublicID(),
			"error", err.Error())
		return model.AuthResult{}, err
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.PublicID())
	return result, nil
}

func (a *Auth) Login(ctx context.Context, params model.LoginParams) (model.AuthResult, error) {
	email := normalizeEmail(params.Email)
	if email == "" {
		return model.AuthResult{}, apiErrors.NewErrValidation("email is required")
	}
	if params.Password == "" {
		return model.AuthResult{}, apiErrors.NewErrValidation("password is required")
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Spend the same bcrypt work as a real comparison.
			_, _ = a.passwords.Compare(params.Password, a.decoy())
			a.logger.Info("Auth service: login for unknown email",
				"email", email)
			return model.AuthResult{}, apiErrors.NewErrInvalidCredentials()
		}
		return model.AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	ok, err := a.passwords.Compare(params.Password, user.PasswordHash)
	if err != nil {
		a.logger.Error("Auth service: stored password hash is unreadable",
			"user_id", user.PublicID(),
			"error", err.Error())
		return model.AuthResult{}, apiErrors.NewErrInvalidCredentials()
	}
	if !ok {
		a.logger.Info("Auth service: password mismatch",
			"user_id", user.PublicID())
		return model.AuthResult{}, apiErrors.NewErrInvalidCredentials()
	}

	result, err := a.tokenService.Issue(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.PublicID(),
			"error", err.Error())
		return model.AuthResult{}, err
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.PublicID())
	return result, nil
}

func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.AuthResult, error) {
	if refreshToken == "" {
		return model.AuthResult{}, apiErrors.NewErrValidation("refresh token is required")
	}
	return a.tokenService.Refresh(ctx, refreshToken)
}

func (a *Auth) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if refreshToken == "" {
		return apiErrors.NewErrValidation("refresh token is required")
	}

	if err := a.tokenService.Revoke(ctx, userID, refreshToken, a.logoutScope); err != nil {
		a.logger.Error("Auth service: logout failed",
			"user_id", userID.String(),
			"error", err.Error())
		return err
	}

	a.logger.Info("Auth service: user logged out",
		"user_id", userID.String(),
		"scope", string(a.logoutScope))
	return nil
}

func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Profile{}, apiErrors.NewErrUserNotFound()
		}
		return model.Profile{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user.Profile(), nil
}

func (a *Auth) decoy() string {
	a.decoyOnce.Do(func() {
		hash, err := a.passwords.Hash(uuid.NewString())
		if err != nil {
			a.logger.Warn("Auth service: failed to prepare decoy hash",
				"error", err.Error())
			return
		}
		a.decoyHash = hash
	})
	return a.decoyHash
}
