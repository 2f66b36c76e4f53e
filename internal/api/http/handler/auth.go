package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/authsession/internal/api/errors"
	"github.com/dtroode/authsession/internal/api/http/dto"
	"github.com/dtroode/authsession/internal/api/http/response"
	"github.com/dtroode/authsession/internal/logger"
	"github.com/dtroode/authsession/internal/model"
)

const maxBodyBytes = 1 << 20

// AuthService defines the session operations served over HTTP.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.AuthResult, error)
	Login(ctx context.Context, params model.LoginParams) (model.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (model.AuthResult, error)
	Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error
	Me(ctx context.Context, userID uuid.UUID) (model.Profile, error)
}

// Observer counts auth outcomes.
type Observer interface {
	ObserveAuth(operation string, err error)
}

// Auth handles the /auth and /users endpoints.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	observer       Observer
	logger         *logger.Logger
}

func NewAuth(authService AuthService, contextManager model.ContextManager, observer Observer, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		observer:       observer,
		logger:         logger,
	}
}

func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	result, err := h.authService.Register(r.Context(), model.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	h.observer.ObserveAuth("register", err)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, dto.FromAuthResult(result))
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decode(w, r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	result, err := h.authService.Login(r.Context(), model.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	h.observer.ObserveAuth("login", err)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.FromAuthResult(result))
}

func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := decode(w, r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	h.observer.ObserveAuth("refresh", err)
	if err != nil {
		h.logger.Info("Auth handler: refresh rejected",
			"error", err.Error())
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.FromAuthResult(result))
}

// Logout requires an authenticated request.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.contextManager.GetClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, h.logger, apiErrors.NewErrMissingAuthorizationToken())
		return
	}

	var req dto.LogoutRequest
	if err := decode(w, r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	err := h.authService.Logout(r.Context(), claims.UserID, req.RefreshToken)
	h.observer.ObserveAuth("logout", err)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me requires an authenticated request.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.contextManager.GetClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, h.logger, apiErrors.NewErrMissingAuthorizationToken())
		return
	}

	profile, err := h.authService.Me(r.Context(), claims.UserID)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.FromProfile(profile))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apiErrors.NewErrValidation("request body too large")
		}
		return apiErrors.NewErrValidation("request body must be a JSON object")
	}
	return nil
}
