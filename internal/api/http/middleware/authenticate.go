package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/authsession/internal/api/errors"
	"github.com/dtroode/authsession/internal/api/http/response"
	"github.com/dtroode/authsession/internal/logger"
	"github.com/dtroode/authsession/internal/model"
)

// TokenService verifies access tokens.
type TokenService interface {
	GetClaims(ctx context.Context, token string) (model.Claims, error)
}

// Authenticate validates bearer tokens and injects their claims into the
// request context. It never consults a store.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.authenticate(r.Context(), bearerToken(r))
		if err != nil {
			response.Error(w, m.logger, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetClaimsToContext(r.Context(), claims)))
	})
}

func (m *Authenticate) authenticate(ctx context.Context, token string) (model.Claims, error) {
	if token == "" {
		return model.Claims{}, apiErrors.NewErrMissingAuthorizationToken()
	}

	claims, err := m.tokenService.GetClaims(ctx, token)
	if err != nil {
		m.logger.Debug("Authenticate: access token rejected",
			"error", err.Error())
		return model.Claims{}, apiErrors.NewErrInvalidAuthorizationToken()
	}

	if claims.UserID == uuid.Nil {
		return model.Claims{}, apiErrors.NewErrInvalidAuthorizationToken()
	}

	return claims, nil
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
