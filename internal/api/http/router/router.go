package router

import (
	"net/http"

	"github.com/dtroode/authsession/internal/api/http/handler"
	"github.com/dtroode/authsession/internal/api/http/middleware"
	"github.com/dtroode/authsession/internal/logger"
	"github.com/dtroode/authsession/internal/metrics"
	"github.com/dtroode/authsession/internal/model"
)

// Router wires handlers and middleware onto a ServeMux.
type Router struct {
	authService    handler.AuthService
	tokenService   middleware.TokenService
	contextManager model.ContextManager
	pinger         model.Pinger
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

func New(
	authService handler.AuthService,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	pinger model.Pinger,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		tokenService:   tokenService,
		contextManager: contextManager,
		pinger:         pinger,
		metrics:        metrics,
		logger:         logger,
	}
}

// Register returns the root handler of the API.
func (r *Router) Register() http.Handler {
	mux := http.NewServeMux()

	r.registerAuthRoutes(mux)
	r.registerOpsRoutes(mux)

	logging := middleware.NewLogging(r.logger)
	observe := middleware.NewMetrics(r.metrics)

	return logging.Handle(observe.Handle(mux))
}

func (r *Router) registerAuthRoutes(mux *http.ServeMux) {
	authHandler := handler.NewAuth(r.authService, r.contextManager, r.metrics, r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /auth/refresh", authHandler.Refresh)
	mux.Handle("POST /auth/logout", authenticate.Handle(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /users/me", authenticate.Handle(http.HandlerFunc(authHandler.Me)))
}

func (r *Router) registerOpsRoutes(mux *http.ServeMux) {
	health := handler.NewHealth(r.pinger, r.logger)

	mux.HandleFunc("GET /healthz", health.Check)
	mux.Handle("GET /metrics", r.metrics.Handler())
}
