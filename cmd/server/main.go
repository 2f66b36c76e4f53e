package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	httpContext "github.com/dtroode/authsession/internal/api/http/context"
	"github.com/dtroode/authsession/internal/api/http/router"
	httpServer "github.com/dtroode/authsession/internal/api/http/server"
	"github.com/dtroode/authsession/internal/config"
	"github.com/dtroode/authsession/internal/hasher"
	"github.com/dtroode/authsession/internal/logger"
	"github.com/dtroode/authsession/internal/metrics"
	"github.com/dtroode/authsession/internal/model"
	"github.com/dtroode/authsession/internal/repository"
	"github.com/dtroode/authsession/internal/server"
	"github.com/dtroode/authsession/internal/service"
	"github.com/dtroode/authsession/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	stores, err := repository.Open(ctx, cfg.Storage.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer stores.Close()
	logger.Info("storage initialized", "backend", stores.Backend)

	tokenManager := token.NewJWT(cfg.JWT.AccessKey(), cfg.JWT.RefreshKey(), cfg.JWT.AccessTTL.Duration(), cfg.JWT.RefreshTTL.Duration())
	tokenService := service.NewTokenService(tokenManager, stores.Users, stores.RefreshTokens, hasher.NewToken(cfg.Auth.BcryptCost), logger)
	authService := service.NewAuth(stores.Users, hasher.NewBcrypt(cfg.Auth.BcryptCost), tokenService, model.LogoutScope(cfg.Auth.LogoutScope), logger)

	r := router.New(authService, tokenService, httpContext.NewManager(), stores.Pinger, metrics.New(), logger)
	srv := httpServer.NewHTTPServer(r.Register(), cfg.HTTP.Address, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
	sl := server.NewSecurityLayer(cfg.HTTP)

	var wg sync.WaitGroup
	wg.Add(2)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	go func() {
		defer wg.Done()
		service.NewJanitor(tokenService, cfg.Auth.CleanupInterval, logger).Run(ctx)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
