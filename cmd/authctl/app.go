package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dtroode/authsession/internal/client"
	"github.com/dtroode/authsession/internal/client/config"
	"github.com/dtroode/authsession/internal/client/storage"
	"github.com/dtroode/authsession/internal/logger"
)

const memoryDSN = ":memory:"

// app is the composition root of one authctl invocation.
type app struct {
	cfg         *config.Config
	logger      *logger.Logger
	store       *storage.SQLite
	coordinator *client.Coordinator
	handle      *client.RefreshHandle
	session     *client.Session
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel)

	if cfg.StateDSN != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(cfg.StateDSN), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store, err := storage.OpenSQLite(ctx, cfg.StateDSN)
	if err != nil {
		return nil, err
	}

	coordinator := client.NewCoordinator()
	handle := client.NewRefreshHandle(store)
	api := client.NewAPI(cfg.ServerURL, coordinator, nil, cfg.RequestTimeout)

	return &app{
		cfg:         cfg,
		logger:      log,
		store:       store,
		coordinator: coordinator,
		handle:      handle,
		session:     client.NewSession(api, coordinator, handle, log),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
