// Package config holds the authctl client configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

const stateFileName = "state.db"

// Config contains client configuration parameters.
type Config struct {
	ServerURL      string        `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	StateDSN       string        `env:"STATE_DSN"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	LogLevel       int           `env:"LOG_LEVEL" envDefault:"4"`
}

// NewConfig loads configuration from AUTHCTL_* environment variables.
// Without AUTHCTL_STATE_DSN the state lives in the user config directory.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "AUTHCTL_"}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.StateDSN == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve state directory: %w", err)
		}
		cfg.StateDSN = filepath.Join(dir, "authctl", stateFileName)
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("failed to parse config: request timeout must be positive")
	}

	return &cfg, nil
}
