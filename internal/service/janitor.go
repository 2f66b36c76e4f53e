package service

import (
	"context"
	"time"

	"github.com/dtroode/authsession/internal/logger"
)

// ExpiredTokenRemover purges refresh records past their expiry.
type ExpiredTokenRemover interface {
	RemoveExpired(ctx context.Context) (int64, error)
}

// Janitor periodically removes expired refresh records.
type Janitor struct {
	remover  ExpiredTokenRemover
	interval time.Duration
	logger   *logger.Logger
}

func NewJanitor(remover ExpiredTokenRemover, interval time.Duration, logger *logger.Logger) *Janitor {
	return &Janitor{remover: remover, interval: interval, logger: logger}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.sweep(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	n, err := j.remover.RemoveExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Error("Janitor: failed to remove expired refresh tokens",
				"error", err.Error())
		}
		return
	}
	if n > 0 {
		j.logger.Info("Janitor: removed expired refresh tokens",
			"count", n)
	}
}
