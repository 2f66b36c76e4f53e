package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists the per-user set of live refresh token hashes.
// Each operation is atomic on the store side.
type RefreshTokenStore interface {
	Add(ctx context.Context, record RefreshTokenRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]RefreshTokenRecord, error)
	// Remove deletes the record with the given hash and reports whether it existed.
	Remove(ctx context.Context, userID uuid.UUID, tokenHash string) (bool, error)
	RemoveAllByUser(ctx context.Context, userID uuid.UUID) error
	// RemoveExpired deletes records that expired before the given time.
	RemoveExpired(ctx context.Context, before time.Time) (int64, error)
}

// RefreshTokenRecord is a live refresh token tracked by its one-way hash.
type RefreshTokenRecord struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is past its expiry at now.
func (r RefreshTokenRecord) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}
