package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authsession/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *DB
}

func NewRefreshTokenRepository(db *DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Add(_ context.Context, record model.RefreshTokenRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.tokens[record.UserID] = append(r.db.tokens[record.UserID], record)
	return nil
}

func (r *RefreshTokenRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]model.RefreshTokenRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return slices.Clone(r.db.tokens[userID]), nil
}

func (r *RefreshTokenRepository) Remove(_ context.Context, userID uuid.UUID, tokenHash string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	records := r.db.tokens[userID]
	idx := slices.IndexFunc(records, func(rec model.RefreshTokenRecord) bool {
		return rec.TokenHash == tokenHash
	})
	if idx < 0 {
		return false, nil
	}

	r.db.tokens[userID] = slices.Delete(records, idx, idx+1)
	return true, nil
}

func (r *RefreshTokenRepository) RemoveAllByUser(_ context.Context, userID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.tokens, userID)
	return nil
}

func (r *RefreshTokenRepository) RemoveExpired(_ context.Context, before time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var removed int64
	for userID, records := range r.db.tokens {
		kept := slices.DeleteFunc(records, func(rec model.RefreshTokenRecord) bool {
			if rec.ExpiresAt.Before(before) {
				removed++
				return true
			}
			return false
		})
		if len(kept) == 0 {
			delete(r.db.tokens, userID)
			continue
		}
		r.db.tokens[userID] = kept
	}
	return removed, nil
}
