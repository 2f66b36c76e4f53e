package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/authsession/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Add(ctx context.Context, record model.RefreshTokenRecord) error {
	const query = `
        INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.Exec(ctx, query, uuid.New(), record.UserID, record.TokenHash, record.ExpiresAt, createdAt)
	if err != nil {
		return fmt.Errorf("failed to add refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RefreshTokenRecord, error) {
	const query = `
        SELECT user_id, token_hash, expires_at, created_at
        FROM refresh_tokens WHERE user_id = $1
        ORDER BY created_at DESC
    `

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh tokens: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.RefreshTokenRecord, error) {
		var rec model.RefreshTokenRecord
		err := row.Scan(&rec.UserID, &rec.TokenHash, &rec.ExpiresAt, &rec.CreatedAt)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan refresh tokens: %w", err)
	}

	return records, nil
}

func (r *RefreshTokenRepository) Remove(ctx context.Context, userID uuid.UUID, tokenHash string) (bool, error) {
	const query = `DELETE FROM refresh_tokens WHERE user_id = $1 AND token_hash = $2`

	tag, err := r.db.Exec(ctx, query, userID, tokenHash)
	if err != nil {
		return false, fmt.Errorf("failed to remove refresh token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RefreshTokenRepository) RemoveAllByUser(ctx context.Context, userID uuid.UUID) error {
	const query = `DELETE FROM refresh_tokens WHERE user_id = $1`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to remove refresh tokens by user: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) RemoveExpired(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at < $1`

	tag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to remove expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
