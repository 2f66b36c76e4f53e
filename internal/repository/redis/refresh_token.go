package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/authsession/internal/model"
)

const expiryIndexKey = keyPrefix + "refresh:expiry"

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	c *Client
}

func NewRefreshTokenRepository(c *Client) *RefreshTokenRepository {
	return &RefreshTokenRepository{c: c}
}

func refreshKey(userID uuid.UUID) string {
	return keyPrefix + "refresh:" + userID.String()
}

func expiryMember(userID uuid.UUID, tokenHash string) string {
	return userID.String() + "|" + tokenHash
}

func (r *RefreshTokenRepository) Add(ctx context.Context, record model.RefreshTokenRecord) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	value := formatUnixNano(record.ExpiresAt) + "|" + formatUnixNano(createdAt)

	_, err := r.c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, refreshKey(record.UserID), record.TokenHash, value)
		pipe.ZAdd(ctx, expiryIndexKey, redis.Z{
			Score:  float64(record.ExpiresAt.UnixMilli()),
			Member: expiryMember(record.UserID, record.TokenHash),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RefreshTokenRecord, error) {
	entries, err := r.c.rdb.HGetAll(ctx, refreshKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh tokens: %w", err)
	}

	records := make([]model.RefreshTokenRecord, 0, len(entries))
	for hash, value := range entries {
		expires, created, ok := strings.Cut(value, "|")
		if !ok {
			return nil, fmt.Errorf("malformed refresh token entry for user %s", userID)
		}
		rec := model.RefreshTokenRecord{UserID: userID, TokenHash: hash}
		if rec.ExpiresAt, err = parseUnixNano(expires); err != nil {
			return nil, fmt.Errorf("failed to parse refresh token expiry: %w", err)
		}
		if rec.CreatedAt, err = parseUnixNano(created); err != nil {
			return nil, fmt.Errorf("failed to parse refresh token creation time: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *RefreshTokenRepository) Remove(ctx context.Context, userID uuid.UUID, tokenHash string) (bool, error) {
	var del *redis.IntCmd
	_, err := r.c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.HDel(ctx, refreshKey(userID), tokenHash)
		pipe.ZRem(ctx, expiryIndexKey, expiryMember(userID, tokenHash))
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove refresh token: %w", err)
	}
	return del.Val() > 0, nil
}

func (r *RefreshTokenRepository) RemoveAllByUser(ctx context.Context, userID uuid.UUID) error {
	hashes, err := r.c.rdb.HKeys(ctx, refreshKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list refresh tokens by user: %w", err)
	}

	_, err = r.c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, refreshKey(userID))
		if len(hashes) > 0 {
			members := make([]any, 0, len(hashes))
			for _, h := range hashes {
				members = append(members, expiryMember(userID, h))
			}
			pipe.ZRem(ctx, expiryIndexKey, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove refresh tokens by user: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) RemoveExpired(ctx context.Context, before time.Time) (int64, error) {
	members, err := r.c.rdb.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to scan expired refresh tokens: %w", err)
	}
	if len(members) == 0 {
		return 0, nil
	}

	dels := make([]*redis.IntCmd, 0, len(members))
	_, err = r.c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range members {
			rawID, hash, ok := strings.Cut(m, "|")
			if !ok {
				pipe.ZRem(ctx, expiryIndexKey, m)
				continue
			}
			userID, err := uuid.Parse(rawID)
			if err != nil {
				pipe.ZRem(ctx, expiryIndexKey, m)
				continue
			}
			dels = append(dels, pipe.HDel(ctx, refreshKey(userID), hash))
			pipe.ZRem(ctx, expiryIndexKey, m)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove expired refresh tokens: %w", err)
	}

	var removed int64
	for _, d := range dels {
		removed += d.Val()
	}
	return removed, nil
}
