package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/authsession/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	c *Client
}

func NewUserRepository(c *Client) *UserRepository {
	return &UserRepository{c: c}
}

func userKey(id uuid.UUID) string {
	return keyPrefix + "user:" + id.String()
}

func emailKey(email string) string {
	return keyPrefix + "user:email:" + email
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	raw, err := r.c.rdb.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse user id %q: %w", raw, err)
	}

	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	fields, err := r.c.rdb.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	if len(fields) == 0 {
		return model.User{}, model.ErrNotFound
	}

	user := model.User{
		ID:           id,
		Email:        fields["email"],
		PasswordHash: fields["password_hash"],
		DisplayName:  fields["display_name"],
	}
	if user.CreatedAt, err = parseUnixNano(fields["created_at"]); err != nil {
		return model.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = parseUnixNano(fields["updated_at"]); err != nil {
		return model.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	claimed, err := r.c.rdb.SetNX(ctx, emailKey(user.Email), user.ID.String(), 0).Result()
	if err != nil {
		return model.User{}, fmt.Errorf("failed to reserve email: %w", err)
	}
	if !claimed {
		return model.User{}, model.ErrEmailTaken
	}

	err = r.c.rdb.HSet(ctx, userKey(user.ID),
		"email", user.Email,
		"password_hash", user.PasswordHash,
		"display_name", user.DisplayName,
		"created_at", formatUnixNano(user.CreatedAt),
		"updated_at", formatUnixNano(user.UpdatedAt),
	).Err()
	if err != nil {
		_ = r.c.rdb.Del(ctx, emailKey(user.Email)).Err()
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func formatUnixNano(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.UnixNano(), 10)
}

func parseUnixNano(s string) (time.Time, error) {
	if s == "" || s == "0" {
		return time.Time{}, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n), nil
}
