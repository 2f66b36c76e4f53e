package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// Create returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, user User) (User, error)
}

// User represents a stored user with authentication material.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicID returns the canonical string form of the user identifier.
func (u User) PublicID() string {
	return u.ID.String()
}

// Profile returns the user without authentication material.
func (u User) Profile() Profile {
	return Profile{
		ID:          u.PublicID(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}

// Profile is the sanitized user representation returned to clients.
type Profile struct {
	ID          string
	Email       string
	DisplayName string
}
