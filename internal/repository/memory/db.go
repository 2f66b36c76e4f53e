// Package memory is a process-local credential store. It backs the
// memory:// storage DSN and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/authsession/internal/model"
)

var _ model.Pinger = (*DB)(nil)

// DB holds users and their refresh token sets. A single mutex serializes
// all operations the way a document store serializes per-document updates.
type DB struct {
	mu      sync.Mutex
	users   map[uuid.UUID]model.User
	byEmail map[string]uuid.UUID
	tokens  map[uuid.UUID][]model.RefreshTokenRecord
}

func NewDB() *DB {
	return &DB{
		users:   make(map[uuid.UUID]model.User),
		byEmail: make(map[string]uuid.UUID),
		tokens:  make(map[uuid.UUID][]model.RefreshTokenRecord),
	}
}

func (db *DB) Ping(_ context.Context) error {
	return nil
}

func (db *DB) Close() error {
	return nil
}
