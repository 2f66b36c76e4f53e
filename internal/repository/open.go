// Package repository selects a credential store backend from a DSN.
package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dtroode/authsession/internal/model"
	"github.com/dtroode/authsession/internal/repository/memory"
	"github.com/dtroode/authsession/internal/repository/postgres"
	"github.com/dtroode/authsession/internal/repository/redis"
)

// Stores is an opened backend.
type Stores struct {
	Users         model.UserStore
	RefreshTokens model.RefreshTokenStore
	Pinger        model.Pinger
	Backend       string

	close func() error
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the backend named by the DSN scheme: postgres or
// postgresql, redis or rediss, memory.
func Open(ctx context.Context, dsn string) (*Stores, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse storage dsn: %w", err)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		conn, err := postgres.NewConnection(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:         postgres.NewUserRepository(conn),
			RefreshTokens: postgres.NewRefreshTokenRepository(conn),
			Pinger:        conn,
			Backend:       "postgres",
			close:         conn.Close,
		}, nil
	case "redis", "rediss":
		c, err := redis.NewClient(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:         redis.NewUserRepository(c),
			RefreshTokens: redis.NewRefreshTokenRepository(c),
			Pinger:        c,
			Backend:       "redis",
			close:         c.Close,
		}, nil
	case "memory":
		db := memory.NewDB()
		return &Stores{
			Users:         memory.NewUserRepository(db),
			RefreshTokens: memory.NewRefreshTokenRepository(db),
			Pinger:        db,
			Backend:       "memory",
			close:         db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", u.Scheme)
	}
}
