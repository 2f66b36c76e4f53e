// Package redis stores users and refresh token sets in Redis.
//
// Layout:
//
//	authsession:user:{id}          hash with the user fields
//	authsession:user:email:{email} user id, written with SETNX
//	authsession:refresh:{id}       hash of token hash -> "expiresAt|createdAt"
//	authsession:refresh:expiry     sorted set of "{id}|{token hash}" by expiry
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/authsession/internal/model"
)

const keyPrefix = "authsession:"

var _ model.Pinger = (*Client)(nil)

type Client struct {
	rdb redis.UniversalClient
}

// NewClient connects to the server named by a redis:// or rediss:// URL.
func NewClient(ctx context.Context, url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	c := &Client{rdb: redis.NewClient(opts)}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return c, nil
}

// NewClientFromRedis wraps an existing go-redis client.
func NewClientFromRedis(rdb redis.UniversalClient) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
