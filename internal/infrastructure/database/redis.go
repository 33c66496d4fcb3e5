package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedis connects to Redis and waits until it answers PING
func NewRedis(ctx context.Context, addr, pass string, db int, log zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})

	op := func() error { return client.Ping(ctx).Err() }
	if err := retry(ctx, op, "redis", log); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}
