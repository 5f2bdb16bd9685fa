package redis

import (
	"context"
	"fmt"

	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/database/redis/codes"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/database/redis/emails"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	Codes  *codes.Storage
	Emails *emails.Storage

	clients []*redis.Client
}

type Options struct {
	Host     string
	Port     string
	Password string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	codeStorage := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       1,
	})
	if err := codeStorage.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping codes storage: %w", err)
	}

	emailStorage := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       2,
	})
	if err := emailStorage.Ping(ctx).Err(); err != nil {
		_ = codeStorage.Close()
		return nil, fmt.Errorf("failed to ping email storage: %w", err)
	}

	return &Client{
		Codes:   codes.NewStorage(codeStorage),
		Emails:  emails.NewStorage(emailStorage),
		clients: []*redis.Client{codeStorage, emailStorage},
	}, nil
}

func (c *Client) Close() error {
	var firstErr error
	for _, client := range c.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
