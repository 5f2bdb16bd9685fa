package codes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/redis/go-redis/v9"
)

// Code contexts.
const (
	ContextVerify = "verify"
)

type Storage struct {
	redis *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		redis: client,
	}
}

type Code = dto.Code

func codeKey(userID string) string {
	return "code:" + userID
}

func attemptsKey(userID string) string {
	return "code-attempts:" + userID
}

// Get returns the stored code for the user. A missing or expired code yields an empty Code.
func (s *Storage) Get(ctx context.Context, userID string) (Code, error) {
	codeData, err := s.redis.Get(ctx, codeKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Code{}, nil
		}
		return Code{}, fmt.Errorf("%w: %v", errorz.ErrTransient, err)
	}

	codeSlice := strings.Split(codeData, ":")
	switch len(codeSlice) {
	case 1:
		return Code{
			Code:        codeSlice[0],
			CodeContext: "",
		}, nil
	case 2:
		return Code{
			Code:        codeSlice[0],
			CodeContext: codeSlice[1],
		}, nil
	}

	return Code{}, errorz.ErrInvalidCode
}

// Set stores a fresh code and resets the failed attempts counter.
func (s *Storage) Set(ctx context.Context, userID, code, codeContext string, expiration time.Duration) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, codeKey(userID), fmt.Sprintf("%s:%s", code, codeContext), expiration)
		pipe.Del(ctx, attemptsKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errorz.ErrTransient, err)
	}
	return nil
}

// Attempt counts a failed check against the user's current code and returns the running total.
// The counter lives as long as the code.
func (s *Storage) Attempt(ctx context.Context, userID string, expiration time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, attemptsKey(userID))
		pipe.Expire(ctx, attemptsKey(userID), expiration)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errorz.ErrTransient, err)
	}
	return incr.Val(), nil
}

func (s *Storage) Clear(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, codeKey(userID), attemptsKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errorz.ErrTransient, err)
	}
	return nil
}
