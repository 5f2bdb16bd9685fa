package emails

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/redis/go-redis/v9"
)

// Storage throttles outgoing mail per address.
type Storage struct {
	redis *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		redis: client,
	}
}

func cooldownKey(email, emailContext string) string {
	return fmt.Sprintf("cooldown:%s:%s", emailContext, strings.ToLower(email))
}

// Acquire reports whether a mail of the given context may be sent to email now.
// A successful acquire blocks the next one for cooldown.
func (s *Storage) Acquire(ctx context.Context, email, emailContext string, cooldown time.Duration) (bool, error) {
	ok, err := s.redis.SetNX(ctx, cooldownKey(email, emailContext), time.Now().Unix(), cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", errorz.ErrTransient, err)
	}
	return ok, nil
}

// Release lifts the cooldown, used when the mail could not be sent after all.
func (s *Storage) Release(ctx context.Context, email, emailContext string) error {
	if err := s.redis.Del(ctx, cooldownKey(email, emailContext)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errorz.ErrTransient, err)
	}
	return nil
}
