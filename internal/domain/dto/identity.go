package dto

import "github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"

// Identity is the authenticated caller as reported by the identity provider.
type Identity struct {
	UserID string
	Role   entity.Role
}
