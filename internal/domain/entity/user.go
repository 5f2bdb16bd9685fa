package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null;uniqueIndex"`
	// PasswordHash is nil for accounts that only sign in through a federated identity.
	PasswordHash     *string
	Role             Role `gorm:"not null;default:STUDENT;index"`
	IsVerified       bool `gorm:"not null;default:false"`
	AvatarURL        string
	ResetToken       *string `gorm:"uniqueIndex"`
	ResetTokenExpiry *time.Time
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}
