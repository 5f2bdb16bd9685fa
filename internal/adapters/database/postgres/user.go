package postgres

import (
	"context"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"gorm.io/gorm"
)

type UserStorage struct {
	db *gorm.DB
}

func NewUserStorage(db *gorm.DB) *UserStorage {
	return &UserStorage{
		db: db,
	}
}

// Create is a function that creates a new user in the database.
func (s *UserStorage) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	err := s.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if isUniqueViolation(err, "email") {
			return nil, errorz.ErrEmailTaken
		}
		return nil, translateError(err)
	}
	return user, nil
}

// Get is a function that gets a user from the database by id.
func (s *UserStorage) Get(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, notFound(err, errorz.ErrUserNotFound)
	}
	return &user, nil
}

// GetByEmail is a function that gets a user from the database by email.
func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, notFound(err, errorz.ErrUserNotFound)
	}
	return &user, nil
}

// GetAll is a function that gets all users from the database.
func (s *UserStorage) GetAll(ctx context.Context) ([]entity.User, error) {
	users := make([]entity.User, 0)
	err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error
	return users, err
}

// Count is a function that gets the count of users from the database.
func (s *UserStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error
	return count, err
}

// UpdateProfile updates the name and avatar only. Role is never written here.
func (s *UserStorage) UpdateProfile(ctx context.Context, id string, name, avatarURL *string) (*entity.User, error) {
	columns := map[string]interface{}{}
	if name != nil {
		columns["name"] = *name
	}
	if avatarURL != nil {
		columns["avatar_url"] = *avatarURL
	}

	if len(columns) > 0 {
		res := s.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(columns)
		if res.Error != nil {
			return nil, translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, errorz.ErrUserNotFound
		}
	}
	return s.Get(ctx, id)
}

func (s *UserStorage) MarkVerified(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Update("is_verified", true)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errorz.ErrUserNotFound
	}
	return nil
}

func (s *UserStorage) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	res := s.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errorz.ErrUserNotFound
	}
	return nil
}

// ResetPassword consumes a reset token that has not expired at now and stores the new hash.
func (s *UserStorage) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (*entity.User, error) {
	var user entity.User
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		err := tx.Where("reset_token = ?", token).First(&user).Error
		if err != nil {
			return notFound(err, errorz.ErrInvalidToken)
		}
		if user.ResetTokenExpiry == nil || now.After(*user.ResetTokenExpiry) {
			return errorz.ErrInvalidToken
		}

		res := tx.Model(&entity.User{}).
			Where("id = ? AND reset_token = ?", user.ID, token).
			Updates(map[string]interface{}{
				"password_hash":      passwordHash,
				"reset_token":        nil,
				"reset_token_expiry": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errorz.ErrConcurrentUpdate
		}
		user.PasswordHash = &passwordHash
		user.ResetToken = nil
		user.ResetTokenExpiry = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes an account that never got past verification.
// Accounts holding a role other than STUDENT are left alone.
func (s *UserStorage) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, entity.RoleStudent).
		Delete(&entity.User{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errorz.ErrUserNotFound
	}
	return nil
}

// MakeSuperAdmin grants SUPER_ADMIN to a user that does not administer a club.
func (s *UserStorage) MakeSuperAdmin(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return notFound(err, errorz.ErrUserNotFound)
		}
		switch user.Role {
		case entity.RoleSuperAdmin:
			return nil
		case entity.RoleClubAdmin:
			return errorz.ErrAlreadyClubAdmin
		case entity.RoleStudent:
		}

		res := tx.Model(&entity.User{}).
			Where("id = ? AND role = ?", id, entity.RoleStudent).
			Update("role", entity.RoleSuperAdmin)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errorz.ErrConcurrentUpdate
		}
		user.Role = entity.RoleSuperAdmin
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
