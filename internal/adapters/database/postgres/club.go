package postgres

import (
	"context"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClubStorage struct {
	db *gorm.DB
}

func NewClubStorage(db *gorm.DB) *ClubStorage {
	return &ClubStorage{
		db: db,
	}
}

// CreateWithAdmin inserts the club and promotes club.AdminID to CLUB_ADMIN in one transaction.
func (s *ClubStorage) CreateWithAdmin(ctx context.Context, club *entity.Club) (*entity.Club, error) {
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		return createClubTx(tx, club)
	})
	if err != nil {
		return nil, err
	}
	return club, nil
}

func createClubTx(tx *gorm.DB, club *entity.Club) error {
	var taken int64
	if err := tx.Model(&entity.Club{}).Where("name = ?", club.Name).Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return errorz.ErrClubNameTaken
	}

	if err := promoteTx(tx, club.AdminID); err != nil {
		return err
	}

	if err := tx.Create(club).Error; err != nil {
		switch {
		case isUniqueViolation(err, "name"):
			return errorz.ErrClubNameTaken
		case isUniqueViolation(err, "admin_id"):
			return errorz.ErrAlreadyClubAdmin
		}
		return err
	}
	return nil
}

// promoteTx turns a STUDENT into a CLUB_ADMIN. Any other starting role is rejected.
func promoteTx(tx *gorm.DB, userID string) error {
	res := tx.Model(&entity.User{}).
		Where("id = ? AND role = ?", userID, entity.RoleStudent).
		Update("role", entity.RoleClubAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var user entity.User
	if err := tx.Select("id", "role").Where("id = ?", userID).First(&user).Error; err != nil {
		return notFound(err, errorz.ErrUserNotFound)
	}
	switch user.Role {
	case entity.RoleClubAdmin:
		return errorz.ErrAlreadyClubAdmin
	case entity.RoleSuperAdmin:
		return errorz.ErrAdminNotEligible
	case entity.RoleStudent:
		return errorz.ErrConcurrentUpdate
	default:
		return errorz.ErrAdminNotEligible
	}
}

// demoteTx turns a CLUB_ADMIN back into a STUDENT. The caller holds the club row lock,
// so the admin must still be a CLUB_ADMIN here.
func demoteTx(tx *gorm.DB, userID string) error {
	res := tx.Model(&entity.User{}).
		Where("id = ? AND role = ?", userID, entity.RoleClubAdmin).
		Update("role", entity.RoleStudent)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return errorz.ErrConcurrentUpdate
	}
	return nil
}

// lockClubTx loads the club row under a row lock. Writers that change the club itself take
// "UPDATE", writers that hang children off it take "SHARE", so a delete or transfer waits
// for in-flight child inserts and blocks new ones.
func lockClubTx(tx *gorm.DB, id, strength string) (*entity.Club, error) {
	var club entity.Club
	err := tx.Clauses(clause.Locking{Strength: strength}).Where("id = ?", id).First(&club).Error
	if err != nil {
		return nil, notFound(err, errorz.ErrClubNotFound)
	}
	return &club, nil
}

func (s *ClubStorage) Get(ctx context.Context, id string) (*entity.Club, error) {
	var club entity.Club
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&club).Error
	if err != nil {
		return nil, notFound(err, errorz.ErrClubNotFound)
	}
	return &club, nil
}

func (s *ClubStorage) GetByAdminID(ctx context.Context, adminID string) (*entity.Club, error) {
	var club entity.Club
	err := s.db.WithContext(ctx).Where("admin_id = ?", adminID).First(&club).Error
	if err != nil {
		return nil, notFound(err, errorz.ErrClubNotFound)
	}
	return &club, nil
}

const clubWithAdminColumns = "clubs.id, clubs.name, clubs.description, clubs.logo_url, clubs.banner_url, " +
	"clubs.admin_id, clubs.created_at, users.name AS admin_name, users.email AS admin_email"

// GetWithAdmin returns the club joined with its admin's profile.
func (s *ClubStorage) GetWithAdmin(ctx context.Context, id string) (*dto.Club, error) {
	var result []dto.Club
	err := s.db.WithContext(ctx).
		Table("clubs").
		Select(clubWithAdminColumns).
		Joins("JOIN users ON users.id = clubs.admin_id").
		Where("clubs.id = ?", id).
		Limit(1).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, errorz.ErrClubNotFound
	}
	return &result[0], nil
}

// List returns all clubs ordered by name.
func (s *ClubStorage) List(ctx context.Context) ([]dto.Club, error) {
	result := make([]dto.Club, 0)
	err := s.db.WithContext(ctx).
		Table("clubs").
		Select(clubWithAdminColumns).
		Joins("JOIN users ON users.id = clubs.admin_id").
		Order("clubs.name").
		Scan(&result).Error
	return result, err
}

// Update changes the mutable club fields and, when newAdminID names someone other than
// the current admin, transfers ownership: the incoming admin is promoted, the club is
// repointed and the outgoing admin is demoted, all in one transaction.
func (s *ClubStorage) Update(ctx context.Context, id string, update dto.ClubUpdate, newAdminID *string) (*entity.Club, error) {
	var club entity.Club
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		locked, err := lockClubTx(tx, id, "UPDATE")
		if err != nil {
			return err
		}
		club = *locked

		if newAdminID != nil && *newAdminID != club.AdminID {
			if err := promoteTx(tx, *newAdminID); err != nil {
				return err
			}
			res := tx.Model(&entity.Club{}).
				Where("id = ? AND admin_id = ?", id, club.AdminID).
				Update("admin_id", *newAdminID)
			if res.Error != nil {
				if isUniqueViolation(res.Error, "admin_id") {
					return errorz.ErrAlreadyClubAdmin
				}
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errorz.ErrConcurrentUpdate
			}
			if err := demoteTx(tx, club.AdminID); err != nil {
				return err
			}
		}

		if columns := update.Columns(); len(columns) > 0 {
			if err := tx.Model(&entity.Club{}).Where("id = ?", id).Updates(columns).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", id).First(&club).Error
	})
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// Delete removes the club with its events, their registrations, memberships and
// announcements, and demotes the admin, in one transaction. It returns the deleted club.
func (s *ClubStorage) Delete(ctx context.Context, id string) (*entity.Club, error) {
	var club entity.Club
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		locked, err := lockClubTx(tx, id, "UPDATE")
		if err != nil {
			return err
		}
		club = *locked

		// Locking the events makes concurrent registrations either finish first or fail
		// with ErrEventNotFound once this transaction commits.
		var eventIDs []string
		err = tx.Model(&entity.Event{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("club_id = ?", id).
			Pluck("id", &eventIDs).Error
		if err != nil {
			return err
		}
		if len(eventIDs) > 0 {
			if err := tx.Where("event_id IN ?", eventIDs).Delete(&entity.Registration{}).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id IN ?", eventIDs).Delete(&entity.EventNotification{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("club_id = ?", id).Delete(&entity.Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("club_id = ?", id).Delete(&entity.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("club_id = ?", id).Delete(&entity.Announcement{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ? AND admin_id = ?", id, club.AdminID).Delete(&entity.Club{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errorz.ErrConcurrentUpdate
		}

		return demoteTx(tx, club.AdminID)
	})
	if err != nil {
		return nil, err
	}
	return &club, nil
}

func (s *ClubStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Club{}).Count(&count).Error
	return count, err
}
