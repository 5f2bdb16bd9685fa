package postgres

import (
	"context"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"gorm.io/gorm"
)

type MembershipStorage struct {
	db *gorm.DB
}

func NewMembershipStorage(db *gorm.DB) *MembershipStorage {
	return &MembershipStorage{
		db: db,
	}
}

func (s *MembershipStorage) Create(ctx context.Context, studentID, clubID string) (*entity.Membership, error) {
	membership := &entity.Membership{StudentID: studentID, ClubID: clubID}
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := lockClubTx(tx, clubID, "SHARE"); err != nil {
			return err
		}

		var existing int64
		err := tx.Model(&entity.Membership{}).
			Where("student_id = ? AND club_id = ?", studentID, clubID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return errorz.ErrAlreadyMember
		}

		if err = tx.Create(membership).Error; err != nil {
			if isUniqueViolation(err, "") {
				return errorz.ErrAlreadyMember
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *MembershipStorage) Delete(ctx context.Context, studentID, clubID string) error {
	res := s.db.WithContext(ctx).
		Where("student_id = ? AND club_id = ?", studentID, clubID).
		Delete(&entity.Membership{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errorz.ErrNotMember
	}
	return nil
}

func (s *MembershipStorage) Exists(ctx context.Context, studentID, clubID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.Membership{}).
		Where("student_id = ? AND club_id = ?", studentID, clubID).
		Count(&count).Error
	return count > 0, err
}

// GetByStudentID returns the clubs the student belongs to, ordered by club name.
func (s *MembershipStorage) GetByStudentID(ctx context.Context, studentID string) ([]dto.MyClub, error) {
	result := make([]dto.MyClub, 0)
	err := s.db.WithContext(ctx).
		Table("memberships").
		Select("clubs.id AS club_id, clubs.name, clubs.description, clubs.logo_url, memberships.joined_at").
		Joins("JOIN clubs ON clubs.id = memberships.club_id").
		Where("memberships.student_id = ?", studentID).
		Order("clubs.name").
		Scan(&result).Error
	return result, err
}

// GetByClubID returns the members of a club in joining order.
func (s *MembershipStorage) GetByClubID(ctx context.Context, clubID string) ([]dto.ClubMember, error) {
	result := make([]dto.ClubMember, 0)
	err := s.db.WithContext(ctx).
		Table("memberships").
		Select("memberships.student_id, users.name, users.email, memberships.joined_at").
		Joins("JOIN users ON users.id = memberships.student_id").
		Where("memberships.club_id = ?", clubID).
		Order("memberships.joined_at").
		Scan(&result).Error
	return result, err
}

func (s *MembershipStorage) CountByClubID(ctx context.Context, clubID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Membership{}).Where("club_id = ?", clubID).Count(&count).Error
	return count, err
}
