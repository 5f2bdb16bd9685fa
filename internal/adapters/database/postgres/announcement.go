package postgres

import (
	"context"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"gorm.io/gorm"
)

type AnnouncementStorage struct {
	db *gorm.DB
}

func NewAnnouncementStorage(db *gorm.DB) *AnnouncementStorage {
	return &AnnouncementStorage{
		db: db,
	}
}

func (s *AnnouncementStorage) Create(ctx context.Context, announcement *entity.Announcement) (*entity.Announcement, error) {
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := lockClubTx(tx, announcement.ClubID, "SHARE"); err != nil {
			return err
		}
		return tx.Create(announcement).Error
	})
	if err != nil {
		return nil, err
	}
	return announcement, nil
}

// GetByClubID returns the club's announcements, newest first.
func (s *AnnouncementStorage) GetByClubID(ctx context.Context, clubID string) ([]entity.Announcement, error) {
	announcements := make([]entity.Announcement, 0)
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).Order("created_at DESC").Find(&announcements).Error
	return announcements, err
}

// Feed returns the announcements of every club the student is currently a member of,
// newest first. It is computed from memberships on every call.
func (s *AnnouncementStorage) Feed(ctx context.Context, studentID string) ([]dto.FeedItem, error) {
	result := make([]dto.FeedItem, 0)
	err := s.db.WithContext(ctx).
		Table("announcements").
		Select("announcements.id AS announcement_id, announcements.club_id, clubs.name AS club_name, " +
			"announcements.title, announcements.message, announcements.created_at").
		Joins("JOIN memberships ON memberships.club_id = announcements.club_id").
		Joins("JOIN clubs ON clubs.id = announcements.club_id").
		Where("memberships.student_id = ?", studentID).
		Order("announcements.created_at DESC").
		Scan(&result).Error
	return result, err
}

func (s *AnnouncementStorage) Delete(ctx context.Context, clubID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND club_id = ?", id, clubID).Delete(&entity.Announcement{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errorz.ErrAnnouncementNotFound
	}
	return nil
}
