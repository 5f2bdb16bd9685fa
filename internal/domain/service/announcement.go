package service

import (
	"context"
	"fmt"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/utils/sanitize"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
)

type AnnouncementStorage interface {
	Create(ctx context.Context, announcement *entity.Announcement) (*entity.Announcement, error)
	GetByClubID(ctx context.Context, clubID string) ([]entity.Announcement, error)
	Feed(ctx context.Context, studentID string) ([]dto.FeedItem, error)
	Delete(ctx context.Context, clubID, id string) error
}

type AnnouncementService struct {
	logger  *types.Logger
	metrics metricsRecorder

	storage     AnnouncementStorage
	clubStorage clubGetter
}

func NewAnnouncementService(logger *types.Logger, metrics metricsRecorder, storage AnnouncementStorage, clubStorage clubGetter) *AnnouncementService {
	return &AnnouncementService{
		logger:      logger,
		metrics:     metrics,
		storage:     storage,
		clubStorage: clubStorage,
	}
}

// Post publishes an announcement. Only the club's admin may post.
func (s *AnnouncementService) Post(ctx context.Context, caller dto.Identity, clubID, title, message string) (announcement *entity.Announcement, err error) {
	defer func() { s.metrics.Record("announcement_post", err) }()

	if _, err = requireClubAdmin(ctx, s.clubStorage, caller, clubID); err != nil {
		return nil, err
	}

	title = sanitize.Text(title)
	message = sanitize.Rich(message)
	if title == "" {
		return nil, errorz.Invalid("title", "is empty")
	}
	if message == "" {
		return nil, errorz.Invalid("message", "is empty")
	}

	announcement, err = s.storage.Create(ctx, &entity.Announcement{
		ClubID:  clubID,
		Title:   title,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("post announcement to club %s: %w", clubID, err)
	}

	s.logger.Infof("announcement posted (announcement_id=%s, club_id=%s)", announcement.ID, clubID)
	return announcement, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, caller dto.Identity, clubID, id string) (err error) {
	defer func() { s.metrics.Record("announcement_delete", err) }()

	club, err := s.clubStorage.Get(ctx, clubID)
	if err != nil {
		return err
	}
	if !caller.Role.CanManagePlatform() && !isClubAdmin(caller, club) {
		return errorz.ErrNotClubAdmin
	}
	return s.storage.Delete(ctx, clubID, id)
}

// ListByClub returns a club's announcements, newest first.
func (s *AnnouncementService) ListByClub(ctx context.Context, clubID string) ([]entity.Announcement, error) {
	if _, err := s.clubStorage.Get(ctx, clubID); err != nil {
		return nil, err
	}
	return s.storage.GetByClubID(ctx, clubID)
}

// Feed returns announcements of every club the caller is currently a member of, newest first.
func (s *AnnouncementService) Feed(ctx context.Context, caller dto.Identity) ([]dto.FeedItem, error) {
	return s.storage.Feed(ctx, caller.UserID)
}
