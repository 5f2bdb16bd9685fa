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

type ClubStorage interface {
	CreateWithAdmin(ctx context.Context, club *entity.Club) (*entity.Club, error)
	Get(ctx context.Context, id string) (*entity.Club, error)
	GetByAdminID(ctx context.Context, adminID string) (*entity.Club, error)
	GetWithAdmin(ctx context.Context, id string) (*dto.Club, error)
	List(ctx context.Context) ([]dto.Club, error)
	Update(ctx context.Context, id string, update dto.ClubUpdate, newAdminID *string) (*entity.Club, error)
	Delete(ctx context.Context, id string) (*entity.Club, error)
	Count(ctx context.Context) (int64, error)
}

type clubUserStorage interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

type assetStore interface {
	Save(ctx context.Context, kind string, data []byte) (string, error)
}

// ClubService owns clubs and the role changes that go with them.
type ClubService struct {
	logger  *types.Logger
	metrics metricsRecorder

	storage     ClubStorage
	userStorage clubUserStorage
	assets      assetStore
}

func NewClubService(
	logger *types.Logger,
	metrics metricsRecorder,
	storage ClubStorage,
	userStorage clubUserStorage,
	assets assetStore,
) *ClubService {
	return &ClubService{
		logger:      logger,
		metrics:     metrics,
		storage:     storage,
		userStorage: userStorage,
		assets:      assets,
	}
}

// Create founds a club administered by the user with adminEmail and promotes that user.
func (s *ClubService) Create(ctx context.Context, caller dto.Identity, name, description, adminEmail string) (club *dto.Club, err error) {
	defer func() { s.metrics.Record("club_create", err) }()

	if err = requireManager(caller); err != nil {
		return nil, err
	}
	name = sanitize.Text(name)
	if name == "" {
		return nil, errorz.Invalid("name", "is empty")
	}

	admin, err := s.userStorage.GetByEmail(ctx, normalizeEmail(adminEmail))
	if err != nil {
		return nil, err
	}

	created, err := s.storage.CreateWithAdmin(ctx, &entity.Club{
		Name:        name,
		Description: sanitize.Rich(description),
		AdminID:     admin.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create club %q: %w", name, err)
	}

	s.logger.Infof("club created (club_id=%s, admin_id=%s, by=%s)", created.ID, admin.ID, caller.UserID)
	result := dto.NewClubFromEntity(*created, *admin)
	return &result, nil
}

// Delete removes the club together with everything hanging off it and demotes its admin.
func (s *ClubService) Delete(ctx context.Context, caller dto.Identity, clubID string) (err error) {
	defer func() { s.metrics.Record("club_delete", err) }()

	if err = requireManager(caller); err != nil {
		return err
	}

	club, err := s.storage.Delete(ctx, clubID)
	if err != nil {
		return fmt.Errorf("delete club %s: %w", clubID, err)
	}

	s.logger.Infof("club deleted (club_id=%s, former_admin_id=%s, by=%s)", club.ID, club.AdminID, caller.UserID)
	return nil
}

// Update changes description, logo and banner. The club admin may edit their own club;
// a super admin may edit any club and, with newAdminEmail, transfer it.
func (s *ClubService) Update(ctx context.Context, caller dto.Identity, clubID string, update dto.ClubUpdate, newAdminEmail *string) (club *dto.Club, err error) {
	defer func() { s.metrics.Record("club_update", err) }()

	current, err := s.storage.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.CanManagePlatform() {
		if newAdminEmail != nil || !isClubAdmin(caller, current) {
			return nil, errorz.ErrForbidden
		}
	}

	if update.Description != nil {
		description := sanitize.Rich(*update.Description)
		update.Description = &description
	}

	var newAdminID *string
	if newAdminEmail != nil {
		newAdmin, err := s.userStorage.GetByEmail(ctx, normalizeEmail(*newAdminEmail))
		if err != nil {
			return nil, err
		}
		newAdminID = &newAdmin.ID
	}

	updated, err := s.storage.Update(ctx, clubID, update, newAdminID)
	if err != nil {
		return nil, fmt.Errorf("update club %s: %w", clubID, err)
	}
	if updated.AdminID != current.AdminID {
		s.logger.Infof("club transferred (club_id=%s, from=%s, to=%s, by=%s)",
			clubID, current.AdminID, updated.AdminID, caller.UserID)
	}

	return s.storage.GetWithAdmin(ctx, clubID)
}

// UploadLogo stores the image first and only then points the club at it.
func (s *ClubService) UploadLogo(ctx context.Context, caller dto.Identity, clubID string, data []byte) (*dto.Club, error) {
	return s.uploadImage(ctx, caller, clubID, "logo", data)
}

func (s *ClubService) UploadBanner(ctx context.Context, caller dto.Identity, clubID string, data []byte) (*dto.Club, error) {
	return s.uploadImage(ctx, caller, clubID, "banner", data)
}

func (s *ClubService) uploadImage(ctx context.Context, caller dto.Identity, clubID, kind string, data []byte) (club *dto.Club, err error) {
	defer func() { s.metrics.Record("club_upload_"+kind, err) }()

	current, err := s.storage.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.CanManagePlatform() && !isClubAdmin(caller, current) {
		return nil, errorz.ErrForbidden
	}

	url, err := s.assets.Save(ctx, "clubs/"+kind, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrAssetStore, err)
	}

	var update dto.ClubUpdate
	switch kind {
	case "logo":
		update.LogoURL = &url
	case "banner":
		update.BannerURL = &url
	}
	if _, err = s.storage.Update(ctx, clubID, update, nil); err != nil {
		return nil, fmt.Errorf("update club %s: %w", clubID, err)
	}
	return s.storage.GetWithAdmin(ctx, clubID)
}

func (s *ClubService) Get(ctx context.Context, id string) (*dto.Club, error) {
	return s.storage.GetWithAdmin(ctx, id)
}

func (s *ClubService) List(ctx context.Context) ([]dto.Club, error) {
	return s.storage.List(ctx)
}

// GetByAdmin returns the club administered by the caller.
func (s *ClubService) GetByAdmin(ctx context.Context, caller dto.Identity) (*dto.Club, error) {
	club, err := s.storage.GetByAdminID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.storage.GetWithAdmin(ctx, club.ID)
}

func (s *ClubService) Count(ctx context.Context) (int64, error) {
	return s.storage.Count(ctx)
}
