package service

import (
	"context"
	"fmt"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
)

type MembershipStorage interface {
	Create(ctx context.Context, studentID, clubID string) (*entity.Membership, error)
	Delete(ctx context.Context, studentID, clubID string) error
	Exists(ctx context.Context, studentID, clubID string) (bool, error)
	GetByStudentID(ctx context.Context, studentID string) ([]dto.MyClub, error)
	GetByClubID(ctx context.Context, clubID string) ([]dto.ClubMember, error)
	CountByClubID(ctx context.Context, clubID string) (int64, error)
}

type MembershipService struct {
	logger  *types.Logger
	metrics metricsRecorder

	storage     MembershipStorage
	clubStorage clubGetter
}

func NewMembershipService(logger *types.Logger, metrics metricsRecorder, storage MembershipStorage, clubStorage clubGetter) *MembershipService {
	return &MembershipService{
		logger:      logger,
		metrics:     metrics,
		storage:     storage,
		clubStorage: clubStorage,
	}
}

func (s *MembershipService) Join(ctx context.Context, caller dto.Identity, clubID string) (membership *entity.Membership, err error) {
	defer func() { s.metrics.Record("membership_join", err) }()

	if err = requireParticipant(caller); err != nil {
		return nil, err
	}
	membership, err = s.storage.Create(ctx, caller.UserID, clubID)
	if err != nil {
		return nil, fmt.Errorf("join club %s: %w", clubID, err)
	}
	s.logger.Debugf("student joined club (student_id=%s, club_id=%s)", caller.UserID, clubID)
	return membership, nil
}

func (s *MembershipService) Leave(ctx context.Context, caller dto.Identity, clubID string) (err error) {
	defer func() { s.metrics.Record("membership_leave", err) }()

	if err = s.storage.Delete(ctx, caller.UserID, clubID); err != nil {
		return fmt.Errorf("leave club %s: %w", clubID, err)
	}
	s.logger.Debugf("student left club (student_id=%s, club_id=%s)", caller.UserID, clubID)
	return nil
}

func (s *MembershipService) IsMember(ctx context.Context, caller dto.Identity, clubID string) (bool, error) {
	return s.storage.Exists(ctx, caller.UserID, clubID)
}

func (s *MembershipService) MyClubs(ctx context.Context, caller dto.Identity) ([]dto.MyClub, error) {
	return s.storage.GetByStudentID(ctx, caller.UserID)
}

// Members lists a club's members. Only the club admin and super admins see the roster.
func (s *MembershipService) Members(ctx context.Context, caller dto.Identity, clubID string) ([]dto.ClubMember, error) {
	club, err := s.clubStorage.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.CanManagePlatform() && !isClubAdmin(caller, club) {
		return nil, errorz.ErrForbidden
	}
	return s.storage.GetByClubID(ctx, clubID)
}

func (s *MembershipService) CountMembers(ctx context.Context, clubID string) (int64, error) {
	return s.storage.CountByClubID(ctx, clubID)
}
