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

type ClubRequestStorage interface {
	Create(ctx context.Context, request *entity.ClubRequest) (*entity.ClubRequest, error)
	Get(ctx context.Context, id string) (*entity.ClubRequest, error)
	ListPending(ctx context.Context) ([]entity.ClubRequest, error)
	ListByStudent(ctx context.Context, studentID string) ([]entity.ClubRequest, error)
	Approve(ctx context.Context, id string) (*entity.ClubRequest, *entity.Club, error)
	Reject(ctx context.Context, id string) (*entity.ClubRequest, error)
}

type requestUserStorage interface {
	Get(ctx context.Context, id string) (*entity.User, error)
}

type requestNotifier interface {
	SendRequestResolved(to string, request entity.ClubRequest) error
}

type ClubRequestService struct {
	logger  *types.Logger
	metrics metricsRecorder

	storage     ClubRequestStorage
	userStorage requestUserStorage
	notifier    requestNotifier
}

func NewClubRequestService(
	logger *types.Logger,
	metrics metricsRecorder,
	storage ClubRequestStorage,
	userStorage requestUserStorage,
	notifier requestNotifier,
) *ClubRequestService {
	return &ClubRequestService{
		logger:      logger,
		metrics:     metrics,
		storage:     storage,
		userStorage: userStorage,
		notifier:    notifier,
	}
}

// Submit files a request to found a club. A student may have one pending request at a time.
func (s *ClubRequestService) Submit(ctx context.Context, caller dto.Identity, name, description string) (request *entity.ClubRequest, err error) {
	defer func() { s.metrics.Record("club_request_submit", err) }()

	switch caller.Role {
	case entity.RoleStudent:
	case entity.RoleClubAdmin:
		return nil, errorz.ErrAlreadyClubAdmin
	case entity.RoleSuperAdmin:
		return nil, errorz.ErrForbidden
	default:
		return nil, errorz.ErrForbidden
	}

	name = sanitize.Text(name)
	if name == "" {
		return nil, errorz.Invalid("name", "is empty")
	}

	request, err = s.storage.Create(ctx, &entity.ClubRequest{
		Name:        name,
		Description: sanitize.Rich(description),
		StudentID:   caller.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("submit club request: %w", err)
	}

	s.logger.Infof("club request submitted (request_id=%s, student_id=%s)", request.ID, caller.UserID)
	return request, nil
}

// ListPending returns pending requests, newest first.
func (s *ClubRequestService) ListPending(ctx context.Context, caller dto.Identity) ([]entity.ClubRequest, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}
	return s.storage.ListPending(ctx)
}

// MyRequests returns the caller's own requests in any status, newest first.
func (s *ClubRequestService) MyRequests(ctx context.Context, caller dto.Identity) ([]entity.ClubRequest, error) {
	return s.storage.ListByStudent(ctx, caller.UserID)
}

func (s *ClubRequestService) Get(ctx context.Context, caller dto.Identity, id string) (*entity.ClubRequest, error) {
	request, err := s.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.StudentID != caller.UserID && !caller.Role.CanManagePlatform() {
		return nil, errorz.ErrForbidden
	}
	return request, nil
}

// Resolve approves or rejects a pending request. Approval creates the club and promotes
// the student in the same transaction as the status change. The student is mailed
// after the commit; a failed mail is only logged.
func (s *ClubRequestService) Resolve(ctx context.Context, caller dto.Identity, id string, decision entity.ClubRequestStatus) (request *entity.ClubRequest, club *entity.Club, err error) {
	defer func() { s.metrics.Record("club_request_resolve", err) }()

	if err = requireManager(caller); err != nil {
		return nil, nil, err
	}

	switch decision {
	case entity.ClubRequestApproved:
		request, club, err = s.storage.Approve(ctx, id)
	case entity.ClubRequestRejected:
		request, err = s.storage.Reject(ctx, id)
	case entity.ClubRequestPending:
		return nil, nil, errorz.Invalid("decision", "must be APPROVED or REJECTED")
	default:
		return nil, nil, errorz.Invalid("decision", "must be APPROVED or REJECTED")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("resolve club request %s: %w", id, err)
	}

	s.logger.Infof("club request resolved (request_id=%s, status=%s, by=%s)", request.ID, request.Status, caller.UserID)
	s.notifyResolved(ctx, *request)
	return request, club, nil
}

func (s *ClubRequestService) notifyResolved(ctx context.Context, request entity.ClubRequest) {
	student, err := s.userStorage.Get(ctx, request.StudentID)
	if err != nil {
		s.logger.Errorf("failed to load student %s for request %s: %v", request.StudentID, request.ID, err)
		return
	}
	if err = s.notifier.SendRequestResolved(student.Email, request); err != nil {
		s.logger.Errorf("failed to notify student about request %s: %v", request.ID, err)
	}
}
