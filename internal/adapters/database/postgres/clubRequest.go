package postgres

import (
	"context"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"gorm.io/gorm"
)

type ClubRequestStorage struct {
	db *gorm.DB
}

func NewClubRequestStorage(db *gorm.DB) *ClubRequestStorage {
	return &ClubRequestStorage{
		db: db,
	}
}

// Create stores a new PENDING request after checking that the name is free, the
// student could be promoted to club admin and has no other pending request.
func (s *ClubRequestStorage) Create(ctx context.Context, request *entity.ClubRequest) (*entity.ClubRequest, error) {
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		var student entity.User
		if err := tx.Select("id", "role").Where("id = ?", request.StudentID).First(&student).Error; err != nil {
			return notFound(err, errorz.ErrUserNotFound)
		}
		if student.Role == entity.RoleClubAdmin {
			return errorz.ErrAlreadyClubAdmin
		}
		if !student.Role.CanAdministerClub() {
			return errorz.ErrAdminNotEligible
		}

		var taken int64
		if err := tx.Model(&entity.Club{}).Where("name = ?", request.Name).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errorz.ErrClubNameTaken
		}

		var pending int64
		err := tx.Model(&entity.ClubRequest{}).
			Where("student_id = ? AND status = ?", request.StudentID, entity.ClubRequestPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return errorz.ErrPendingRequestExists
		}

		request.Status = entity.ClubRequestPending
		if err = tx.Create(request).Error; err != nil {
			if isUniqueViolation(err, "") {
				return errorz.ErrPendingRequestExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *ClubRequestStorage) Get(ctx context.Context, id string) (*entity.ClubRequest, error) {
	var request entity.ClubRequest
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, notFound(err, errorz.ErrRequestNotFound)
	}
	return &request, nil
}

// ListPending returns all pending requests, newest first.
func (s *ClubRequestStorage) ListPending(ctx context.Context) ([]entity.ClubRequest, error) {
	requests := make([]entity.ClubRequest, 0)
	err := s.db.WithContext(ctx).
		Where("status = ?", entity.ClubRequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListByStudent returns the student's requests in any status, newest first.
func (s *ClubRequestStorage) ListByStudent(ctx context.Context, studentID string) ([]entity.ClubRequest, error) {
	requests := make([]entity.ClubRequest, 0)
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// Reject moves a pending request to REJECTED.
func (s *ClubRequestStorage) Reject(ctx context.Context, id string) (*entity.ClubRequest, error) {
	var request entity.ClubRequest
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := loadPendingTx(tx, id, &request); err != nil {
			return err
		}
		return resolveTx(tx, &request, entity.ClubRequestRejected)
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Approve creates the requested club (promoting the student) and moves the request to
// APPROVED in the same transaction. If the club cannot be created the request stays PENDING.
func (s *ClubRequestStorage) Approve(ctx context.Context, id string) (*entity.ClubRequest, *entity.Club, error) {
	var (
		request entity.ClubRequest
		club    entity.Club
	)
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := loadPendingTx(tx, id, &request); err != nil {
			return err
		}

		club = entity.Club{
			Name:        request.Name,
			Description: request.Description,
			AdminID:     request.StudentID,
		}
		if err := createClubTx(tx, &club); err != nil {
			return err
		}

		return resolveTx(tx, &request, entity.ClubRequestApproved)
	})
	if err != nil {
		return nil, nil, err
	}
	return &request, &club, nil
}

func loadPendingTx(tx *gorm.DB, id string, request *entity.ClubRequest) error {
	if err := tx.Where("id = ?", id).First(request).Error; err != nil {
		return notFound(err, errorz.ErrRequestNotFound)
	}
	if request.Status != entity.ClubRequestPending {
		return errorz.ErrRequestResolved
	}
	return nil
}

func resolveTx(tx *gorm.DB, request *entity.ClubRequest, status entity.ClubRequestStatus) error {
	res := tx.Model(&entity.ClubRequest{}).
		Where("id = ? AND status = ?", request.ID, entity.ClubRequestPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errorz.ErrConcurrentUpdate
	}
	request.Status = status
	return nil
}
