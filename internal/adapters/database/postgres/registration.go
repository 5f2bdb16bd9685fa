package postgres

import (
	"context"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"gorm.io/gorm"
)

type RegistrationStorage struct {
	db *gorm.DB
}

func NewRegistrationStorage(db *gorm.DB) *RegistrationStorage {
	return &RegistrationStorage{
		db: db,
	}
}

// Create claims a seat and inserts the registration in one transaction.
//
// The seat claim is a conditional increment of events.registered_count guarded by
// capacity, so two transactions racing for the last seat serialize on the event row
// and only one of them matches the condition.
func (s *RegistrationStorage) Create(ctx context.Context, eventID, studentID string) (*entity.Registration, error) {
	var registration entity.Registration
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		var existing int64
		err := tx.Model(&entity.Registration{}).
			Where("event_id = ? AND student_id = ?", eventID, studentID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return errorz.ErrAlreadyRegistered
		}

		res := tx.Model(&entity.Event{}).
			Where("id = ? AND registered_count < capacity", eventID).
			UpdateColumn("registered_count", gorm.Expr("registered_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var eventExists int64
			if err = tx.Model(&entity.Event{}).Where("id = ?", eventID).Count(&eventExists).Error; err != nil {
				return err
			}
			if eventExists == 0 {
				return errorz.ErrEventNotFound
			}
			return errorz.ErrEventSoldOut
		}

		registration = entity.Registration{EventID: eventID, StudentID: studentID}
		if err = tx.Create(&registration).Error; err != nil {
			if isUniqueViolation(err, "") {
				return errorz.ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

// Delete removes the registration and frees its seat.
func (s *RegistrationStorage) Delete(ctx context.Context, eventID, studentID string) error {
	return transaction(ctx, s.db, func(tx *gorm.DB) error {
		res := tx.Where("event_id = ? AND student_id = ?", eventID, studentID).Delete(&entity.Registration{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errorz.ErrRegistrationNotFound
		}
		return tx.Model(&entity.Event{}).
			Where("id = ? AND registered_count > 0", eventID).
			UpdateColumn("registered_count", gorm.Expr("registered_count - 1")).Error
	})
}

func (s *RegistrationStorage) Get(ctx context.Context, eventID, studentID string) (*entity.Registration, error) {
	var registration entity.Registration
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND student_id = ?", eventID, studentID).
		First(&registration).Error
	if err != nil {
		return nil, notFound(err, errorz.ErrRegistrationNotFound)
	}
	return &registration, nil
}

func (s *RegistrationStorage) GetByID(ctx context.Context, id string) (*entity.Registration, error) {
	var registration entity.Registration
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&registration).Error
	if err != nil {
		return nil, notFound(err, errorz.ErrRegistrationNotFound)
	}
	return &registration, nil
}

// SetAttended sets the attended flag. Setting the current value again is a no-op.
func (s *RegistrationStorage) SetAttended(ctx context.Context, eventID, studentID string, attended bool) (*entity.Registration, error) {
	var registration entity.Registration
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		err := tx.Where("event_id = ? AND student_id = ?", eventID, studentID).First(&registration).Error
		if err != nil {
			return notFound(err, errorz.ErrRegistrationNotFound)
		}
		if registration.Attended == attended {
			return nil
		}
		return tx.Model(&registration).Update("attended", attended).Error
	})
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (s *RegistrationStorage) Exists(ctx context.Context, eventID, studentID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.Registration{}).
		Where("event_id = ? AND student_id = ?", eventID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (s *RegistrationStorage) CountByEventID(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Registration{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (s *RegistrationStorage) CountAttendedByEventID(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.Registration{}).
		Where("event_id = ? AND attended = ?", eventID, true).
		Count(&count).Error
	return count, err
}

// GetAttendees returns the event's registrations joined with the students, in registration order.
func (s *RegistrationStorage) GetAttendees(ctx context.Context, eventID string) ([]dto.EventAttendee, error) {
	result := make([]dto.EventAttendee, 0)
	err := s.db.WithContext(ctx).
		Table("registrations").
		Select("registrations.id AS registration_id, registrations.student_id, users.name, users.email, " +
			"registrations.attended, registrations.created_at AS registered_at").
		Joins("JOIN users ON users.id = registrations.student_id").
		Where("registrations.event_id = ?", eventID).
		Order("registrations.created_at").
		Scan(&result).Error
	return result, err
}

// GetByStudentID returns the student's registrations joined with their events, by event date.
func (s *RegistrationStorage) GetByStudentID(ctx context.Context, studentID string) ([]dto.StudentRegistration, error) {
	result := make([]dto.StudentRegistration, 0)
	err := s.db.WithContext(ctx).
		Table("registrations").
		Select("registrations.id AS registration_id, events.id AS event_id, events.club_id, events.title, " +
			"events.location, events.event_date AS date, registrations.attended, registrations.created_at AS registered_at").
		Joins("JOIN events ON events.id = registrations.event_id").
		Where("registrations.student_id = ?", studentID).
		Order("events.event_date").
		Scan(&result).Error
	return result, err
}
