package postgres

import (
	"context"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"gorm.io/gorm"
)

type NotificationStorage struct {
	db *gorm.DB
}

func NewNotificationStorage(db *gorm.DB) *NotificationStorage {
	return &NotificationStorage{
		db: db,
	}
}

// Create records a sent reminder. Recording the same reminder twice is not an error.
func (s *NotificationStorage) Create(ctx context.Context, notification *entity.EventNotification) error {
	err := s.db.WithContext(ctx).Create(notification).Error
	if isUniqueViolation(err, "") {
		return nil
	}
	return translateError(err)
}

// GetUnnotified returns the attendees of an event that have not received a reminder of the given type.
func (s *NotificationStorage) GetUnnotified(ctx context.Context, eventID string, notificationType entity.NotificationType) ([]dto.EventAttendee, error) {
	result := make([]dto.EventAttendee, 0)
	err := s.db.WithContext(ctx).
		Table("registrations").
		Select("registrations.id AS registration_id, registrations.student_id, users.name, users.email, "+
			"registrations.attended, registrations.created_at AS registered_at").
		Joins("JOIN users ON users.id = registrations.student_id").
		Joins("LEFT JOIN event_notifications ON event_notifications.student_id = registrations.student_id "+
			"AND event_notifications.event_id = registrations.event_id AND event_notifications.type = ?", notificationType).
		Where("registrations.event_id = ? AND event_notifications.id IS NULL", eventID).
		Order("registrations.created_at").
		Scan(&result).Error
	return result, err
}
