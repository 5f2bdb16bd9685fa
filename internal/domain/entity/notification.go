package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeDay  NotificationType = "day"
	NotificationTypeHour NotificationType = "hour"
)

// EventNotification records a reminder that has been sent to a registered student.
type EventNotification struct {
	ID        string           `gorm:"primaryKey;type:uuid"`
	EventID   string           `gorm:"not null;type:uuid;uniqueIndex:idx_event_notifications_once"`
	StudentID string           `gorm:"not null;type:uuid;uniqueIndex:idx_event_notifications_once"`
	Type      NotificationType `gorm:"not null;uniqueIndex:idx_event_notifications_once"`
	CreatedAt time.Time        `gorm:"not null"`
}

func (n *EventNotification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
