package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClubID      string    `gorm:"not null;type:uuid;index"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	Date        time.Time `gorm:"column:event_date;not null;index"`
	Location    string    `gorm:"not null"`
	Capacity    int       `gorm:"not null"`
	// RegisteredCount mirrors the number of Registration rows and is only changed
	// in the same transaction that inserts or deletes one.
	RegisteredCount int `gorm:"not null;default:0"`
	PosterURL       string
}

func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// SeatsLeft returns how many registrations the event can still accept.
func (e *Event) SeatsLeft() int {
	if left := e.Capacity - e.RegisteredCount; left > 0 {
		return left
	}
	return 0
}

// IsOver checks if the event has already started, shifted by additionalTime.
func (e *Event) IsOver(additionalTime time.Duration) bool {
	return e.Date.Before(time.Now().Add(-additionalTime))
}

type Registration struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
	StudentID string `gorm:"not null;type:uuid;uniqueIndex:idx_registrations_student_event"`
	EventID   string `gorm:"not null;type:uuid;uniqueIndex:idx_registrations_student_event;index"`
	Attended  bool   `gorm:"not null;default:false"`
}

func (r *Registration) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
