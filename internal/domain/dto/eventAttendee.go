package dto

import "time"

type EventAttendee struct {
	RegistrationID string    `json:"registration_id"`
	StudentID      string    `json:"student_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Attended       bool      `json:"attended"`
	RegisteredAt   time.Time `json:"registered_at"`
}
