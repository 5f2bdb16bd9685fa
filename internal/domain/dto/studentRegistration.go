package dto

import "time"

// StudentRegistration is one of a student's registrations joined with its event.
type StudentRegistration struct {
	RegistrationID string    `json:"registration_id"`
	EventID        string    `json:"event_id"`
	ClubID         string    `json:"club_id"`
	Title          string    `json:"title"`
	Location       string    `json:"location"`
	Date           time.Time `json:"date"`
	Attended       bool      `json:"attended"`
	RegisteredAt   time.Time `json:"registered_at"`
}

func (r *StudentRegistration) IsOver(additionalTime time.Duration) bool {
	return r.Date.Before(time.Now().Add(-additionalTime))
}
