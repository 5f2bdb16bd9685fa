package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Club struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"not null;uniqueIndex"`
	Description string
	// AdminID is unique: a club admin administers exactly one club.
	AdminID   string `gorm:"not null;type:uuid;uniqueIndex"`
	LogoURL   string
	BannerURL string
}

func (c *Club) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type ClubRequestStatus string

const (
	ClubRequestPending  ClubRequestStatus = "PENDING"
	ClubRequestApproved ClubRequestStatus = "APPROVED"
	ClubRequestRejected ClubRequestStatus = "REJECTED"
)

// ClubRequest is a student's petition to found a club.
// At most one PENDING request per student is enforced by a partial unique index.
type ClubRequest struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string            `gorm:"not null"`
	Description string            `gorm:"not null"`
	StudentID   string            `gorm:"not null;type:uuid;index;uniqueIndex:idx_club_requests_one_pending,where:status = 'PENDING'"`
	Status      ClubRequestStatus `gorm:"not null;default:PENDING;index"`
}

func (r *ClubRequest) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = ClubRequestPending
	}
	return nil
}

type Membership struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	StudentID string    `gorm:"not null;type:uuid;uniqueIndex:idx_memberships_student_club"`
	ClubID    string    `gorm:"not null;type:uuid;uniqueIndex:idx_memberships_student_club;index"`
	JoinedAt  time.Time `gorm:"not null"`
}

func (m *Membership) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}

type Announcement struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `gorm:"index"`
	ClubID    string    `gorm:"not null;type:uuid;index"`
	Title     string    `gorm:"not null"`
	Message   string    `gorm:"not null"`
}

func (a *Announcement) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
