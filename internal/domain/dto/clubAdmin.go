package dto

import (
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
)

// Club is a club together with its admin's public profile.
type Club struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LogoURL     string    `json:"logo_url,omitempty"`
	BannerURL   string    `json:"banner_url,omitempty"`
	AdminID     string    `json:"admin_id"`
	AdminName   string    `json:"admin_name"`
	AdminEmail  string    `json:"admin_email"`
	CreatedAt   time.Time `json:"created_at"`
}

type ClubMember struct {
	StudentID string    `json:"student_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	JoinedAt  time.Time `json:"joined_at"`
}

// MyClub is a club seen from one of its members.
type MyClub struct {
	ClubID      string    `json:"club_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LogoURL     string    `json:"logo_url,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

// ClubUpdate holds the mutable club fields; nil means "keep".
type ClubUpdate struct {
	Description *string
	LogoURL     *string
	BannerURL   *string
}

func (u ClubUpdate) Columns() map[string]interface{} {
	columns := make(map[string]interface{})
	if u.Description != nil {
		columns["description"] = *u.Description
	}
	if u.LogoURL != nil {
		columns["logo_url"] = *u.LogoURL
	}
	if u.BannerURL != nil {
		columns["banner_url"] = *u.BannerURL
	}
	return columns
}

func NewClubFromEntity(club entity.Club, admin entity.User) Club {
	return Club{
		ID:          club.ID,
		Name:        club.Name,
		Description: club.Description,
		LogoURL:     club.LogoURL,
		BannerURL:   club.BannerURL,
		AdminID:     club.AdminID,
		AdminName:   admin.Name,
		AdminEmail:  admin.Email,
		CreatedAt:   club.CreatedAt,
	}
}
