package dto

import "time"

type FeedItem struct {
	AnnouncementID string    `json:"announcement_id"`
	ClubID         string    `json:"club_id"`
	ClubName       string    `json:"club_name"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}
