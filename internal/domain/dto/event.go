package dto

import (
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
)

type Event struct {
	ID           string    `json:"id"`
	ClubID       string    `json:"club_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	Location     string    `json:"location"`
	Capacity     int       `json:"capacity"`
	SeatsLeft    int       `json:"seats_left"`
	PosterURL    string    `json:"poster_url,omitempty"`
	IsRegistered bool      `json:"is_registered"`
}

func NewEventFromEntity(event entity.Event, isRegistered bool) Event {
	return Event{
		ID:           event.ID,
		ClubID:       event.ClubID,
		Title:        event.Title,
		Description:  event.Description,
		Date:         event.Date,
		Location:     event.Location,
		Capacity:     event.Capacity,
		SeatsLeft:    event.SeatsLeft(),
		PosterURL:    event.PosterURL,
		IsRegistered: isRegistered,
	}
}

// EventUpdate holds the mutable event fields; nil means "keep".
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Capacity    *int
	PosterURL   *string
}

func (u EventUpdate) Columns() map[string]interface{} {
	columns := make(map[string]interface{})
	if u.Title != nil {
		columns["title"] = *u.Title
	}
	if u.Description != nil {
		columns["description"] = *u.Description
	}
	if u.Date != nil {
		columns["event_date"] = *u.Date
	}
	if u.Location != nil {
		columns["location"] = *u.Location
	}
	if u.Capacity != nil {
		columns["capacity"] = *u.Capacity
	}
	if u.PosterURL != nil {
		columns["poster_url"] = *u.PosterURL
	}
	return columns
}
