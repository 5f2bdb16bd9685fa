package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/utils/sanitize"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/utils/validator"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
)

type EventStorage interface {
	Create(ctx context.Context, event *entity.Event) (*entity.Event, error)
	Get(ctx context.Context, id string) (*entity.Event, error)
	GetByClubID(ctx context.Context, clubID string) ([]entity.Event, error)
	GetUpcoming(ctx context.Context, from time.Time) ([]entity.Event, error)
	Update(ctx context.Context, id string, update dto.EventUpdate) (*entity.Event, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type registrationChecker interface {
	Exists(ctx context.Context, eventID, studentID string) (bool, error)
}

type EventService struct {
	logger  *types.Logger
	metrics metricsRecorder

	storage             EventStorage
	clubStorage         clubGetter
	registrationChecker registrationChecker
	assets              assetStore

	now func() time.Time
}

func NewEventService(
	logger *types.Logger,
	metrics metricsRecorder,
	storage EventStorage,
	clubStorage clubGetter,
	registrationChecker registrationChecker,
	assets assetStore,
) *EventService {
	return &EventService{
		logger:              logger,
		metrics:             metrics,
		storage:             storage,
		clubStorage:         clubStorage,
		registrationChecker: registrationChecker,
		assets:              assets,
		now:                 time.Now,
	}
}

// Create schedules a new event for the caller's club.
func (s *EventService) Create(ctx context.Context, caller dto.Identity, clubID string, event entity.Event) (created *entity.Event, err error) {
	defer func() { s.metrics.Record("event_create", err) }()

	if _, err = requireClubAdmin(ctx, s.clubStorage, caller, clubID); err != nil {
		return nil, err
	}

	event.ID = ""
	event.ClubID = clubID
	event.Title = sanitize.Text(event.Title)
	event.Description = sanitize.Rich(event.Description)
	event.Location = sanitize.Text(event.Location)
	if err = s.validate(event.Title, event.Location, event.Date, event.Capacity); err != nil {
		return nil, err
	}

	created, err = s.storage.Create(ctx, &event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Infof("event created (event_id=%s, club_id=%s, capacity=%d)", created.ID, clubID, created.Capacity)
	return created, nil
}

func (s *EventService) validate(title, location string, date time.Time, capacity int) error {
	switch {
	case !validator.EventTitle(title):
		return errorz.Invalid("title", "must be 3-120 characters")
	case !validator.EventLocation(location):
		return errorz.Invalid("location", "must be 2-200 characters")
	case !validator.EventDate(date, s.now()):
		return errorz.Invalid("date", "is in the past")
	case !validator.EventCapacity(capacity):
		return errorz.Invalid("capacity", "must be positive")
	}
	return nil
}

// Update edits an event of the caller's club. Capacity may not drop below the seats taken.
func (s *EventService) Update(ctx context.Context, caller dto.Identity, eventID string, update dto.EventUpdate) (updated *entity.Event, err error) {
	defer func() { s.metrics.Record("event_update", err) }()

	current, err := s.storage.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err = requireClubAdmin(ctx, s.clubStorage, caller, current.ClubID); err != nil {
		return nil, err
	}

	title, location, date, capacity := current.Title, current.Location, current.Date, current.Capacity
	if update.Title != nil {
		title = sanitize.Text(*update.Title)
		update.Title = &title
	}
	if update.Description != nil {
		description := sanitize.Rich(*update.Description)
		update.Description = &description
	}
	if update.Location != nil {
		location = sanitize.Text(*update.Location)
		update.Location = &location
	}
	if update.Capacity != nil {
		capacity = *update.Capacity
	}
	if update.Date != nil {
		date = *update.Date
	} else {
		// keep already started events editable
		date = s.now()
	}
	if err = s.validate(title, location, date, capacity); err != nil {
		return nil, err
	}

	updated, err = s.storage.Update(ctx, eventID, update)
	if err != nil {
		return nil, fmt.Errorf("update event %s: %w", eventID, err)
	}
	return updated, nil
}

// UploadPoster stores the image first and only then points the event at it.
func (s *EventService) UploadPoster(ctx context.Context, caller dto.Identity, eventID string, data []byte) (updated *entity.Event, err error) {
	defer func() { s.metrics.Record("event_upload_poster", err) }()

	current, err := s.storage.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err = requireClubAdmin(ctx, s.clubStorage, caller, current.ClubID); err != nil {
		return nil, err
	}

	url, err := s.assets.Save(ctx, "events/poster", data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrAssetStore, err)
	}
	return s.storage.Update(ctx, eventID, dto.EventUpdate{PosterURL: &url})
}

// Delete removes the event and its registrations.
func (s *EventService) Delete(ctx context.Context, caller dto.Identity, eventID string) (err error) {
	defer func() { s.metrics.Record("event_delete", err) }()

	event, err := s.storage.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if _, err = requireClubAdmin(ctx, s.clubStorage, caller, event.ClubID); err != nil {
		return err
	}
	if err = s.storage.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	s.logger.Infof("event deleted (event_id=%s, club_id=%s)", eventID, event.ClubID)
	return nil
}

// Get returns the event with its free seats and whether the caller holds one of them.
func (s *EventService) Get(ctx context.Context, caller dto.Identity, eventID string) (*dto.Event, error) {
	event, err := s.storage.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	registered, err := s.registrationChecker.Exists(ctx, eventID, caller.UserID)
	if err != nil {
		return nil, err
	}
	result := dto.NewEventFromEntity(*event, registered)
	return &result, nil
}

func (s *EventService) ListByClub(ctx context.Context, caller dto.Identity, clubID string) ([]dto.Event, error) {
	if _, err := s.clubStorage.Get(ctx, clubID); err != nil {
		return nil, err
	}
	events, err := s.storage.GetByClubID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	return s.withRegistration(ctx, caller, events)
}

// Upcoming returns every event that has not started yet.
func (s *EventService) Upcoming(ctx context.Context, caller dto.Identity) ([]dto.Event, error) {
	events, err := s.storage.GetUpcoming(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return s.withRegistration(ctx, caller, events)
}

func (s *EventService) withRegistration(ctx context.Context, caller dto.Identity, events []entity.Event) ([]dto.Event, error) {
	result := make([]dto.Event, 0, len(events))
	for _, event := range events {
		registered, err := s.registrationChecker.Exists(ctx, event.ID, caller.UserID)
		if err != nil {
			return nil, err
		}
		result = append(result, dto.NewEventFromEntity(event, registered))
	}
	return result, nil
}

func (s *EventService) Count(ctx context.Context) (int64, error) {
	return s.storage.Count(ctx)
}
