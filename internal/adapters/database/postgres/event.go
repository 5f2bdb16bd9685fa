package postgres

import (
	"context"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventStorage struct {
	db *gorm.DB
}

func NewEventStorage(db *gorm.DB) *EventStorage {
	return &EventStorage{
		db: db,
	}
}

// Create is a function that creates a new event for an existing club.
func (s *EventStorage) Create(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := lockClubTx(tx, event.ClubID, "SHARE"); err != nil {
			return err
		}
		event.RegisteredCount = 0
		return tx.Create(event).Error
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Get is a function that gets an event from the database by id.
func (s *EventStorage) Get(ctx context.Context, id string) (*entity.Event, error) {
	var event entity.Event
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, notFound(err, errorz.ErrEventNotFound)
	}
	return &event, nil
}

// GetByClubID returns the club's events ordered by date.
func (s *EventStorage) GetByClubID(ctx context.Context, clubID string) ([]entity.Event, error) {
	events := make([]entity.Event, 0)
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).Order("event_date").Find(&events).Error
	return events, err
}

// GetUpcoming returns every event dated at or after from, ordered by date.
func (s *EventStorage) GetUpcoming(ctx context.Context, from time.Time) ([]entity.Event, error) {
	events := make([]entity.Event, 0)
	err := s.db.WithContext(ctx).Where("event_date >= ?", from).Order("event_date").Find(&events).Error
	return events, err
}

// GetBetween returns events dated in [from, to), ordered by date.
func (s *EventStorage) GetBetween(ctx context.Context, from, to time.Time) ([]entity.Event, error) {
	events := make([]entity.Event, 0)
	err := s.db.WithContext(ctx).
		Where("event_date >= ? AND event_date < ?", from, to).
		Order("event_date").
		Find(&events).Error
	return events, err
}

// Update changes the mutable event fields. A new capacity is only accepted if it is not
// below the number of seats already taken.
func (s *EventStorage) Update(ctx context.Context, id string, update dto.EventUpdate) (*entity.Event, error) {
	var event entity.Event
	err := transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
			return notFound(err, errorz.ErrEventNotFound)
		}

		columns := update.Columns()
		if len(columns) == 0 {
			return nil
		}

		query := tx.Model(&entity.Event{}).Where("id = ?", id)
		if update.Capacity != nil {
			query = query.Where("registered_count <= ?", *update.Capacity)
		}
		res := query.Updates(columns)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errorz.ErrCapacityBelowCount
		}

		return tx.Where("id = ?", id).First(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Delete removes the event and its registrations in one transaction.
func (s *EventStorage) Delete(ctx context.Context, id string) error {
	return transaction(ctx, s.db, func(tx *gorm.DB) error {
		var event entity.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", id).First(&event).Error
		if err != nil {
			return notFound(err, errorz.ErrEventNotFound)
		}

		if err := tx.Where("event_id = ?", id).Delete(&entity.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&entity.EventNotification{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Event{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errorz.ErrEventNotFound
		}
		return nil
	})
}

// Count is a function that gets the count of events from the database.
func (s *EventStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Event{}).Count(&count).Error
	return count, err
}
