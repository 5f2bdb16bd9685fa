package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory SQLite database with the full schema.
// A single connection keeps every transaction strictly serialized.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, role entity.Role) *entity.User {
	t.Helper()

	user := &entity.User{
		Name:       gofakeit.Name(),
		Email:      fmt.Sprintf("%s.%s", gofakeit.UUID()[:8], gofakeit.Email()),
		Role:       role,
		IsVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func uniqueClubName() string {
	return fmt.Sprintf("%s %s", gofakeit.Company(), gofakeit.UUID()[:6])
}

func createClub(t *testing.T, db *gorm.DB) (*entity.Club, *entity.User) {
	t.Helper()

	admin := createUser(t, db, entity.RoleStudent)
	club, err := NewClubStorage(db).CreateWithAdmin(context.Background(), &entity.Club{
		Name:        uniqueClubName(),
		Description: gofakeit.Sentence(8),
		AdminID:     admin.ID,
	})
	require.NoError(t, err)
	return club, reloadUser(t, db, admin.ID)
}

func createEvent(t *testing.T, db *gorm.DB, clubID string, capacity int) *entity.Event {
	t.Helper()

	event, err := NewEventStorage(db).Create(context.Background(), &entity.Event{
		ClubID:      clubID,
		Title:       gofakeit.Sentence(3),
		Description: gofakeit.Sentence(10),
		Date:        time.Now().Add(48 * time.Hour),
		Location:    gofakeit.Street(),
		Capacity:    capacity,
	})
	require.NoError(t, err)
	return event
}

func reloadUser(t *testing.T, db *gorm.DB, id string) *entity.User {
	t.Helper()

	var user entity.User
	require.NoError(t, db.Where("id = ?", id).First(&user).Error)
	return &user
}

func reloadEvent(t *testing.T, db *gorm.DB, id string) *entity.Event {
	t.Helper()

	var event entity.Event
	require.NoError(t, db.Where("id = ?", id).First(&event).Error)
	return &event
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}
