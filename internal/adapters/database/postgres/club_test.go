package postgres

import (
	"context"
	"testing"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClubStorage_CreateWithAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes the admin", func(t *testing.T) {
		db := newTestDB(t)
		student := createUser(t, db, entity.RoleStudent)

		club, err := NewClubStorage(db).CreateWithAdmin(ctx, &entity.Club{
			Name:    "Chess Club",
			AdminID: student.ID,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, club.ID)
		assert.Equal(t, entity.RoleClubAdmin, reloadUser(t, db, student.ID).Role)
	})

	t.Run("duplicate name leaves the user untouched", func(t *testing.T) {
		db := newTestDB(t)
		existing, _ := createClub(t, db)
		student := createUser(t, db, entity.RoleStudent)

		_, err := NewClubStorage(db).CreateWithAdmin(ctx, &entity.Club{
			Name:    existing.Name,
			AdminID: student.ID,
		})
		require.ErrorIs(t, err, errorz.ErrClubNameTaken)
		assert.ErrorIs(t, err, errorz.ErrConflict)
		assert.Equal(t, entity.RoleStudent, reloadUser(t, db, student.ID).Role)
	})

	t.Run("admin of another club", func(t *testing.T) {
		db := newTestDB(t)
		_, admin := createClub(t, db)

		_, err := NewClubStorage(db).CreateWithAdmin(ctx, &entity.Club{
			Name:    uniqueClubName(),
			AdminID: admin.ID,
		})
		require.ErrorIs(t, err, errorz.ErrAlreadyClubAdmin)
		assert.Equal(t, int64(1), countRows(t, db, &entity.Club{}, "admin_id = ?", admin.ID))
	})

	t.Run("super admin is not eligible", func(t *testing.T) {
		db := newTestDB(t)
		superAdmin := createUser(t, db, entity.RoleSuperAdmin)

		_, err := NewClubStorage(db).CreateWithAdmin(ctx, &entity.Club{
			Name:    uniqueClubName(),
			AdminID: superAdmin.ID,
		})
		require.ErrorIs(t, err, errorz.ErrAdminNotEligible)
		assert.Equal(t, entity.RoleSuperAdmin, reloadUser(t, db, superAdmin.ID).Role)
		assert.Equal(t, int64(0), countRows(t, db, &entity.Club{}, "1 = 1"))
	})

	t.Run("unknown admin", func(t *testing.T) {
		db := newTestDB(t)

		_, err := NewClubStorage(db).CreateWithAdmin(ctx, &entity.Club{
			Name:    uniqueClubName(),
			AdminID: gofakeit.UUID(),
		})
		require.ErrorIs(t, err, errorz.ErrUserNotFound)
		assert.ErrorIs(t, err, errorz.ErrNotFound)
	})
}

func TestClubStorage_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	storage := NewClubStorage(db)

	club, admin := createClub(t, db)
	other, _ := createClub(t, db)
	event := createEvent(t, db, club.ID, 10)
	otherEvent := createEvent(t, db, other.ID, 10)
	student := createUser(t, db, entity.RoleStudent)

	_, err := NewRegistrationStorage(db).Create(ctx, event.ID, student.ID)
	require.NoError(t, err)
	_, err = NewRegistrationStorage(db).Create(ctx, otherEvent.ID, student.ID)
	require.NoError(t, err)
	_, err = NewMembershipStorage(db).Create(ctx, student.ID, club.ID)
	require.NoError(t, err)
	_, err = NewAnnouncementStorage(db).Create(ctx, &entity.Announcement{ClubID: club.ID, Title: "Hi", Message: "Welcome"})
	require.NoError(t, err)

	deleted, err := storage.Delete(ctx, club.ID)
	require.NoError(t, err)
	assert.Equal(t, club.ID, deleted.ID)

	assert.Equal(t, entity.RoleStudent, reloadUser(t, db, admin.ID).Role)
	assert.Equal(t, int64(0), countRows(t, db, &entity.Event{}, "club_id = ?", club.ID))
	assert.Equal(t, int64(0), countRows(t, db, &entity.Registration{}, "event_id = ?", event.ID))
	assert.Equal(t, int64(0), countRows(t, db, &entity.Membership{}, "club_id = ?", club.ID))
	assert.Equal(t, int64(0), countRows(t, db, &entity.Announcement{}, "club_id = ?", club.ID))

	// the other club is untouched
	assert.Equal(t, int64(1), countRows(t, db, &entity.Registration{}, "event_id = ?", otherEvent.ID))

	_, err = storage.Delete(ctx, club.ID)
	assert.ErrorIs(t, err, errorz.ErrClubNotFound)
}

func TestClubStorage_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("fields only", func(t *testing.T) {
		db := newTestDB(t)
		club, admin := createClub(t, db)
		description := "Updated description"

		updated, err := NewClubStorage(db).Update(ctx, club.ID, dto.ClubUpdate{Description: &description}, nil)
		require.NoError(t, err)
		assert.Equal(t, description, updated.Description)
		assert.Equal(t, admin.ID, updated.AdminID)
		assert.Equal(t, club.Name, updated.Name)
	})

	t.Run("transfer to the current admin is fields only", func(t *testing.T) {
		db := newTestDB(t)
		club, admin := createClub(t, db)

		updated, err := NewClubStorage(db).Update(ctx, club.ID, dto.ClubUpdate{}, &admin.ID)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, updated.AdminID)
		assert.Equal(t, entity.RoleClubAdmin, reloadUser(t, db, admin.ID).Role)
	})

	t.Run("transfer swaps roles", func(t *testing.T) {
		db := newTestDB(t)
		club, oldAdmin := createClub(t, db)
		newAdmin := createUser(t, db, entity.RoleStudent)
		logo := "https://cdn.example.com/logo.png"

		updated, err := NewClubStorage(db).Update(ctx, club.ID, dto.ClubUpdate{LogoURL: &logo}, &newAdmin.ID)
		require.NoError(t, err)
		assert.Equal(t, newAdmin.ID, updated.AdminID)
		assert.Equal(t, logo, updated.LogoURL)
		assert.Equal(t, entity.RoleStudent, reloadUser(t, db, oldAdmin.ID).Role)
		assert.Equal(t, entity.RoleClubAdmin, reloadUser(t, db, newAdmin.ID).Role)
	})

	t.Run("transfer to another club's admin changes nothing", func(t *testing.T) {
		db := newTestDB(t)
		club, oldAdmin := createClub(t, db)
		_, busyAdmin := createClub(t, db)
		description := "should not be written"

		_, err := NewClubStorage(db).Update(ctx, club.ID, dto.ClubUpdate{Description: &description}, &busyAdmin.ID)
		require.ErrorIs(t, err, errorz.ErrAlreadyClubAdmin)

		reloaded, err := NewClubStorage(db).Get(ctx, club.ID)
		require.NoError(t, err)
		assert.Equal(t, oldAdmin.ID, reloaded.AdminID)
		assert.Equal(t, club.Description, reloaded.Description)
		assert.Equal(t, entity.RoleClubAdmin, reloadUser(t, db, oldAdmin.ID).Role)
		assert.Equal(t, entity.RoleClubAdmin, reloadUser(t, db, busyAdmin.ID).Role)
	})

	t.Run("missing club", func(t *testing.T) {
		db := newTestDB(t)

		_, err := NewClubStorage(db).Update(ctx, gofakeit.UUID(), dto.ClubUpdate{}, nil)
		assert.ErrorIs(t, err, errorz.ErrClubNotFound)
	})
}

func TestClubStorage_Reads(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	storage := NewClubStorage(db)

	club, admin := createClub(t, db)
	createClub(t, db)

	withAdmin, err := storage.GetWithAdmin(ctx, club.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.Email, withAdmin.AdminEmail)
	assert.Equal(t, admin.Name, withAdmin.AdminName)

	byAdmin, err := storage.GetByAdminID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, club.ID, byAdmin.ID)

	clubs, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Len(t, clubs, 2)
	assert.LessOrEqual(t, clubs[0].Name, clubs[1].Name)

	_, err = storage.GetWithAdmin(ctx, gofakeit.UUID())
	assert.ErrorIs(t, err, errorz.ErrClubNotFound)
}
