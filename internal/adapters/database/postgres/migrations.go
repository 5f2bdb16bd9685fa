package postgres

import (
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"gorm.io/gorm"
)

// Migrations is a list of all gorm migrations for the database.
var Migrations = []interface{}{
	&entity.User{},
	&entity.Club{},
	&entity.ClubRequest{},
	&entity.Membership{},
	&entity.Event{},
	&entity.Registration{},
	&entity.Announcement{},
	&entity.EventNotification{},
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Migrations...)
}
