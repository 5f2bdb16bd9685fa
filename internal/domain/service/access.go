package service

import (
	"context"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
)

type metricsRecorder interface {
	Record(operation string, err error)
}

type clubGetter interface {
	Get(ctx context.Context, id string) (*entity.Club, error)
}

func requireManager(caller dto.Identity) error {
	if !caller.Role.CanManagePlatform() {
		return errorz.ErrForbidden
	}
	return nil
}

func requireParticipant(caller dto.Identity) error {
	if !caller.Role.CanParticipate() {
		return errorz.ErrForbidden
	}
	return nil
}

// requireClubAdmin loads the club and checks that the caller is its admin.
func requireClubAdmin(ctx context.Context, clubs clubGetter, caller dto.Identity, clubID string) (*entity.Club, error) {
	club, err := clubs.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !isClubAdmin(caller, club) {
		return nil, errorz.ErrNotClubAdmin
	}
	return club, nil
}

func isClubAdmin(caller dto.Identity, club *entity.Club) bool {
	switch caller.Role {
	case entity.RoleClubAdmin:
		return club.AdminID == caller.UserID
	case entity.RoleStudent, entity.RoleSuperAdmin:
		return false
	default:
		return false
	}
}
