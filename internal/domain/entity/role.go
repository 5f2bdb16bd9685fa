package entity

import "fmt"

// Role is the platform-wide role of a user.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleClubAdmin  Role = "CLUB_ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// ParseRole converts s into a Role, rejecting anything outside the known set.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleClubAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// CanManagePlatform reports whether the role may create, delete or transfer clubs
// and resolve club requests.
func (r Role) CanManagePlatform() bool {
	switch r {
	case RoleSuperAdmin:
		return true
	case RoleStudent, RoleClubAdmin:
		return false
	default:
		return false
	}
}

// CanParticipate reports whether the role may join clubs and register for events.
func (r Role) CanParticipate() bool {
	switch r {
	case RoleStudent, RoleClubAdmin:
		return true
	case RoleSuperAdmin:
		return false
	default:
		return false
	}
}

// CanAdministerClub reports whether a user holding the role may be made a club admin.
// Super admins keep their role and are never promoted.
func (r Role) CanAdministerClub() bool {
	switch r {
	case RoleStudent, RoleClubAdmin:
		return true
	case RoleSuperAdmin:
		return false
	default:
		return false
	}
}
