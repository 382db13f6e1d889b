package session

import (
	"fmt"
)

var ErrInvalidRole = fmt.Errorf("invalid role")

// Role is the single privilege level attached to a session. Roles are
// ordered: a role covers every role of a lower rank.
type Role string

const (
	RoleAnon       Role = "auth:anon"
	RoleUser       Role = "auth:user"
	RoleAdmin      Role = "auth:admin"
	RoleSuperAdmin Role = "auth:superadmin"
)

var KnownRoles = []Role{RoleAnon, RoleUser, RoleAdmin, RoleSuperAdmin}

func (role Role) String() string {
	return string(role)
}

func (role Role) Rank() int {
	switch role {
	case RoleAnon:
		return 0
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return -1
	}
}

func (role Role) Validate() error {
	if role.Rank() < 0 {
		return ErrInvalidRole
	}
	return nil
}

// AtLeast reports whether role grants the privileges of other.
func (role Role) AtLeast(other Role) bool {
	if role.Rank() < 0 || other.Rank() < 0 {
		return false
	}
	return role.Rank() >= other.Rank()
}

// Outranks reports whether role is strictly more privileged than other.
func (role Role) Outranks(other Role) bool {
	if role.Rank() < 0 || other.Rank() < 0 {
		return false
	}
	return role.Rank() > other.Rank()
}
