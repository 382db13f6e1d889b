package authclient

import (
	"time"

	"github.com/google/uuid"
)

// Field limits enforced by the service. Forms are checked against them
// client side to avoid a round trip on obviously bad input.
const (
	MaxEmailLength     = 256
	MaxPasswordLength  = 1024
	MaxShortCodeLength = 128
	MaxListLimit       = 100
	MaxRoleFilters     = 10
)

type Role string

const (
	RoleAnon       Role = "auth:anon"
	RoleUser       Role = "auth:user"
	RoleAdmin      Role = "auth:admin"
	RoleSuperAdmin Role = "auth:superadmin"
)

type Lang string

const (
	LangEn Lang = "en"
	LangFr Lang = "fr"
)

// Token is a session pair. The refresh token is only usable together with
// the access token it was issued alongside.
type Token struct {
	AccessToken  string `json:"accessToken"  validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Claims is the identity carried by an access token. Anonymous sessions
// have no user ID.
type Claims struct {
	UserID         *uuid.UUID `json:"userID,omitempty"`
	Roles          []Role     `json:"roles,omitempty"          validate:"required,min=1"`
	RefreshTokenID string     `json:"refreshTokenID,omitempty" validate:"required"`
}

// Role returns the active role of the session, the service issues exactly
// one per session.
func (c Claims) Role() Role {
	if len(c.Roles) == 0 {
		return ""
	}

	return c.Roles[0]
}

type Credentials struct {
	ID        uuid.UUID `json:"id"        validate:"required"`
	Email     string    `json:"email"     validate:"required"`
	Role      Role      `json:"role"      validate:"required"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
}
