package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token is a bearer pair. The refresh token is only valid together with the
// access token it was issued alongside.
type Token struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims is the read-only identity view of an access token. Anonymous
// sessions carry no user ID.
type Claims struct {
	UserID         *uuid.UUID `json:"userID,omitempty"`
	Roles          []Role     `json:"roles,omitempty"`
	RefreshTokenID string     `json:"refreshTokenID,omitempty"`
}

// Role returns the active role of the session. The API issues exactly one
// role per session.
func (c Claims) Role() Role {
	if len(c.Roles) == 0 {
		return ""
	}
	return c.Roles[0]
}

// RefreshToken is a stored refresh token record. The bcrypt hash of the
// plain token lives next to it in the repository.
type RefreshToken struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id"`
	Role      Role       `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

type AccessTokenClaims struct {
	UserID         *uuid.UUID `json:"uid,omitempty"`
	Roles          []Role     `json:"roles"`
	RefreshTokenID string     `json:"rid"`
	jwt.RegisteredClaims
}
