package gorm

import (
	"time"

	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/google/uuid"
)

type refreshTokenModel struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Role      session.Role
	TokenHash string `json:"-"`
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (refreshTokenModel) TableName() string { return "refresh_tokens" }

func (m *refreshTokenModel) toDTO() session.RefreshToken {
	return session.RefreshToken{
		ID:        m.ID,
		UserID:    m.UserID,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
	}
}
