package gorm

import (
	"time"

	"github.com/a-novel/service-authentication/internal/app/credentials"
	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/google/uuid"
)

type credentialsModel struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string `json:"-"`
	Role         session.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (credentialsModel) TableName() string { return "credentials" }

func (m *credentialsModel) toDTO() credentials.Credentials {
	return credentials.Credentials{
		ID:        m.ID,
		Email:     m.Email,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
