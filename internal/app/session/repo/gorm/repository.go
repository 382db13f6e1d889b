package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRefreshTokenNotFound = apperr.New("refresh token not found",
	session.CodeRefreshTokenNotFound, apperr.ClassNotFound, apperr.LogLevelWarn)

type gormRepo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *gormRepo {
	if db == nil {
		panic("session.gormRepo: nil db")
	}
	return &gormRepo{db: db}
}

func (r *gormRepo) CreateRefreshToken(ctx context.Context, record session.RefreshToken, tokenHash string) error {
	model := &refreshTokenModel{
		ID:        record.ID,
		UserID:    record.UserID,
		Role:      record.Role,
		TokenHash: tokenHash,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("session.gormRepo.CreateRefreshToken: %w", err)
	}

	return nil
}

func (r *gormRepo) GetRefreshToken(ctx context.Context, id uuid.UUID) (session.RefreshToken, string, error) {
	var model refreshTokenModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrRefreshTokenNotFound
		}
		return session.RefreshToken{}, "", fmt.Errorf("session.gormRepo.GetRefreshToken: %w", err)
	}

	return model.toDTO(), model.TokenHash, nil
}

// DeleteExpired removes refresh tokens past their expiry. Expiry is always
// re-checked on use, this only keeps the table small.
func (r *gormRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&refreshTokenModel{})
	if result.Error != nil {
		return fmt.Errorf("session.gormRepo.DeleteExpired: %w", result.Error)
	}

	return nil
}
