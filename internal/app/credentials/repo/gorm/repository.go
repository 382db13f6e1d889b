package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/a-novel/service-authentication/internal/app/credentials"
	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type gormRepo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *gormRepo {
	if db == nil {
		panic("credentials.gormRepo: nil db")
	}
	return &gormRepo{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *gormRepo) Create(ctx context.Context, creds credentials.Credentials, passwordHash string) error {
	model := &credentialsModel{
		ID:           creds.ID,
		Email:        creds.Email,
		PasswordHash: passwordHash,
		Role:         creds.Role,
		CreatedAt:    creds.CreatedAt,
		UpdatedAt:    creds.UpdatedAt,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			err = credentials.ErrEmailDuplicate()
		}
		return fmt.Errorf("credentials.gormRepo.Create: %w", err)
	}

	return nil
}

func (r *gormRepo) Get(ctx context.Context, id uuid.UUID) (credentials.Credentials, string, error) {
	var model credentialsModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = credentials.ErrNotFound()
		}
		return credentials.Credentials{}, "", fmt.Errorf("credentials.gormRepo.Get: %w", err)
	}

	return model.toDTO(), model.PasswordHash, nil
}

func (r *gormRepo) GetByEmail(ctx context.Context, email string) (credentials.Credentials, string, error) {
	var model credentialsModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = credentials.ErrNotFound()
		}
		return credentials.Credentials{}, "", fmt.Errorf("credentials.gormRepo.GetByEmail: %w", err)
	}

	return model.toDTO(), model.PasswordHash, nil
}

func (r *gormRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&credentialsModel{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("credentials.gormRepo.ExistsByEmail: %w", err)
	}

	return count > 0, nil
}

func (r *gormRepo) List(ctx context.Context, filter credentials.ListFilter) ([]credentials.Credentials, error) {
	query := r.db.WithContext(ctx).
		Model(&credentialsModel{}).
		Order("created_at DESC, id").
		Limit(filter.Limit).
		Offset(filter.Offset)

	if len(filter.Roles) > 0 {
		query = query.Where("role IN ?", filter.Roles)
	}

	var models []*credentialsModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("credentials.gormRepo.List: %w", err)
	}

	return lo.Map(models, func(model *credentialsModel, _ int) credentials.Credentials {
		return model.toDTO()
	}), nil
}

func (r *gormRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string, now time.Time) (credentials.Credentials, error) {
	updated, err := r.update(ctx, id, map[string]any{"email": email, "updated_at": now})
	if err != nil {
		if isUniqueViolation(err) {
			err = credentials.ErrEmailDuplicate()
		}
		return credentials.Credentials{}, fmt.Errorf("credentials.gormRepo.UpdateEmail: %w", err)
	}

	return updated, nil
}

func (r *gormRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, now time.Time) (credentials.Credentials, error) {
	updated, err := r.update(ctx, id, map[string]any{"password_hash": passwordHash, "updated_at": now})
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.gormRepo.UpdatePassword: %w", err)
	}

	return updated, nil
}

func (r *gormRepo) UpdateRole(ctx context.Context, id uuid.UUID, role session.Role, now time.Time) (credentials.Credentials, error) {
	updated, err := r.update(ctx, id, map[string]any{"role": role, "updated_at": now})
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.gormRepo.UpdateRole: %w", err)
	}

	return updated, nil
}

func (r *gormRepo) update(ctx context.Context, id uuid.UUID, values map[string]any) (credentials.Credentials, error) {
	result := r.db.WithContext(ctx).Model(&credentialsModel{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return credentials.Credentials{}, result.Error
	}
	if result.RowsAffected == 0 {
		return credentials.Credentials{}, credentials.ErrNotFound()
	}

	var model credentialsModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return credentials.Credentials{}, err
	}

	return model.toDTO(), nil
}
