package credentials

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	Create(ctx context.Context, creds Credentials, passwordHash string) error
	Get(ctx context.Context, id uuid.UUID) (Credentials, string, error)
	GetByEmail(ctx context.Context, email string) (Credentials, string, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]Credentials, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string, now time.Time) (Credentials, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, now time.Time) (Credentials, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role session.Role, now time.Time) (Credentials, error)
}

type PasswordHasher interface {
	HashPassword(password []byte, cost int) ([]byte, error)
	CheckPasswordHash(password []byte, hash string) error
}

type IDGenerator interface {
	New() (uuid.UUID, error)
}

type TimeGenerator interface {
	Now() time.Time
}

type Config struct {
	PasswordHashCost int `mapstructure:"password_hash_cost" json:"password_hash_cost"`
}

type core struct {
	repo          Repository
	hasher        PasswordHasher
	idGenerator   IDGenerator
	timeGenerator TimeGenerator
	cfg           Config
}

func NewCore(repo Repository, hasher PasswordHasher, idGenerator IDGenerator, timeGenerator TimeGenerator, cfg Config) *core {
	if cfg.PasswordHashCost < bcrypt.MinCost || cfg.PasswordHashCost > bcrypt.MaxCost {
		panic(fmt.Sprintf("credentials.core: password hash cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if repo == nil || hasher == nil || idGenerator == nil || timeGenerator == nil {
		panic("credentials.core: nil dependency")
	}

	return &core{repo: repo, hasher: hasher, idGenerator: idGenerator, timeGenerator: timeGenerator, cfg: cfg}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong(MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail()
	}

	return nil
}

func ValidatePassword(password []byte) error {
	if len(password) == 0 {
		return ErrPasswordEmpty()
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong(MaxPasswordLength)
	}

	return nil
}

// Create inserts a fresh identity record with role auth:user.
func (c *core) Create(ctx context.Context, email string, password []byte) (Credentials, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.Create: %w", err)
	}
	if err := ValidatePassword(password); err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.Create: %w", err)
	}

	passwordHash, err := c.hasher.HashPassword(password, c.cfg.PasswordHashCost)
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.Create: %w", err)
	}

	id, err := c.idGenerator.New()
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.Create: %w", err)
	}

	now := c.timeGenerator.Now()
	creds := Credentials{
		ID:        id,
		Email:     email,
		Role:      session.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = c.repo.Create(ctx, creds, string(passwordHash)); err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.Create: %w", err)
	}

	return creds, nil
}

func (c *core) Get(ctx context.Context, id uuid.UUID) (Credentials, error) {
	if id == uuid.Nil {
		return Credentials{}, fmt.Errorf("credentials.core.Get: %w", apperr.ErrNilUUID(FieldUserID))
	}

	creds, _, err := c.repo.Get(ctx, id)
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.Get: %w", err)
	}

	return creds, nil
}

func (c *core) GetByEmail(ctx context.Context, email string) (Credentials, string, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return Credentials{}, "", fmt.Errorf("credentials.core.GetByEmail: %w", err)
	}

	creds, passwordHash, err := c.repo.GetByEmail(ctx, email)
	if err != nil {
		return Credentials{}, "", fmt.Errorf("credentials.core.GetByEmail: %w", err)
	}

	return creds, passwordHash, nil
}

// ExistsByEmail never fails on a missing record, absence is a regular answer.
func (c *core) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return false, fmt.Errorf("credentials.core.ExistsByEmail: %w", err)
	}

	exists, err := c.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("credentials.core.ExistsByEmail: %w", err)
	}

	return exists, nil
}

func (c *core) List(ctx context.Context, filter ListFilter) ([]Credentials, error) {
	if filter.Limit <= 0 || filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if len(filter.Roles) > MaxRoleFilters {
		return nil, fmt.Errorf("credentials.core.List: %w",
			apperr.ErrBadRequest().WithDetail(fmt.Sprintf("at most %d role filters", MaxRoleFilters)))
	}
	for _, role := range filter.Roles {
		if err := role.Validate(); err != nil {
			return nil, fmt.Errorf("credentials.core.List: %w", session.ErrInvalidRoleValue())
		}
	}

	list, err := c.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("credentials.core.List: %w", err)
	}

	return list, nil
}

func (c *core) UpdateEmail(ctx context.Context, id uuid.UUID, email string) (Credentials, error) {
	if id == uuid.Nil {
		return Credentials{}, fmt.Errorf("credentials.core.UpdateEmail: %w", apperr.ErrNilUUID(FieldUserID))
	}
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.UpdateEmail: %w", err)
	}

	creds, err := c.repo.UpdateEmail(ctx, id, email, c.timeGenerator.Now())
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.UpdateEmail: %w", err)
	}

	return creds, nil
}

func (c *core) UpdatePassword(ctx context.Context, id uuid.UUID, password []byte) (Credentials, error) {
	if id == uuid.Nil {
		return Credentials{}, fmt.Errorf("credentials.core.UpdatePassword: %w", apperr.ErrNilUUID(FieldUserID))
	}
	if err := ValidatePassword(password); err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.UpdatePassword: %w", err)
	}

	passwordHash, err := c.hasher.HashPassword(password, c.cfg.PasswordHashCost)
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.UpdatePassword: %w", err)
	}

	creds, err := c.repo.UpdatePassword(ctx, id, string(passwordHash), c.timeGenerator.Now())
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.UpdatePassword: %w", err)
	}

	return creds, nil
}

func (c *core) CheckPassword(ctx context.Context, id uuid.UUID, password []byte) error {
	if id == uuid.Nil {
		return fmt.Errorf("credentials.core.CheckPassword: %w", apperr.ErrNilUUID(FieldUserID))
	}

	_, passwordHash, err := c.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("credentials.core.CheckPassword: %w", err)
	}

	if err = c.hasher.CheckPasswordHash(password, passwordHash); err != nil {
		return fmt.Errorf("credentials.core.CheckPassword: %w", ErrPasswordMismatch())
	}

	return nil
}

func (c *core) UpdateRole(ctx context.Context, id uuid.UUID, role session.Role) (Credentials, error) {
	if id == uuid.Nil {
		return Credentials{}, fmt.Errorf("credentials.core.UpdateRole: %w", apperr.ErrNilUUID(FieldUserID))
	}
	if err := role.Validate(); err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.UpdateRole: %w", session.ErrInvalidRoleValue())
	}
	if role == session.RoleAnon {
		return Credentials{}, fmt.Errorf("credentials.core.UpdateRole: %w", session.ErrInvalidRoleValue())
	}

	creds, err := c.repo.UpdateRole(ctx, id, role, c.timeGenerator.Now())
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials.core.UpdateRole: %w", err)
	}

	return creds, nil
}
