// Package usecase assembles the account workflows on top of the
// credentials, short code and session cores.
package usecase

import (
	"context"
	"fmt"

	"github.com/a-novel/service-authentication/internal/app/credentials"
	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/app/shortcode"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Credentials interface {
	Create(ctx context.Context, email string, password []byte) (credentials.Credentials, error)
	Get(ctx context.Context, id uuid.UUID) (credentials.Credentials, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter credentials.ListFilter) ([]credentials.Credentials, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) (credentials.Credentials, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, password []byte) (credentials.Credentials, error)
	CheckPassword(ctx context.Context, id uuid.UUID, password []byte) error
	UpdateRole(ctx context.Context, id uuid.UUID, role session.Role) (credentials.Credentials, error)
}

type ShortCodes interface {
	Consume(ctx context.Context, usage shortcode.Usage, target string, code string) (string, error)
}

type Sessions interface {
	IssueSession(ctx context.Context, userID *uuid.UUID, role session.Role) (session.Token, error)
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=256"`
	Password  string `json:"password" validate:"required,max=1024"`
	ShortCode string `json:"shortCode" validate:"required,max=128"`
}

type UpdateEmailRequest struct {
	UserID    uuid.UUID `json:"userID" validate:"required"`
	ShortCode string    `json:"shortCode" validate:"required,max=128"`
}

type UpdatePasswordRequest struct {
	Password        string `json:"password" validate:"required,max=1024"`
	CurrentPassword string `json:"currentPassword" validate:"required,max=1024"`
}

type ResetPasswordRequest struct {
	UserID    uuid.UUID `json:"userID" validate:"required"`
	Password  string    `json:"password" validate:"required,max=1024"`
	ShortCode string    `json:"shortCode" validate:"required,max=128"`
}

type UpdateRoleRequest struct {
	UserID uuid.UUID    `json:"userID" validate:"required"`
	Role   session.Role `json:"role" validate:"required"`
}

type Service struct {
	credentials Credentials
	shortCodes  ShortCodes
	sessions    Sessions
}

func NewService(credentialsCore Credentials, shortCodes ShortCodes, sessions Sessions) *Service {
	if credentialsCore == nil || shortCodes == nil || sessions == nil {
		panic("credentials.usecase.Service: nil dependency")
	}

	return &Service{credentials: credentialsCore, shortCodes: shortCodes, sessions: sessions}
}

// Register trades a mailed registration code for an account, then opens
// a session for it. Registration is permanent, a caller that already
// owns an account cannot register another one from its session.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (session.Token, error) {
	if err := validate.Struct(req); err != nil {
		return session.Token{}, fmt.Errorf("credentials.usecase.Register: %w", apperr.FromValidationErrors(err))
	}

	claims, err := session.ClaimsFromContext(ctx)
	if err != nil {
		return session.Token{}, fmt.Errorf("credentials.usecase.Register: %w", err)
	}
	if claims.UserID != nil {
		return session.Token{}, fmt.Errorf("credentials.usecase.Register: %w", credentials.ErrAlreadyRegistered())
	}

	email := credentials.NormalizeEmail(req.Email)

	if _, err = s.shortCodes.Consume(ctx, shortcode.UsageRegister, email, req.ShortCode); err != nil {
		return session.Token{}, fmt.Errorf("credentials.usecase.Register: %w", err)
	}

	creds, err := s.credentials.Create(ctx, email, []byte(req.Password))
	if err != nil {
		// A duplicate row means this address completed a registration
		// before. The permanent guard applies, not a conflict.
		if apperr.CodeOf(err) == credentials.CodeEmailDuplicate {
			err = credentials.ErrAlreadyRegistered()
		}

		return session.Token{}, fmt.Errorf("credentials.usecase.Register: %w", err)
	}

	token, err := s.sessions.IssueSession(ctx, &creds.ID, creds.Role)
	if err != nil {
		return session.Token{}, fmt.Errorf("credentials.usecase.Register: %w", err)
	}

	return token, nil
}

// UpdateEmail redeems an email update code. The new address is the code
// payload, stored when the update was requested. Callers can only update
// their own account, unless they hold the admin role.
func (s *Service) UpdateEmail(ctx context.Context, req UpdateEmailRequest) (credentials.Credentials, error) {
	if err := validate.Struct(req); err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateEmail: %w", apperr.FromValidationErrors(err))
	}

	claims, err := session.ClaimsFromContext(ctx)
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateEmail: %w", err)
	}

	self := claims.UserID != nil && *claims.UserID == req.UserID
	if !self && !claims.Role().AtLeast(session.RoleAdmin) {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateEmail: %w", credentials.ErrInsufficientRole())
	}

	newEmail, err := s.shortCodes.Consume(ctx, shortcode.UsageUpdateEmail, req.UserID.String(), req.ShortCode)
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateEmail: %w", err)
	}

	creds, err := s.credentials.UpdateEmail(ctx, req.UserID, newEmail)
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateEmail: %w", err)
	}

	return creds, nil
}

// UpdatePassword changes the caller's own password, after checking the
// current one.
func (s *Service) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) (credentials.Credentials, error) {
	if err := validate.Struct(req); err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdatePassword: %w", apperr.FromValidationErrors(err))
	}

	claims, err := session.ClaimsFromContext(ctx)
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdatePassword: %w", err)
	}
	if claims.UserID == nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdatePassword: %w", apperr.ErrUnauthorized())
	}

	if err = s.credentials.CheckPassword(ctx, *claims.UserID, []byte(req.CurrentPassword)); err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdatePassword: %w", err)
	}

	creds, err := s.credentials.UpdatePassword(ctx, *claims.UserID, []byte(req.Password))
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdatePassword: %w", err)
	}

	return creds, nil
}

// ResetPassword redeems a password reset code to set a new password,
// without knowing the old one.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (credentials.Credentials, error) {
	if err := validate.Struct(req); err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.ResetPassword: %w", apperr.FromValidationErrors(err))
	}

	if _, err := s.shortCodes.Consume(ctx, shortcode.UsageResetPassword, req.UserID.String(), req.ShortCode); err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.ResetPassword: %w", err)
	}

	creds, err := s.credentials.UpdatePassword(ctx, req.UserID, []byte(req.Password))
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.ResetPassword: %w", err)
	}

	return creds, nil
}

// UpdateRole changes another account's role. The caller must outrank the
// target's current role, cannot grant a role above its own, and cannot
// touch its own account.
func (s *Service) UpdateRole(ctx context.Context, req UpdateRoleRequest) (credentials.Credentials, error) {
	if err := validate.Struct(req); err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateRole: %w", apperr.FromValidationErrors(err))
	}

	claims, err := session.ClaimsFromContext(ctx)
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateRole: %w", err)
	}
	if claims.UserID == nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateRole: %w", apperr.ErrUnauthorized())
	}
	if *claims.UserID == req.UserID {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateRole: %w", credentials.ErrInsufficientRole())
	}

	callerRole := claims.Role()

	target, err := s.credentials.Get(ctx, req.UserID)
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateRole: %w", err)
	}

	if !callerRole.Outranks(target.Role) {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateRole: %w", credentials.ErrInsufficientRole())
	}
	if req.Role.Outranks(callerRole) {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateRole: %w", credentials.ErrInsufficientRole())
	}

	creds, err := s.credentials.UpdateRole(ctx, req.UserID, req.Role)
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.UpdateRole: %w", err)
	}

	return creds, nil
}

// Get returns an account by id. Callers can always read their own
// account, reading others requires the admin role.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (credentials.Credentials, error) {
	claims, err := session.ClaimsFromContext(ctx)
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.Get: %w", err)
	}

	self := claims.UserID != nil && *claims.UserID == id
	if !self && !claims.Role().AtLeast(session.RoleAdmin) {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.Get: %w", credentials.ErrInsufficientRole())
	}

	creds, err := s.credentials.Get(ctx, id)
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("credentials.usecase.Get: %w", err)
	}

	return creds, nil
}

// Exists reports whether an account uses the email.
func (s *Service) Exists(ctx context.Context, email string) (bool, error) {
	exists, err := s.credentials.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("credentials.usecase.Exists: %w", err)
	}

	return exists, nil
}

// List pages through accounts, optionally filtered by role.
func (s *Service) List(ctx context.Context, filter credentials.ListFilter) ([]credentials.Credentials, error) {
	list, err := s.credentials.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("credentials.usecase.List: %w", err)
	}

	return list, nil
}
