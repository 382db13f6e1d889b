// Package usecase exposes the session lifecycle: password login,
// anonymous sessions, refresh and claims introspection.
package usecase

import (
	"context"
	"fmt"

	"github.com/a-novel/service-authentication/internal/app/credentials"
	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Sessions interface {
	IssueSession(ctx context.Context, userID *uuid.UUID, role session.Role) (session.Token, error)
	RefreshSession(ctx context.Context, accessToken, refreshToken string) (session.Token, error)
	GetClaims(ctx context.Context, accessToken string) (session.Claims, error)
}

type CredentialsReader interface {
	GetByEmail(ctx context.Context, email string) (credentials.Credentials, string, error)
}

type PasswordChecker interface {
	CheckPasswordHash(password []byte, hash string) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=256"`
	Password string `json:"password" validate:"required,max=1024"`
}

type RefreshRequest struct {
	AccessToken  string `json:"accessToken" validate:"required,max=4096"`
	RefreshToken string `json:"refreshToken" validate:"required,max=1024"`
}

type Service struct {
	sessions    Sessions
	credentials CredentialsReader
	hasher      PasswordChecker
}

func NewService(sessions Sessions, credentialsReader CredentialsReader, hasher PasswordChecker) *Service {
	if sessions == nil || credentialsReader == nil || hasher == nil {
		panic("session.usecase.Service: nil dependency")
	}

	return &Service{sessions: sessions, credentials: credentialsReader, hasher: hasher}
}

// Login trades an email and password for a fresh session. An unknown
// email reports not found, a wrong password reports forbidden.
func (s *Service) Login(ctx context.Context, req LoginRequest) (session.Token, error) {
	if err := validate.Struct(req); err != nil {
		return session.Token{}, fmt.Errorf("session.usecase.Login: %w", apperr.FromValidationErrors(err))
	}

	creds, passwordHash, err := s.credentials.GetByEmail(ctx, req.Email)
	if err != nil {
		return session.Token{}, fmt.Errorf("session.usecase.Login: %w", err)
	}

	if err = s.hasher.CheckPasswordHash([]byte(req.Password), passwordHash); err != nil {
		return session.Token{}, fmt.Errorf("session.usecase.Login: %w", credentials.ErrPasswordMismatch())
	}

	token, err := s.sessions.IssueSession(ctx, &creds.ID, creds.Role)
	if err != nil {
		return session.Token{}, fmt.Errorf("session.usecase.Login: %w", err)
	}

	return token, nil
}

// LoginAnon opens a session without an account, scoped to the anon role.
func (s *Service) LoginAnon(ctx context.Context) (session.Token, error) {
	token, err := s.sessions.IssueSession(ctx, nil, session.RoleAnon)
	if err != nil {
		return session.Token{}, fmt.Errorf("session.usecase.LoginAnon: %w", err)
	}

	return token, nil
}

// Refresh issues a new token pair from an expired access token and its
// paired refresh token.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (session.Token, error) {
	if err := validate.Struct(req); err != nil {
		return session.Token{}, fmt.Errorf("session.usecase.Refresh: %w", apperr.FromValidationErrors(err))
	}

	token, err := s.sessions.RefreshSession(ctx, req.AccessToken, req.RefreshToken)
	if err != nil {
		return session.Token{}, fmt.Errorf("session.usecase.Refresh: %w", err)
	}

	return token, nil
}

// GetClaims decodes and verifies an access token, returning its claims.
func (s *Service) GetClaims(ctx context.Context, accessToken string) (session.Claims, error) {
	claims, err := s.sessions.GetClaims(ctx, accessToken)
	if err != nil {
		return session.Claims{}, fmt.Errorf("session.usecase.GetClaims: %w", err)
	}

	return claims, nil
}
