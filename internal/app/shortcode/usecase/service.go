// Package usecase drives the short code request workflows: a code gets
// issued, then mailed to the address that must prove ownership.
package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/a-novel/service-authentication/internal/app/credentials"
	"github.com/a-novel/service-authentication/internal/app/shortcode"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/a-novel/service-authentication/internal/infrastructure/logger"
	"github.com/a-novel/service-authentication/internal/infrastructure/mailer"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ShortCodes interface {
	Create(ctx context.Context, usage shortcode.Usage, target string, data string) (string, shortcode.ShortCode, error)
}

type Mailer interface {
	SendShortCodeMail(ctx context.Context, to string, kind mailer.Kind, lang mailer.Lang, data mailer.LinkData) error
}

type CredentialsReader interface {
	GetByEmail(ctx context.Context, email string) (credentials.Credentials, string, error)
}

// URLs are the front-end pages the mailed links point to. The short code
// and target are appended as query parameters.
type URLs struct {
	Register       string `mapstructure:"register" json:"register"`
	UpdateEmail    string `mapstructure:"update_email" json:"update_email"`
	UpdatePassword string `mapstructure:"update_password" json:"update_password"`
}

type RegisterRequest struct {
	Email string `json:"email" validate:"required,email,max=256"`
	Lang  string `json:"lang" validate:"required,oneof=en fr"`
}

type EmailUpdateRequest struct {
	Email string `json:"email" validate:"required,email,max=256"`
	Lang  string `json:"lang" validate:"required,oneof=en fr"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email,max=256"`
	Lang  string `json:"lang" validate:"required,oneof=en fr"`
}

type Service struct {
	shortCodes  ShortCodes
	mailer      Mailer
	credentials CredentialsReader
	urls        URLs

	wg sync.WaitGroup
}

func NewService(shortCodes ShortCodes, sender Mailer, credentialsReader CredentialsReader, urls URLs) *Service {
	if shortCodes == nil || sender == nil || credentialsReader == nil {
		panic("shortcode.usecase.Service: nil dependency")
	}
	if urls.Register == "" || urls.UpdateEmail == "" || urls.UpdatePassword == "" {
		panic("shortcode.usecase.Service: empty url")
	}

	return &Service{shortCodes: shortCodes, mailer: sender, credentials: credentialsReader, urls: urls}
}

// Wait blocks until pending mail deliveries are done. Mails are sent
// outside the request lifecycle, callers terminate before delivery.
func (s *Service) Wait() {
	s.wg.Wait()
}

// RequestRegister mails a registration code to an address that does not
// have an account yet. The mailed link identifies the address itself, so
// the target is its base64 form to stay query-safe.
func (s *Service) RequestRegister(ctx context.Context, req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("shortcode.usecase.RequestRegister: %w", apperr.FromValidationErrors(err))
	}

	email := credentials.NormalizeEmail(req.Email)

	plainCode, pending, err := s.shortCodes.Create(ctx, shortcode.UsageRegister, email, "")
	if err != nil {
		return fmt.Errorf("shortcode.usecase.RequestRegister: %w", err)
	}

	s.deliver(ctx, email, mailer.KindRegister, mailer.Lang(req.Lang), mailer.LinkData{
		URL:           s.urls.Register,
		ShortCode:     plainCode,
		Target:        base64.RawURLEncoding.EncodeToString([]byte(email)),
		DurationHours: time.Until(pending.ExpiresAt).Hours(),
	})

	return nil
}

// RequestEmailUpdate mails a confirmation code to the address the user
// wants to switch to. The new address rides along as the code payload,
// redemption reads it back from storage rather than from the client.
func (s *Service) RequestEmailUpdate(ctx context.Context, userID uuid.UUID, req EmailUpdateRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("shortcode.usecase.RequestEmailUpdate: %w", apperr.FromValidationErrors(err))
	}
	if userID == uuid.Nil {
		return fmt.Errorf("shortcode.usecase.RequestEmailUpdate: %w", apperr.ErrUnauthorized())
	}

	email := credentials.NormalizeEmail(req.Email)

	plainCode, pending, err := s.shortCodes.Create(ctx, shortcode.UsageUpdateEmail, userID.String(), email)
	if err != nil {
		return fmt.Errorf("shortcode.usecase.RequestEmailUpdate: %w", err)
	}

	s.deliver(ctx, email, mailer.KindEmailUpdate, mailer.Lang(req.Lang), mailer.LinkData{
		URL:           s.urls.UpdateEmail,
		ShortCode:     plainCode,
		Target:        userID.String(),
		DurationHours: time.Until(pending.ExpiresAt).Hours(),
	})

	return nil
}

// RequestPasswordReset mails a reset code to the account owning the
// address. An unknown address reports success without sending anything,
// the response never reveals whether an account exists.
func (s *Service) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("shortcode.usecase.RequestPasswordReset: %w", apperr.FromValidationErrors(err))
	}

	email := credentials.NormalizeEmail(req.Email)

	creds, _, err := s.credentials.GetByEmail(ctx, email)
	if err != nil {
		if apperr.ClassOf(err) == apperr.ClassNotFound {
			logger.Warn(ctx, err).Msg("password reset requested for unknown email")

			return nil
		}
		return fmt.Errorf("shortcode.usecase.RequestPasswordReset: %w", err)
	}

	plainCode, pending, err := s.shortCodes.Create(ctx, shortcode.UsageResetPassword, creds.ID.String(), "")
	if err != nil {
		return fmt.Errorf("shortcode.usecase.RequestPasswordReset: %w", err)
	}

	s.deliver(ctx, email, mailer.KindPasswordReset, mailer.Lang(req.Lang), mailer.LinkData{
		URL:           s.urls.UpdatePassword,
		ShortCode:     plainCode,
		Target:        creds.ID.String(),
		DurationHours: time.Until(pending.ExpiresAt).Hours(),
	})

	return nil
}

func (s *Service) deliver(ctx context.Context, to string, kind mailer.Kind, lang mailer.Lang, data mailer.LinkData) {
	s.wg.Add(1)

	// Delivery survives the request, the code was already persisted.
	go func(ctx context.Context) {
		defer s.wg.Done()

		if err := s.mailer.SendShortCodeMail(ctx, to, kind, lang, data); err != nil {
			logger.Error(ctx, err).Str("mail_kind", string(kind)).Msg("send short code mail")
		}
	}(context.WithoutCancel(ctx))
}
