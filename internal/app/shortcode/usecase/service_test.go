package usecase

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/a-novel/service-authentication/internal/app/credentials"
	"github.com/a-novel/service-authentication/internal/app/shortcode"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/a-novel/service-authentication/internal/infrastructure/mailer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testURLs = URLs{
	Register:       "https://front.example.com/register",
	UpdateEmail:    "https://front.example.com/update-email",
	UpdatePassword: "https://front.example.com/update-password",
}

type shortCodesFake struct {
	createdUsage  shortcode.Usage
	createdTarget string
	createdData   string
	err           error
}

func (f *shortCodesFake) Create(_ context.Context, usage shortcode.Usage, target string, data string) (string, shortcode.ShortCode, error) {
	if f.err != nil {
		return "", shortcode.ShortCode{}, f.err
	}

	f.createdUsage = usage
	f.createdTarget = target
	f.createdData = data

	return "plain-code", shortcode.ShortCode{
		Usage:     usage,
		Target:    target,
		Data:      data,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type sentMail struct {
	to   string
	kind mailer.Kind
	lang mailer.Lang
	data mailer.LinkData
}

type mailerFake struct {
	sent chan sentMail
}

func newMailerFake() *mailerFake {
	return &mailerFake{sent: make(chan sentMail, 1)}
}

func (f *mailerFake) SendShortCodeMail(_ context.Context, to string, kind mailer.Kind, lang mailer.Lang, data mailer.LinkData) error {
	f.sent <- sentMail{to: to, kind: kind, lang: lang, data: data}

	return nil
}

type credentialsReaderFake struct {
	creds credentials.Credentials
	err   error
}

func (f *credentialsReaderFake) GetByEmail(context.Context, string) (credentials.Credentials, string, error) {
	return f.creds, "", f.err
}

func TestRequestRegister(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		shortCodes := &shortCodesFake{}
		sender := newMailerFake()
		service := NewService(shortCodes, sender, &credentialsReaderFake{}, testURLs)

		err := service.RequestRegister(t.Context(), RegisterRequest{Email: "User@Example.com", Lang: "en"})
		require.NoError(t, err)

		service.Wait()

		assert.Equal(t, shortcode.UsageRegister, shortCodes.createdUsage)
		assert.Equal(t, "user@example.com", shortCodes.createdTarget)

		mail := <-sender.sent
		assert.Equal(t, "user@example.com", mail.to)
		assert.Equal(t, mailer.KindRegister, mail.kind)
		assert.Equal(t, mailer.LangEN, mail.lang)
		assert.Equal(t, testURLs.Register, mail.data.URL)
		assert.Equal(t, "plain-code", mail.data.ShortCode)
		assert.Equal(t, base64.RawURLEncoding.EncodeToString([]byte("user@example.com")), mail.data.Target)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		t.Parallel()

		service := NewService(&shortCodesFake{}, newMailerFake(), &credentialsReaderFake{}, testURLs)

		err := service.RequestRegister(t.Context(), RegisterRequest{Email: "nope", Lang: "en"})
		require.Error(t, err)
		assert.Equal(t, apperr.ClassBadRequest, apperr.ClassOf(err))
	})

	t.Run("UnknownLang", func(t *testing.T) {
		t.Parallel()

		service := NewService(&shortCodesFake{}, newMailerFake(), &credentialsReaderFake{}, testURLs)

		err := service.RequestRegister(t.Context(), RegisterRequest{Email: "user@example.com", Lang: "de"})
		require.Error(t, err)
		assert.Equal(t, apperr.ClassBadRequest, apperr.ClassOf(err))
	})
}

func TestRequestEmailUpdate(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		shortCodes := &shortCodesFake{}
		sender := newMailerFake()
		service := NewService(shortCodes, sender, &credentialsReaderFake{}, testURLs)

		err := service.RequestEmailUpdate(t.Context(), userID, EmailUpdateRequest{Email: "new@example.com", Lang: "fr"})
		require.NoError(t, err)

		service.Wait()

		assert.Equal(t, shortcode.UsageUpdateEmail, shortCodes.createdUsage)
		assert.Equal(t, userID.String(), shortCodes.createdTarget)
		assert.Equal(t, "new@example.com", shortCodes.createdData)

		mail := <-sender.sent
		assert.Equal(t, "new@example.com", mail.to)
		assert.Equal(t, mailer.KindEmailUpdate, mail.kind)
		assert.Equal(t, mailer.LangFR, mail.lang)
		assert.Equal(t, userID.String(), mail.data.Target)
	})

	t.Run("NilUser", func(t *testing.T) {
		t.Parallel()

		service := NewService(&shortCodesFake{}, newMailerFake(), &credentialsReaderFake{}, testURLs)

		err := service.RequestEmailUpdate(t.Context(), uuid.Nil, EmailUpdateRequest{Email: "new@example.com", Lang: "en"})
		require.Error(t, err)
		assert.Equal(t, apperr.ClassUnauthorized, apperr.ClassOf(err))
	})
}

func TestRequestPasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		shortCodes := &shortCodesFake{}
		sender := newMailerFake()
		reader := &credentialsReaderFake{creds: credentials.Credentials{ID: userID, Email: "user@example.com"}}
		service := NewService(shortCodes, sender, reader, testURLs)

		err := service.RequestPasswordReset(t.Context(), PasswordResetRequest{Email: "user@example.com", Lang: "en"})
		require.NoError(t, err)

		service.Wait()

		assert.Equal(t, shortcode.UsageResetPassword, shortCodes.createdUsage)
		assert.Equal(t, userID.String(), shortCodes.createdTarget)

		mail := <-sender.sent
		assert.Equal(t, "user@example.com", mail.to)
		assert.Equal(t, mailer.KindPasswordReset, mail.kind)
		assert.Equal(t, userID.String(), mail.data.Target)
	})

	t.Run("UnknownEmailSilentSuccess", func(t *testing.T) {
		t.Parallel()

		shortCodes := &shortCodesFake{}
		sender := newMailerFake()
		reader := &credentialsReaderFake{err: credentials.ErrNotFound()}
		service := NewService(shortCodes, sender, reader, testURLs)

		err := service.RequestPasswordReset(t.Context(), PasswordResetRequest{Email: "ghost@example.com", Lang: "en"})
		require.NoError(t, err)

		service.Wait()
		assert.Empty(t, sender.sent)
		assert.Empty(t, shortCodes.createdTarget)
	})
}
