package authtest

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a-novel/service-authentication/pkg/authclient"
)

// Subjects of the verification mails, english translation. Mailpit search
// queries match against them.
const (
	SubjectRegister      = "Registration Request."
	SubjectEmailUpdate   = "Email Update Request."
	SubjectPasswordReset = "Password Reset Request."
)

// RandomEmail returns a unique throwaway address. Parallel tests sharing a
// mailbox rely on addresses never colliding.
func RandomEmail() string {
	raw := make([]byte, 12)
	_, _ = rand.Read(raw)

	return hex.EncodeToString(raw) + "@provider.com"
}

func RandomPassword() string {
	raw := make([]byte, 12)
	_, _ = rand.Read(raw)

	return hex.EncodeToString(raw)
}

// PreRegistered holds what a registration mail grants: the address and the
// short code that proves its ownership.
type PreRegistered struct {
	Email     string
	ShortCode string
}

// User is a fully registered account, with a live session.
type User struct {
	Email    string
	Password string
	Token    authclient.Token
	Claims   authclient.Claims
}

// CaptureShortCode waits for the verification mail sent to an address and
// returns the link it carries. The mail is deleted once read.
func CaptureShortCode(ctx context.Context, t *testing.T, mailbox *Mailbox, email, subject string) MailLink {
	t.Helper()

	msg, err := mailbox.WaitForMail(ctx, fmt.Sprintf("to:%q subject:%q", email, subject))
	require.NoError(t, err)

	body, err := io.ReadAll(msg.Body)
	require.NoError(t, err)

	link, err := ExtractLink(bytes.NewReader(body))
	require.NoError(t, err)

	return link
}

// PreRegister requests a registration code for a fresh random address and
// captures it from the mailbox. Any session can request one, including
// anonymous ones.
func PreRegister(ctx context.Context, t *testing.T, client *authclient.Client, mailbox *Mailbox, accessToken string) PreRegistered {
	t.Helper()

	email := RandomEmail()

	err := client.RequestRegistration(ctx, accessToken, authclient.ShortCodeForm{
		Email: email,
		Lang:  authclient.LangEn,
	})
	require.NoError(t, err)

	link := CaptureShortCode(ctx, t, mailbox, email, SubjectRegister)

	// The register link identifies the address itself, encoded to stay
	// query-safe.
	decoded, err := base64.RawURLEncoding.DecodeString(link.Target)
	require.NoError(t, err)
	require.Equal(t, email, string(decoded))

	return PreRegistered{Email: email, ShortCode: link.ShortCode}
}

// Register completes a registration with the mailed short code, from a
// fresh anonymous session.
func Register(ctx context.Context, t *testing.T, client *authclient.Client, pre PreRegistered) User {
	t.Helper()

	password := RandomPassword()

	anonToken, err := client.LoginAnon(ctx)
	require.NoError(t, err)

	token, err := client.Register(ctx, anonToken.AccessToken, authclient.RegisterForm{
		Email:     pre.Email,
		Password:  password,
		ShortCode: pre.ShortCode,
	})
	require.NoError(t, err)

	claims, err := client.GetClaims(ctx, token.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, claims.UserID)

	return User{Email: pre.Email, Password: password, Token: token, Claims: claims}
}

// RegisterUser chains PreRegister and Register.
func RegisterUser(ctx context.Context, t *testing.T, client *authclient.Client, mailbox *Mailbox) User {
	t.Helper()

	anonToken, err := client.LoginAnon(ctx)
	require.NoError(t, err)

	pre := PreRegister(ctx, t, client, mailbox, anonToken.AccessToken)

	return Register(ctx, t, client, pre)
}
