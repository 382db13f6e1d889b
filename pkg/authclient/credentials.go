package authclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

type RegisterForm struct {
	Email     string `json:"email" validate:"required,email,max=256"`
	Password  string `json:"password" validate:"required,max=1024"`
	ShortCode string `json:"shortCode" validate:"required,max=128"`
}

type UpdateEmailForm struct {
	UserID    uuid.UUID `json:"userID" validate:"required"`
	ShortCode string    `json:"shortCode" validate:"required,max=128"`
}

type UpdatePasswordForm struct {
	Password        string `json:"password" validate:"required,max=1024"`
	CurrentPassword string `json:"currentPassword" validate:"required,max=1024"`
}

type ResetPasswordForm struct {
	Password  string    `json:"password" validate:"required,max=1024"`
	ShortCode string    `json:"shortCode" validate:"required,max=128"`
	UserID    uuid.UUID `json:"userID" validate:"required"`
}

type UpdateRoleForm struct {
	UserID uuid.UUID `json:"userID" validate:"required"`
	Role   Role      `json:"role" validate:"required,oneof=auth:anon auth:user auth:admin auth:superadmin"`
}

type ListForm struct {
	Limit  int    `validate:"omitempty,min=0,max=100"`
	Offset int    `validate:"min=0"`
	Roles  []Role `validate:"max=10"`
}

// Register completes a registration started by RequestRegistration. The
// short code comes from the mailed link. On success the returned token
// replaces the anonymous session.
func (c *Client) Register(ctx context.Context, accessToken string, form RegisterForm) (Token, error) {
	if err := validateForm(form); err != nil {
		return Token{}, err
	}

	var token Token
	if err := c.do(ctx, http.MethodPut, "/credentials", nil, accessToken, form, &token); err != nil {
		return Token{}, err
	}

	return token, nil
}

// GetCredentials fetches one account. Non-admin sessions can only fetch
// their own.
func (c *Client) GetCredentials(ctx context.Context, accessToken string, id uuid.UUID) (Credentials, error) {
	query := url.Values{}
	query.Set("id", id.String())

	var creds Credentials
	if err := c.do(ctx, http.MethodGet, "/credentials", query, accessToken, nil, &creds); err != nil {
		return Credentials{}, err
	}

	return creds, nil
}

// CredentialsExist reports whether an account owns the given email.
func (c *Client) CredentialsExist(ctx context.Context, accessToken, email string) (bool, error) {
	query := url.Values{}
	query.Set("email", email)

	err := c.do(ctx, http.MethodHead, "/credentials", query, accessToken, nil, nil)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// ListCredentials pages through accounts, optionally filtered by role.
// Admin only.
func (c *Client) ListCredentials(ctx context.Context, accessToken string, form ListForm) ([]Credentials, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	if form.Limit <= 0 {
		form.Limit = MaxListLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(form.Limit))
	query.Set("offset", strconv.Itoa(form.Offset))
	for _, role := range form.Roles {
		query.Add("roles", string(role))
	}

	var creds []Credentials
	if err := c.do(ctx, http.MethodGet, "/credentials/all", query, accessToken, nil, &creds); err != nil {
		return nil, err
	}

	return creds, nil
}

// UpdateEmail switches the session owner's email to the address that
// received the short code.
func (c *Client) UpdateEmail(ctx context.Context, accessToken string, form UpdateEmailForm) (Credentials, error) {
	if err := validateForm(form); err != nil {
		return Credentials{}, err
	}

	var creds Credentials
	if err := c.do(ctx, http.MethodPatch, "/credentials/email", nil, accessToken, form, &creds); err != nil {
		return Credentials{}, err
	}

	return creds, nil
}

// UpdatePassword replaces the session owner's password, authorized by the
// current one.
func (c *Client) UpdatePassword(ctx context.Context, accessToken string, form UpdatePasswordForm) (Credentials, error) {
	if err := validateForm(form); err != nil {
		return Credentials{}, err
	}

	var creds Credentials
	if err := c.do(ctx, http.MethodPatch, "/credentials/password", nil, accessToken, form, &creds); err != nil {
		return Credentials{}, err
	}

	return creds, nil
}

// ResetPassword replaces an account password, authorized by a mailed
// reset code instead of the current password.
func (c *Client) ResetPassword(ctx context.Context, accessToken string, form ResetPasswordForm) (Credentials, error) {
	if err := validateForm(form); err != nil {
		return Credentials{}, err
	}

	var creds Credentials
	if err := c.do(ctx, http.MethodPut, "/credentials/password", nil, accessToken, form, &creds); err != nil {
		return Credentials{}, err
	}

	return creds, nil
}

// UpdateRole changes another account's role. Admin only, within the
// caller's own rank.
func (c *Client) UpdateRole(ctx context.Context, accessToken string, form UpdateRoleForm) (Credentials, error) {
	if err := validateForm(form); err != nil {
		return Credentials{}, err
	}

	var creds Credentials
	if err := c.do(ctx, http.MethodPatch, "/credentials/role", nil, accessToken, form, &creds); err != nil {
		return Credentials{}, err
	}

	return creds, nil
}
