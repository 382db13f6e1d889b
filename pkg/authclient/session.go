package authclient

import (
	"context"
	"net/http"
)

type LoginForm struct {
	Email    string `json:"email" validate:"required,email,max=256"`
	Password string `json:"password" validate:"required,max=1024"`
}

type RefreshForm struct {
	AccessToken  string `json:"accessToken" validate:"required,max=1024"`
	RefreshToken string `json:"refreshToken" validate:"required,max=1024"`
}

// Login opens a session against existing credentials.
func (c *Client) Login(ctx context.Context, form LoginForm) (Token, error) {
	if err := validateForm(form); err != nil {
		return Token{}, err
	}

	var token Token
	if err := c.do(ctx, http.MethodPut, "/session", nil, "", form, &token); err != nil {
		return Token{}, err
	}

	return token, nil
}

// LoginAnon opens an anonymous session. Anonymous sessions can request
// registration codes and complete registrations, nothing else.
func (c *Client) LoginAnon(ctx context.Context) (Token, error) {
	var token Token
	if err := c.do(ctx, http.MethodPut, "/session/anon", nil, "", nil, &token); err != nil {
		return Token{}, err
	}

	return token, nil
}

// RefreshSession trades an expired pair for a fresh one. The access token
// may be expired, the pair just has to match.
func (c *Client) RefreshSession(ctx context.Context, form RefreshForm) (Token, error) {
	if err := validateForm(form); err != nil {
		return Token{}, err
	}

	var token Token
	if err := c.do(ctx, http.MethodPatch, "/session", nil, "", form, &token); err != nil {
		return Token{}, err
	}

	return token, nil
}

// GetClaims resolves the identity behind a live access token.
func (c *Client) GetClaims(ctx context.Context, accessToken string) (Claims, error) {
	var claims Claims
	if err := c.do(ctx, http.MethodGet, "/session", nil, accessToken, nil, &claims); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
