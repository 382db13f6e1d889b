package authclient

import (
	"context"
	"net/http"
)

// ShortCodeForm requests a verification mail. The email is the address
// that receives the code, lang picks the mail translation.
type ShortCodeForm struct {
	Email string `json:"email" validate:"required,email,max=256"`
	Lang  Lang   `json:"lang" validate:"required,oneof=en fr"`
}

// RequestRegistration mails a registration code to an address without an
// account. Completing the registration requires the mailed code.
func (c *Client) RequestRegistration(ctx context.Context, accessToken string, form ShortCodeForm) error {
	if err := validateForm(form); err != nil {
		return err
	}

	return c.do(ctx, http.MethodPut, "/short-code/register", nil, accessToken, form, nil)
}

// RequestEmailUpdate mails a confirmation code to the address the session
// owner wants to switch to.
func (c *Client) RequestEmailUpdate(ctx context.Context, accessToken string, form ShortCodeForm) error {
	if err := validateForm(form); err != nil {
		return err
	}

	return c.do(ctx, http.MethodPut, "/short-code/update-email", nil, accessToken, form, nil)
}

// RequestPasswordReset mails a reset code to the account owning the given
// address. The call succeeds even for unknown addresses, so it cannot be
// used to probe which emails have accounts.
func (c *Client) RequestPasswordReset(ctx context.Context, accessToken string, form ShortCodeForm) error {
	if err := validateForm(form); err != nil {
		return err
	}

	return c.do(ctx, http.MethodPut, "/short-code/update-password", nil, accessToken, form, nil)
}
