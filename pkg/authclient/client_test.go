package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, srv.Client())
}

func writeError(w http.ResponseWriter, status int, message, code string, violations ...Violation) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": APIError{Message: message, Code: code, Violations: violations},
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/session", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Empty(t, r.Header.Get("Authorization"))

			var form LoginForm
			require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
			assert.Equal(t, "user@example.com", form.Email)
			assert.Equal(t, "secret", form.Password)

			_ = json.NewEncoder(w).Encode(Token{AccessToken: "access", RefreshToken: "refresh"})
		})

		token, err := client.Login(ctx, LoginForm{Email: "user@example.com", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "access", token.AccessToken)
		assert.Equal(t, "refresh", token.RefreshToken)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusForbidden, "password mismatch", "credentials/password_mismatch",
				Violation{Field: "password", Rule: "mismatch"})
		})

		_, err := client.Login(ctx, LoginForm{Email: "user@example.com", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
		assert.False(t, IsNotFound(err))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "credentials/password_mismatch", apiErr.Code)
		require.Len(t, apiErr.Violations, 1)
		assert.Equal(t, "password", apiErr.Violations[0].Field)
	})

	t.Run("InvalidFormNotSent", func(t *testing.T) {
		t.Parallel()

		called := false
		client := newTestServer(t, func(http.ResponseWriter, *http.Request) { called = true })

		_, err := client.Login(ctx, LoginForm{Email: "not an email", Password: "secret"})
		require.Error(t, err)
		assert.False(t, called)
	})
}

func TestLoginAnon(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/session/anon", r.URL.Path)

		_ = json.NewEncoder(w).Encode(Token{AccessToken: "anon-access", RefreshToken: "anon-refresh"})
	})

	token, err := client.LoginAnon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "anon-access", token.AccessToken)
}

func TestRefreshSession(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/session", r.URL.Path)

		var form RefreshForm
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
		assert.Equal(t, "old-access", form.AccessToken)
		assert.Equal(t, "old-refresh", form.RefreshToken)

		_ = json.NewEncoder(w).Encode(Token{AccessToken: "new-access", RefreshToken: "new-refresh"})
	})

	token, err := client.RefreshSession(context.Background(), RefreshForm{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-access", token.AccessToken)
}

func TestGetClaims(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/session", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(Claims{UserID: &userID, Roles: []Role{RoleUser}, RefreshTokenID: "rt-1"})
	})

	claims, err := client.GetClaims(context.Background(), "access")
	require.NoError(t, err)
	require.NotNil(t, claims.UserID)
	assert.Equal(t, userID, *claims.UserID)
	assert.Equal(t, RoleUser, claims.Role())
	assert.Equal(t, "rt-1", claims.RefreshTokenID)
}

func TestRequestShortCodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	paths := map[string]func(*Client) error{
		"/short-code/register": func(c *Client) error {
			return c.RequestRegistration(ctx, "access", ShortCodeForm{Email: "new@example.com", Lang: LangEn})
		},
		"/short-code/update-email": func(c *Client) error {
			return c.RequestEmailUpdate(ctx, "access", ShortCodeForm{Email: "new@example.com", Lang: LangEn})
		},
		"/short-code/update-password": func(c *Client) error {
			return c.RequestPasswordReset(ctx, "access", ShortCodeForm{Email: "new@example.com", Lang: LangEn})
		},
	}

	for path, call := range paths {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, path, r.URL.Path)
				assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))

				w.WriteHeader(http.StatusNoContent)
			})

			require.NoError(t, call(client))
		})
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/credentials", r.URL.Path)

			var form RegisterForm
			require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
			assert.Equal(t, "new@example.com", form.Email)
			assert.Equal(t, "mailed-code", form.ShortCode)

			_ = json.NewEncoder(w).Encode(Token{AccessToken: "access", RefreshToken: "refresh"})
		})

		token, err := client.Register(ctx, "anon-access", RegisterForm{
			Email:     "new@example.com",
			Password:  "secret",
			ShortCode: "mailed-code",
		})
		require.NoError(t, err)
		assert.Equal(t, "access", token.AccessToken)
	})

	t.Run("BadShortCode", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusForbidden, "invalid short code", "shortcode/invalid")
		})

		_, err := client.Register(ctx, "anon-access", RegisterForm{
			Email:     "new@example.com",
			Password:  "secret",
			ShortCode: "stale-code",
		})
		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})
}

func TestGetCredentials(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/credentials", r.URL.Path)
		assert.Equal(t, id.String(), r.URL.Query().Get("id"))

		_ = json.NewEncoder(w).Encode(Credentials{
			ID: id, Email: "user@example.com", Role: RoleUser, CreatedAt: now, UpdatedAt: now,
		})
	})

	creds, err := client.GetCredentials(context.Background(), "access", id)
	require.NoError(t, err)
	assert.Equal(t, id, creds.ID)
	assert.Equal(t, "user@example.com", creds.Email)
	assert.Equal(t, now, creds.CreatedAt)
}

func TestCredentialsExist(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			assert.Equal(t, "taken@example.com", r.URL.Query().Get("email"))

			w.WriteHeader(http.StatusNoContent)
		})

		exists, err := client.CredentialsExist(ctx, "access", "taken@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("DoesNotExist", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		exists, err := client.CredentialsExist(ctx, "access", "free@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("OtherErrorsPassThrough", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.CredentialsExist(ctx, "stale-access", "taken@example.com")
		require.Error(t, err)
		assert.True(t, IsUnauthorized(err))
	})
}

func TestListCredentials(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/credentials/all", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		assert.Equal(t, []string{"auth:user", "auth:admin"}, r.URL.Query()["roles"])

		_ = json.NewEncoder(w).Encode([]Credentials{
			{ID: uuid.New(), Email: "a@example.com", Role: RoleUser, CreatedAt: now, UpdatedAt: now},
			{ID: uuid.New(), Email: "b@example.com", Role: RoleAdmin, CreatedAt: now, UpdatedAt: now},
		})
	})

	creds, err := client.ListCredentials(context.Background(), "access", ListForm{
		Limit:  10,
		Offset: 20,
		Roles:  []Role{RoleUser, RoleAdmin},
	})
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "a@example.com", creds[0].Email)
}

func TestUpdateCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("UpdateEmail", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/credentials/email", r.URL.Path)

			_ = json.NewEncoder(w).Encode(Credentials{
				ID: userID, Email: "next@example.com", Role: RoleUser, CreatedAt: now, UpdatedAt: now,
			})
		})

		creds, err := client.UpdateEmail(ctx, "access", UpdateEmailForm{UserID: userID, ShortCode: "code"})
		require.NoError(t, err)
		assert.Equal(t, "next@example.com", creds.Email)
	})

	t.Run("UpdatePassword", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/credentials/password", r.URL.Path)

			_ = json.NewEncoder(w).Encode(Credentials{
				ID: userID, Email: "user@example.com", Role: RoleUser, CreatedAt: now, UpdatedAt: now,
			})
		})

		_, err := client.UpdatePassword(ctx, "access", UpdatePasswordForm{
			Password:        "next-secret",
			CurrentPassword: "secret",
		})
		require.NoError(t, err)
	})

	t.Run("ResetPassword", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/credentials/password", r.URL.Path)

			var form ResetPasswordForm
			require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
			assert.Equal(t, userID, form.UserID)

			_ = json.NewEncoder(w).Encode(Credentials{
				ID: userID, Email: "user@example.com", Role: RoleUser, CreatedAt: now, UpdatedAt: now,
			})
		})

		_, err := client.ResetPassword(ctx, "access", ResetPasswordForm{
			Password:  "next-secret",
			ShortCode: "code",
			UserID:    userID,
		})
		require.NoError(t, err)
	})

	t.Run("UpdateRole", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/credentials/role", r.URL.Path)

			_ = json.NewEncoder(w).Encode(Credentials{
				ID: userID, Email: "user@example.com", Role: RoleAdmin, CreatedAt: now, UpdatedAt: now,
			})
		})

		creds, err := client.UpdateRole(ctx, "access", UpdateRoleForm{UserID: userID, Role: RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, creds.Role)
	})
}

func TestResponseSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("EmptyObject", func(t *testing.T) {
		t.Parallel()

		// A 200 with an empty body decodes fine but carries no token, the
		// client must refuse it instead of returning empty credentials.
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{}"))
		})

		_, err := client.Login(ctx, LoginForm{Email: "user@example.com", Password: "secret"})
		require.Error(t, err)

		var schemaErr *SchemaError
		assert.True(t, errors.As(err, &schemaErr))
		assert.True(t, IsSchemaError(err))

		var apiErr *APIError
		assert.False(t, errors.As(err, &apiErr))
	})

	t.Run("MissingField", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(Token{AccessToken: "access"})
		})

		_, err := client.Login(ctx, LoginForm{Email: "user@example.com", Password: "secret"})
		require.Error(t, err)
		assert.True(t, IsSchemaError(err))
	})

	t.Run("MalformedBody", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		})

		_, err := client.GetClaims(ctx, "access")
		require.Error(t, err)
		assert.True(t, IsSchemaError(err))
	})

	t.Run("IncompleteListElement", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode([]Credentials{{Email: "a@example.com"}})
		})

		_, err := client.ListCredentials(ctx, "access", ListForm{Limit: 10})
		require.Error(t, err)
		assert.True(t, IsSchemaError(err))
	})

	t.Run("ServiceErrorIsNotSchemaError", func(t *testing.T) {
		t.Parallel()

		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusUnauthorized, "invalid credentials", "session/invalid_credentials")
		})

		_, err := client.Login(ctx, LoginForm{Email: "user@example.com", Password: "wrong"})
		require.Error(t, err)
		assert.False(t, IsSchemaError(err))
		assert.True(t, IsUnauthorized(err))
	})
}
