package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type claimsParserFake struct {
	claims session.Claims
	err    error

	gotToken string
}

func (f *claimsParserFake) GetClaims(_ context.Context, accessToken string) (session.Claims, error) {
	f.gotToken = accessToken

	return f.claims, f.err
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		parser     *claimsParserFake
		wantStatus int
		wantClaims bool
	}{
		{
			name:       "MissingAuthorization",
			header:     "",
			parser:     &claimsParserFake{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "NoBearerPrefix",
			header:     "Token abc",
			parser:     &claimsParserFake{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "InvalidToken",
			header:     "Bearer bad-token",
			parser:     &claimsParserFake{err: assert.AnError},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Valid",
			header: "Bearer good-token",
			parser: &claimsParserFake{claims: session.Claims{
				UserID: &userID,
				Roles:  []session.Role{session.RoleUser},
			}},
			wantStatus: http.StatusOK,
			wantClaims: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var gotClaims *session.Claims

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, err := session.ClaimsFromContext(r.Context())
				if err == nil {
					gotClaims = &claims
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if test.header != "" {
				req.Header.Set("Authorization", test.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(test.parser)(next).ServeHTTP(rec, req)

			assert.Equal(t, test.wantStatus, rec.Code)
			if test.wantClaims {
				require.NotNil(t, gotClaims)
				require.NotNil(t, gotClaims.UserID)
				assert.Equal(t, userID, *gotClaims.UserID)
				assert.Equal(t, "good-token", test.parser.gotToken)
			} else {
				assert.Nil(t, gotClaims)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		claims     *session.Claims
		minRole    session.Role
		wantStatus int
	}{
		{
			name:       "NoClaims",
			minRole:    session.RoleUser,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "BelowMinimum",
			claims:     &session.Claims{Roles: []session.Role{session.RoleAnon}},
			minRole:    session.RoleUser,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "ExactMinimum",
			claims:     &session.Claims{Roles: []session.Role{session.RoleUser}},
			minRole:    session.RoleUser,
			wantStatus: http.StatusOK,
		},
		{
			name:       "AboveMinimum",
			claims:     &session.Claims{Roles: []session.Role{session.RoleSuperAdmin}},
			minRole:    session.RoleAdmin,
			wantStatus: http.StatusOK,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if test.claims != nil {
				req = req.WithContext(session.SetClaims(req.Context(), *test.claims))
			}
			rec := httptest.NewRecorder()

			RequireRole(test.minRole)(next).ServeHTTP(rec, req)

			assert.Equal(t, test.wantStatus, rec.Code)
		})
	}
}
