package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/a-novel/service-authentication/internal/infrastructure/contextx"
	"github.com/a-novel/service-authentication/internal/infrastructure/httpx"
	"github.com/a-novel/service-authentication/internal/infrastructure/logger"
	"github.com/google/uuid"
)

type ClaimsParser interface {
	GetClaims(ctx context.Context, accessToken string) (session.Claims, error)
}

// AuthMiddleware parses and validates the bearer token, storing its
// claims in the request context.
func AuthMiddleware(parser ClaimsParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				err := apperr.ErrUnauthorized().WithDetail("missing or malformed Authorization header")
				logger.Warn(ctx, err).
					Msg("session.AuthMiddleware: invalid Authorization header")
				httpx.ReturnError(ctx, w, err)
				return
			}

			claims, err := parser.GetClaims(ctx, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				logger.Warn(ctx, err).
					Msg("session.AuthMiddleware: invalid token")
				httpx.ReturnError(ctx, w, apperr.ErrUnauthorized())
				return
			}

			ctx = session.SetClaims(ctx, claims)
			if refreshTokenID, parseErr := uuid.Parse(claims.RefreshTokenID); parseErr == nil {
				ctx = contextx.SetRefreshTokenID(ctx, refreshTokenID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose session role ranks below the
// minimum. It must run after AuthMiddleware.
func RequireRole(minRole session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims, err := session.ClaimsFromContext(ctx)
			if err != nil {
				httpx.ReturnError(ctx, w, err)
				return
			}

			if !claims.Role().AtLeast(minRole) {
				err = apperr.ErrForbidden().WithDetail("insufficient role")
				logger.Warn(ctx, err).
					Str("role", claims.Role().String()).
					Msg("session.RequireRole: insufficient role")
				httpx.ReturnError(ctx, w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
