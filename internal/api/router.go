// Package api assembles the HTTP surface of the service. Keeping the
// route table in one place lets the end to end tests serve the exact
// router the binary runs.
package api

import (
	"context"
	"net/http"

	credentialshttp "github.com/a-novel/service-authentication/internal/app/credentials/transport/http"
	"github.com/a-novel/service-authentication/internal/app/session"
	sessionhttp "github.com/a-novel/service-authentication/internal/app/session/transport/http"
	shortcodehttp "github.com/a-novel/service-authentication/internal/app/shortcode/transport/http"
	"github.com/a-novel/service-authentication/internal/infrastructure/httpx"
	"github.com/a-novel/service-authentication/internal/infrastructure/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

type Dependencies struct {
	SessionHandler     *sessionhttp.Handler
	ShortCodeHandler   *shortcodehttp.Handler
	CredentialsHandler *credentialshttp.Handler
	ClaimsParser       sessionhttp.ClaimsParser
	MaxBodySize        int64
	Pingers            map[string]Pinger
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.SessionHandler == nil || deps.ShortCodeHandler == nil ||
		deps.CredentialsHandler == nil || deps.ClaimsParser == nil {
		panic("api.NewRouter: nil dependency")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware)
	r.Use(httpx.MaxBodyBytes(deps.MaxBodySize))

	// without auth
	r.Group(func(r chi.Router) {
		r.Get("/health", healthHandler(deps.Pingers)) // GET /health

		r.Put("/session", deps.SessionHandler.Login)          // PUT   /session
		r.Put("/session/anon", deps.SessionHandler.LoginAnon) // PUT   /session/anon
		r.Patch("/session", deps.SessionHandler.Refresh)      // PATCH /session
	})

	// with auth
	r.Group(func(r chi.Router) {
		r.Use(sessionhttp.AuthMiddleware(deps.ClaimsParser))

		r.Get("/session", deps.SessionHandler.GetClaims) // GET /session

		// --- short code routes
		r.Route("/short-code", func(r chi.Router) {
			r.Put("/register", deps.ShortCodeHandler.RequestRegister) // PUT /short-code/register
			r.With(sessionhttp.RequireRole(session.RoleUser)).
				Put("/update-email", deps.ShortCodeHandler.RequestEmailUpdate) // PUT /short-code/update-email
			r.Put("/update-password", deps.ShortCodeHandler.RequestPasswordReset) // PUT /short-code/update-password
		})

		// --- credentials routes
		r.Route("/credentials", func(r chi.Router) {
			r.Put("/", deps.CredentialsHandler.Register) // PUT  /credentials
			r.Get("/", deps.CredentialsHandler.Get)      // GET  /credentials?id={id}
			r.Head("/", deps.CredentialsHandler.Exists)  // HEAD /credentials?email={email}
			r.With(sessionhttp.RequireRole(session.RoleAdmin)).
				Get("/all", deps.CredentialsHandler.List) // GET /credentials/all?limit=&offset=&roles=

			r.With(sessionhttp.RequireRole(session.RoleUser)).
				Patch("/email", deps.CredentialsHandler.UpdateEmail) // PATCH /credentials/email
			r.With(sessionhttp.RequireRole(session.RoleUser)).
				Patch("/password", deps.CredentialsHandler.UpdatePassword) // PATCH /credentials/password
			r.Put("/password", deps.CredentialsHandler.ResetPassword) // PUT   /credentials/password
			r.With(sessionhttp.RequireRole(session.RoleAdmin)).
				Patch("/role", deps.CredentialsHandler.UpdateRole) // PATCH /credentials/role
		})
	})

	return r
}

// healthHandler pings every backing dependency and reports their state.
// Any dependency down turns the whole response into a 503, so load
// balancers can pull the instance out of rotation.
func healthHandler(pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		report := make(map[string]string, len(pingers))

		for name, ping := range pingers {
			if err := ping(r.Context()); err != nil {
				logger.Warn(r.Context(), err).Str("dependency", name).Msg("health check failed")

				report[name] = "down"
				status = http.StatusServiceUnavailable

				continue
			}

			report[name] = "up"
		}

		httpx.WriteJSON(r.Context(), w, status, report)
	}
}
