package http

import (
	"context"
	"net/http"

	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/app/session/usecase"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/a-novel/service-authentication/internal/infrastructure/httpx"
	"github.com/a-novel/service-authentication/internal/infrastructure/logger"
)

// Handler decodes HTTP requests into session service calls.
type Handler struct {
	svc Service
}

type Service interface {
	Login(ctx context.Context, req usecase.LoginRequest) (session.Token, error)
	LoginAnon(ctx context.Context) (session.Token, error)
	Refresh(ctx context.Context, req usecase.RefreshRequest) (session.Token, error)
}

func NewHandler(svc Service) *Handler {
	if svc == nil {
		panic("session HTTP handler: nil service")
	}
	return &Handler{svc: svc}
}

// Login opens a session from an email and password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.LoginRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		logger.Warn(ctx, err).
			Msg("session.Handler.Login: request json decode failed")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest())
		return
	}

	token, err := h.svc.Login(ctx, in)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, token)
}

// LoginAnon opens an anonymous session.
func (h *Handler) LoginAnon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, err := h.svc.LoginAnon(ctx)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, token)
}

// Refresh issues a new token pair from an existing one.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.RefreshRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		logger.Warn(ctx, err).
			Msg("session.Handler.Refresh: request json decode failed")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest())
		return
	}

	token, err := h.svc.Refresh(ctx, in)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, token)
}

// GetClaims echoes the claims of the authenticated session. The claims
// were already parsed by AuthMiddleware.
func (h *Handler) GetClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := session.ClaimsFromContext(ctx)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, claims)
}
