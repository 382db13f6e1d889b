package http

import (
	"context"
	"net/http"

	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/app/shortcode/usecase"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/a-novel/service-authentication/internal/infrastructure/httpx"
	"github.com/a-novel/service-authentication/internal/infrastructure/logger"
	"github.com/google/uuid"
)

// Handler decodes HTTP requests into short code service calls. All
// endpoints answer 204, the issued code only travels by mail.
type Handler struct {
	svc Service
}

type Service interface {
	RequestRegister(ctx context.Context, req usecase.RegisterRequest) error
	RequestEmailUpdate(ctx context.Context, userID uuid.UUID, req usecase.EmailUpdateRequest) error
	RequestPasswordReset(ctx context.Context, req usecase.PasswordResetRequest) error
}

func NewHandler(svc Service) *Handler {
	if svc == nil {
		panic("shortcode HTTP handler: nil service")
	}
	return &Handler{svc: svc}
}

func (h *Handler) RequestRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.RegisterRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		logger.Warn(ctx, err).
			Msg("shortcode.Handler.RequestRegister: request json decode failed")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest())
		return
	}

	if err := h.svc.RequestRegister(ctx, in); err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RequestEmailUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := session.ClaimsFromContext(ctx)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}
	if claims.UserID == nil {
		httpx.ReturnError(ctx, w, apperr.ErrUnauthorized())
		return
	}

	var in usecase.EmailUpdateRequest
	if err = httpx.DecodeJSON(r, &in); err != nil {
		logger.Warn(ctx, err).
			Msg("shortcode.Handler.RequestEmailUpdate: request json decode failed")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest())
		return
	}

	if err = h.svc.RequestEmailUpdate(ctx, *claims.UserID, in); err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.PasswordResetRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		logger.Warn(ctx, err).
			Msg("shortcode.Handler.RequestPasswordReset: request json decode failed")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest())
		return
	}

	if err := h.svc.RequestPasswordReset(ctx, in); err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
