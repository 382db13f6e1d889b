package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/a-novel/service-authentication/internal/app/credentials"
	"github.com/a-novel/service-authentication/internal/app/credentials/usecase"
	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/a-novel/service-authentication/internal/infrastructure/httpx"
	"github.com/a-novel/service-authentication/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	QueryParamID     = "id"
	QueryParamEmail  = "email"
	QueryParamLimit  = "limit"
	QueryParamOffset = "offset"
	QueryParamRoles  = "roles"
)

// Handler decodes HTTP requests into credentials service calls.
type Handler struct {
	svc Service
}

type Service interface {
	Register(ctx context.Context, req usecase.RegisterRequest) (session.Token, error)
	UpdateEmail(ctx context.Context, req usecase.UpdateEmailRequest) (credentials.Credentials, error)
	UpdatePassword(ctx context.Context, req usecase.UpdatePasswordRequest) (credentials.Credentials, error)
	ResetPassword(ctx context.Context, req usecase.ResetPasswordRequest) (credentials.Credentials, error)
	UpdateRole(ctx context.Context, req usecase.UpdateRoleRequest) (credentials.Credentials, error)
	Get(ctx context.Context, id uuid.UUID) (credentials.Credentials, error)
	Exists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter credentials.ListFilter) ([]credentials.Credentials, error)
}

func NewHandler(svc Service) *Handler {
	if svc == nil {
		panic("credentials HTTP handler: nil service")
	}
	return &Handler{svc: svc}
}

// Register creates an account from a mailed registration code and
// returns a session for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.RegisterRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		logger.Warn(ctx, err).
			Msg("credentials.Handler.Register: request json decode failed")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest())
		return
	}

	token, err := h.svc.Register(ctx, in)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, token)
}

// Get returns a single account by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.URL.Query().Get(QueryParamID))
	if err != nil {
		logger.Warn(ctx, err).
			Msg("credentials.Handler.Get: invalid id query param")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest().
			WithViolation(apperr.Violation{Field: apperr.Field(QueryParamID), Rule: apperr.RuleInvalidFormat}))
		return
	}

	creds, err := h.svc.Get(ctx, id)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, creds)
}

// Exists answers with a bare status: 204 when an account uses the email,
// 404 otherwise. HEAD responses carry no body.
func (h *Handler) Exists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	exists, err := h.svc.Exists(ctx, r.URL.Query().Get(QueryParamEmail))
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List pages through accounts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()

	filter := credentials.ListFilter{
		Roles: lo.Map(query[QueryParamRoles], func(role string, _ int) session.Role {
			return session.Role(role)
		}),
	}

	if raw := query.Get(QueryParamLimit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.ReturnError(ctx, w, apperr.ErrBadRequest().
				WithViolation(apperr.Violation{Field: apperr.Field(QueryParamLimit), Rule: apperr.RuleInvalidFormat}))
			return
		}
		filter.Limit = limit
	}

	if raw := query.Get(QueryParamOffset); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			httpx.ReturnError(ctx, w, apperr.ErrBadRequest().
				WithViolation(apperr.Violation{Field: apperr.Field(QueryParamOffset), Rule: apperr.RuleInvalidFormat}))
			return
		}
		filter.Offset = offset
	}

	list, err := h.svc.List(ctx, filter)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, list)
}

// UpdateEmail redeems an email update code.
func (h *Handler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.UpdateEmailRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		logger.Warn(ctx, err).
			Msg("credentials.Handler.UpdateEmail: request json decode failed")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest())
		return
	}

	creds, err := h.svc.UpdateEmail(ctx, in)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, creds)
}

// UpdatePassword changes the caller's password.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.UpdatePasswordRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		logger.Warn(ctx, err).
			Msg("credentials.Handler.UpdatePassword: request json decode failed")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest())
		return
	}

	creds, err := h.svc.UpdatePassword(ctx, in)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, creds)
}

// ResetPassword redeems a password reset code.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.ResetPasswordRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		logger.Warn(ctx, err).
			Msg("credentials.Handler.ResetPassword: request json decode failed")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest())
		return
	}

	creds, err := h.svc.ResetPassword(ctx, in)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, creds)
}

// UpdateRole changes another account's role.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.UpdateRoleRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		logger.Warn(ctx, err).
			Msg("credentials.Handler.UpdateRole: request json decode failed")
		httpx.ReturnError(ctx, w, apperr.ErrBadRequest())
		return
	}

	creds, err := h.svc.UpdateRole(ctx, in)
	if err != nil {
		httpx.ReturnError(ctx, w, err)
		return
	}

	httpx.WriteJSON(ctx, w, http.StatusOK, creds)
}
