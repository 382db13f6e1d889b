package contextx

import (
	"context"
	"errors"
	"fmt"

	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/google/uuid"
)

var ErrNotFound = fmt.Errorf("not found in context")

type contextKey string

func (key contextKey) String() string {
	return string(key)
}

const (
	ContextKeyUserID         = contextKey("user_id")
	ContextKeyRefreshTokenID = contextKey("refresh_token_id")
	ContextKeyClaims         = contextKey("claims")
)

func GetValue[T any](ctx context.Context, key contextKey) (T, error) {
	var zero T

	value := ctx.Value(key)
	if value == nil {
		return zero, fmt.Errorf("key %v: %w", key, ErrNotFound)
	}

	v, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("key %v: wrong format in context, got %T, want %T", key, value, zero)
	}

	return v, nil
}

// GetUserID returns the authenticated user behind the current request.
// Anonymous sessions carry no user ID, so callers of user-scoped operations
// get Unauthorized here.
func GetUserID(ctx context.Context) (uuid.UUID, error) {
	userID, err := GetValue[uuid.UUID](ctx, ContextKeyUserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = apperr.ErrUnauthorized().WithDetail("current user ID not found in context")
		}
		return uuid.Nil, fmt.Errorf("contextx.GetUserID: %w", err)
	}
	if userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("contextx.GetUserID: user ID is nil")
	}

	return userID, nil
}

func GetRefreshTokenID(ctx context.Context) (uuid.UUID, error) {
	id, err := GetValue[uuid.UUID](ctx, ContextKeyRefreshTokenID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("contextx.GetRefreshTokenID: %w", err)
	}

	return id, nil
}

func SetToContext[T any](ctx context.Context, key contextKey, value T) context.Context {
	return context.WithValue(ctx, key, value)
}

func SetUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return SetToContext(ctx, ContextKeyUserID, userID)
}

func SetRefreshTokenID(ctx context.Context, id uuid.UUID) context.Context {
	return SetToContext(ctx, ContextKeyRefreshTokenID, id)
}
