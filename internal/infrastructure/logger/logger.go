package logger

import (
	"context"
	"errors"

	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/a-novel/service-authentication/internal/infrastructure/contextx"
	"github.com/rs/zerolog"
)

func Error(ctx context.Context, loggingErr error) *zerolog.Event {
	return log(ctx, apperr.LogLevelOf(loggingErr), loggingErr)
}

func Warn(ctx context.Context, loggingErr error) *zerolog.Event {
	return log(ctx, apperr.LogLevelWarn, loggingErr)
}

func log(ctx context.Context, level apperr.LogLevel, loggingErr error) *zerolog.Event {
	ctx = context.WithoutCancel(ctx)
	event := zerolog.Ctx(ctx).WithLevel(toZerologLevel(level))

	currentUser, err := contextx.GetUserID(ctx)
	if err != nil {
		if !errors.Is(err, contextx.ErrNotFound) && !errors.Is(err, apperr.ErrUnauthorized()) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("logger.log: GetUserID")
		}
	} else {
		event = event.Str("current_user_id", currentUser.String())
	}

	refreshTokenID, err := contextx.GetRefreshTokenID(ctx)
	if err != nil {
		if !errors.Is(err, contextx.ErrNotFound) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("logger.log: GetRefreshTokenID")
		}
	} else {
		event = event.Str("refresh_token_id", refreshTokenID.String())
	}

	if loggingErr != nil {
		event = event.Err(loggingErr)
	}

	return event
}

func toZerologLevel(level apperr.LogLevel) zerolog.Level {
	switch level {
	case apperr.LogLevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
