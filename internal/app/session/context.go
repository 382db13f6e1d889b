package session

import (
	"context"
	"fmt"

	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/a-novel/service-authentication/internal/infrastructure/contextx"
)

// SetClaims stores the claims of the authenticated request, together with
// the identity fields the logger reads.
func SetClaims(ctx context.Context, claims Claims) context.Context {
	ctx = contextx.SetToContext(ctx, contextx.ContextKeyClaims, claims)
	if claims.UserID != nil {
		ctx = contextx.SetUserID(ctx, *claims.UserID)
	}
	return ctx
}

func ClaimsFromContext(ctx context.Context) (Claims, error) {
	claims, err := contextx.GetValue[Claims](ctx, contextx.ContextKeyClaims)
	if err != nil {
		return Claims{}, fmt.Errorf("session.ClaimsFromContext: %w",
			apperr.ErrUnauthorized().WithDetail("claims not found in context"))
	}

	return claims, nil
}
