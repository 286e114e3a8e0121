package middleware

import (
	"context"
	"errors"

	"github.com/josvita0323/devhost-2025-sub000/models"
)

// IdentityFromContext достает личность вызывающего, положенную Authenticate.
func IdentityFromContext(ctx context.Context) (models.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(models.Identity)
	if !ok {
		return models.Identity{}, errors.New("identity not found in context or invalid type")
	}
	if identity.UID == "" {
		return models.Identity{}, errors.New("identity in context has empty uid")
	}
	return identity, nil
}

// WithIdentity используется в тестах, чтобы сымитировать прошедшую
// аутентификацию без HTTP-прослойки.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
