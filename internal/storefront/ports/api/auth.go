// Package api определяет интерфейсы клиентов REST бэкенда.
package api

import (
	"context"

	"storefront/internal/storefront/domain/entities"
)

// AuthClient - эндпоинты auth/ бэкенда.
type AuthClient interface {
	Register(ctx context.Context, req entities.RegisterRequest) (entities.CredentialPair, error)

	Login(ctx context.Context, req entities.LoginRequest) (entities.CredentialPair, error)

	Logout(ctx context.Context, req entities.RefreshRequest) error

	Refresher
}

// Refresher обменивает refresh токен на новую пару.
type Refresher interface {
	Refresh(ctx context.Context, req entities.RefreshRequest) (entities.CredentialPair, error)
}
