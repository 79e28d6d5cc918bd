// Package services определяет интерфейсы сервисов прикладного уровня.
package services

import (
	"context"

	"storefront/internal/storefront/app/session"
	"storefront/internal/storefront/domain/entities"
)

// AuthService управляет входом, регистрацией и выходом.
type AuthService interface {
	Login(ctx context.Context, req entities.LoginRequest) (session.State, error)

	Register(ctx context.Context, req entities.RegisterRequest) (session.State, error)

	Logout(ctx context.Context) error

	State() session.State
}
