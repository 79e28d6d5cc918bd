// Package api содержит типизированные клиенты REST бэкенда витрины.
package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/domain/entities"
	ports "storefront/internal/storefront/ports/api"
	"storefront/pkg/logger"
)

// Пути эндпоинтов авторизации относительно базового адреса.
const (
	PathRegister = "auth/register/"
	PathLogin    = "auth/login/"
	PathLogout   = "auth/log-out/"
	PathRefresh  = "auth/refresh/"
)

// Константы для логирования.
const (
	LogAuthCall = "auth api: call"

	ErrorRegisterFailed = "failed to register"
	ErrorLoginFailed    = "failed to login"
	ErrorLogoutFailed   = "failed to logout"
	ErrorRefreshFailed  = "failed to refresh tokens"
)

// AuthAPI работает через транспорт без перехватчика: эндпоинты auth/ не требуют access токена.
type AuthAPI struct {
	doer transport.Doer
}

var _ ports.AuthClient = (*AuthAPI)(nil)

// NewAuthAPI создает клиент авторизации.
func NewAuthAPI(doer transport.Doer) *AuthAPI {
	return &AuthAPI{doer: doer}
}

// Register регистрирует пользователя.
func (a *AuthAPI) Register(ctx context.Context, req entities.RegisterRequest) (entities.CredentialPair, error) {
	pair, err := a.pair(ctx, PathRegister, req)
	if err != nil {
		return entities.CredentialPair{}, fmt.Errorf("%s: %w", ErrorRegisterFailed, err)
	}
	return pair, nil
}

// Login выполняет вход.
func (a *AuthAPI) Login(ctx context.Context, req entities.LoginRequest) (entities.CredentialPair, error) {
	pair, err := a.pair(ctx, PathLogin, req)
	if err != nil {
		return entities.CredentialPair{}, fmt.Errorf("%s: %w", ErrorLoginFailed, err)
	}
	return pair, nil
}

// Logout отзывает refresh токен.
func (a *AuthAPI) Logout(ctx context.Context, req entities.RefreshRequest) error {
	logger.Log(ctx).Debug(ctx, LogAuthCall, zap.String("path", PathLogout))

	_, err := a.doer.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   PathLogout,
		Body:   transport.JSONBody(req),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorLogoutFailed, err)
	}
	return nil
}

// Refresh обменивает refresh токен на новую пару.
func (a *AuthAPI) Refresh(ctx context.Context, req entities.RefreshRequest) (entities.CredentialPair, error) {
	pair, err := a.pair(ctx, PathRefresh, req)
	if err != nil {
		return entities.CredentialPair{}, fmt.Errorf("%s: %w", ErrorRefreshFailed, err)
	}
	return pair, nil
}

func (a *AuthAPI) pair(ctx context.Context, path string, body any) (entities.CredentialPair, error) {
	logger.Log(ctx).Debug(ctx, LogAuthCall, zap.String("path", path))

	return transport.Call[entities.CredentialPair](ctx, a.doer, &transport.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   transport.JSONBody(body),
	})
}
