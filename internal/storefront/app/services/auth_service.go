// Package services содержит реализации прикладных сервисов клиента витрины.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/storefront/app/session"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/ports/api"
	"storefront/internal/storefront/ports/services"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogServiceRegister = "auth service: register user"
	LogServiceLogin    = "auth service: login user"
	LogServiceLogout   = "auth service: logout"

	ErrorRegisterFailed = "failed to register user"
	ErrorLoginFailed    = "failed to login"
	ErrorLogoutFailed   = "failed to logout"
)

// AuthServiceImpl реализует интерфейс AuthService.
type AuthServiceImpl struct {
	client  api.AuthClient
	session *session.Session
}

var _ services.AuthService = (*AuthServiceImpl)(nil)

// NewAuthService создает сервис авторизации.
func NewAuthService(client api.AuthClient, sess *session.Session) *AuthServiceImpl {
	return &AuthServiceImpl{client: client, session: sess}
}

// Login выполняет вход и сохраняет полученные токены.
func (s *AuthServiceImpl) Login(ctx context.Context, req entities.LoginRequest) (session.State, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceLogin, zap.String("email", req.Email))

	pair, err := s.client.Login(ctx, req)
	if err != nil {
		log.Warn(ctx, ErrorLoginFailed, zap.Error(err))
		return s.session.State(), err
	}
	if err := s.session.SignIn(ctx, pair); err != nil {
		return s.session.State(), fmt.Errorf("%s: %w", ErrorLoginFailed, err)
	}
	return s.session.State(), nil
}

// Register регистрирует пользователя и сразу выполняет вход.
func (s *AuthServiceImpl) Register(ctx context.Context, req entities.RegisterRequest) (session.State, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceRegister, zap.String("email", req.Email))

	pair, err := s.client.Register(ctx, req)
	if err != nil {
		log.Warn(ctx, ErrorRegisterFailed, zap.Error(err))
		return s.session.State(), err
	}
	if err := s.session.SignIn(ctx, pair); err != nil {
		return s.session.State(), fmt.Errorf("%s: %w", ErrorRegisterFailed, err)
	}
	return s.session.State(), nil
}

// Logout отзывает refresh токен на сервере и завершает сессию.
// Сессия завершается, даже если сервер вернул ошибку.
func (s *AuthServiceImpl) Logout(ctx context.Context) error {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceLogout)

	if refresh := s.session.Store().Read(ctx).RefreshToken; refresh != "" {
		if err := s.client.Logout(ctx, entities.RefreshRequest{RefreshToken: refresh}); err != nil {
			log.Warn(ctx, ErrorLogoutFailed, zap.Error(err))
		}
	}

	if err := s.session.Teardown(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrorLogoutFailed, err)
	}
	return nil
}

// State возвращает состояние сессии.
func (s *AuthServiceImpl) State() session.State {
	return s.session.State()
}
