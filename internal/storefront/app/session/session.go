// Package session содержит явный объект сессии, заменяющий глобальное состояние авторизации.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/storefront/app/credentials"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/ports/navigation"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogSessionInit     = "session: init"
	LogSessionSignIn   = "session: signed in"
	LogSessionTeardown = "session: teardown"
	LogForcedLogout    = "session: forced logout"

	ErrorSignInFailed   = "failed to persist credentials"
	ErrorTeardownFailed = "failed to clear credentials"
)

// State - производное состояние сессии.
type State struct {
	IsLogged bool `json:"is_logged"`
	IsAdmin  bool `json:"is_admin"`
}

// Hook вызывается при завершении сессии.
type Hook func(ctx context.Context)

// Session владеет состоянием авторизации на время жизни процесса.
type Session struct {
	store     *credentials.Store
	navigator navigation.Navigator
	landing   string

	mu    sync.RWMutex
	state State
	hooks []Hook
}

// New создает сессию. Перед использованием нужно вызвать Init.
func New(store *credentials.Store, navigator navigation.Navigator, landingRoute string) *Session {
	if landingRoute == "" {
		landingRoute = "/"
	}
	return &Session{
		store:     store,
		navigator: navigator,
		landing:   landingRoute,
	}
}

// Init пересчитывает состояние из сохраненных учетных данных.
func (s *Session) Init(ctx context.Context) State {
	state := State{
		IsLogged: s.store.IsLogged(ctx),
		IsAdmin:  s.store.IsAdmin(ctx),
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	logger.Log(ctx).Info(ctx, LogSessionInit,
		zap.Bool("is_logged", state.IsLogged),
		zap.Bool("is_admin", state.IsAdmin))
	return state
}

// State возвращает текущее состояние.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Store возвращает хранилище учетных данных сессии.
func (s *Session) Store() *credentials.Store {
	return s.store
}

// OnTeardown регистрирует hook завершения сессии.
func (s *Session) OnTeardown(hook Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// SignIn сохраняет пару токенов и отмечает сессию как активную.
func (s *Session) SignIn(ctx context.Context, pair entities.CredentialPair) error {
	if err := s.store.Save(ctx, pair); err != nil {
		logger.Log(ctx).Error(ctx, ErrorSignInFailed, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorSignInFailed, err)
	}

	s.mu.Lock()
	s.state = State{IsLogged: true, IsAdmin: pair.IsAdmin}
	s.mu.Unlock()

	logger.Log(ctx).Info(ctx, LogSessionSignIn, zap.Bool("is_admin", pair.IsAdmin))
	return nil
}

// Refreshed сохраняет обновленную пару без изменения признака входа.
func (s *Session) Refreshed(ctx context.Context, pair entities.CredentialPair) error {
	if err := s.store.Save(ctx, pair); err != nil {
		return err
	}

	s.mu.Lock()
	s.state.IsAdmin = pair.IsAdmin
	s.mu.Unlock()
	return nil
}

// Teardown очищает учетные данные, сбрасывает состояние и вызывает hooks.
// Hooks вызываются даже при ошибке очистки хранилища.
func (s *Session) Teardown(ctx context.Context) error {
	err := s.store.Clear(ctx)
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrorTeardownFailed, zap.Error(err))
		err = fmt.Errorf("%s: %w", ErrorTeardownFailed, err)
	}

	s.mu.Lock()
	s.state = State{}
	hooks := make([]Hook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(ctx)
	}

	logger.Log(ctx).Info(ctx, LogSessionTeardown)
	return err
}

// ForceLogout завершает сессию и переводит приложение на стартовый маршрут.
func (s *Session) ForceLogout(ctx context.Context) {
	logger.Log(ctx).Warn(ctx, LogForcedLogout, zap.String("route", s.landing))

	_ = s.Teardown(ctx)
	if s.navigator != nil {
		s.navigator.Navigate(ctx, s.landing)
	}
}
