// Package refresh содержит перехватчик, обновляющий access токен перед отправкой запроса.
package refresh

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/app/session"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/metrics"
	"storefront/internal/storefront/ports/api"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogRefreshStarted   = "refresh: access token missing, refreshing"
	LogRefreshSucceeded = "refresh: credentials refreshed"
	LogRefreshShared    = "refresh: joined in-flight refresh"

	ErrorRefreshFailed = "failed to refresh credentials"
)

// AuthorizationHeader - заголовок, в который кладется access токен.
const AuthorizationHeader = "Authorization"

// Interceptor оборачивает Doer. Если access токена нет, а refresh токен есть,
// до построения заголовков синхронно выполняется обновление.
type Interceptor struct {
	next      transport.Doer
	session   *session.Session
	refresher api.Refresher
	metrics   *metrics.Metrics

	coalesce bool
	group    singleflight.Group
}

var _ transport.Doer = (*Interceptor)(nil)

// Option настраивает Interceptor.
type Option func(*Interceptor)

// WithCoalescing включает объединение одновременных обновлений в один запрос.
func WithCoalescing(enabled bool) Option {
	return func(i *Interceptor) {
		i.coalesce = enabled
	}
}

// WithMetrics задает метрики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Interceptor) {
		i.metrics = m
	}
}

// New создает перехватчик. refresher должен работать через транспорт без перехватчика.
func New(next transport.Doer, sess *session.Session, refresher api.Refresher, opts ...Option) *Interceptor {
	i := &Interceptor{
		next:      next,
		session:   sess,
		refresher: refresher,
		coalesce:  true,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Do выполняет запрос с access токеном, если он есть после обновления.
// Запрос после принудительного выхода уходит без авторизации, его ошибка помечается
// transport.ErrSessionTerminated.
func (i *Interceptor) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	token, terminated := i.accessToken(ctx)

	out := req.Clone()
	if token != "" {
		out.Header.Set(AuthorizationHeader, "Bearer "+token)
	}

	resp, err := i.next.Do(ctx, out)
	if err != nil && terminated {
		return nil, transport.SessionError(err)
	}
	return resp, err
}

// accessToken возвращает токен для заголовка и признак того, что сессия была завершена.
func (i *Interceptor) accessToken(ctx context.Context) (string, bool) {
	tokens := i.session.Store().Read(ctx)
	if tokens.AccessToken != "" || tokens.RefreshToken == "" {
		return tokens.AccessToken, false
	}

	logger.Log(ctx).Debug(ctx, LogRefreshStarted)

	if !i.coalesce {
		token, err := i.refresh(ctx, tokens.RefreshToken)
		return token, err != nil
	}

	result, err, shared := i.group.Do(tokens.RefreshToken, func() (interface{}, error) {
		if current := i.session.Store().Read(ctx).AccessToken; current != "" {
			return current, nil
		}
		return i.refresh(context.WithoutCancel(ctx), tokens.RefreshToken)
	})
	if shared {
		i.metrics.RecordRefresh(metrics.OutcomeShared)
		logger.Log(ctx).Debug(ctx, LogRefreshShared)
	}
	if err != nil {
		return "", true
	}
	return result.(string), false
}

func (i *Interceptor) refresh(ctx context.Context, refreshToken string) (string, error) {
	pair, err := i.exchange(ctx, refreshToken)
	if err != nil {
		i.metrics.RecordRefresh(metrics.OutcomeFailure)
		logger.Log(ctx).Warn(ctx, ErrorRefreshFailed, zap.Error(err))
		i.session.ForceLogout(ctx)
		return "", err
	}

	i.metrics.RecordRefresh(metrics.OutcomeSuccess)
	logger.Log(ctx).Info(ctx, LogRefreshSucceeded)
	return pair.AccessToken, nil
}

func (i *Interceptor) exchange(ctx context.Context, refreshToken string) (entities.CredentialPair, error) {
	pair, err := i.refresher.Refresh(ctx, entities.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return entities.CredentialPair{}, fmt.Errorf("%s: %w", ErrorRefreshFailed, err)
	}
	if err := i.session.Refreshed(ctx, pair); err != nil {
		return entities.CredentialPair{}, fmt.Errorf("%s: %w", ErrorRefreshFailed, err)
	}
	return pair, nil
}
