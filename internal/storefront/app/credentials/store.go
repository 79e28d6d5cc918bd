// Package credentials управляет сохранением пары токенов и признака администратора.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"storefront/internal/storefront/domain/entities"
	ports "storefront/internal/storefront/ports/credentials"
	"storefront/pkg/logger"
)

// Имена записей в хранилище.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
	CookieIsAdmin      = "isAdmin"

	adminSentinel = "true"
)

// Константы для логирования.
const (
	LogTokensSaved   = "credentials saved"
	LogTokensCleared = "credentials cleared"

	ErrorReadCookie = "failed to read credential cookie"
)

// ErrMalformedToken возвращается, если из токена нельзя извлечь срок действия.
var ErrMalformedToken = errors.New("malformed token")

// Store - единственный владелец сохраненных учетных данных.
type Store struct {
	jar    ports.Jar
	now    func() time.Time
	parser *jwt.Parser
}

// NewStore создает хранилище поверх jar. now может быть nil.
func NewStore(jar ports.Jar, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		jar:    jar,
		now:    now,
		parser: jwt.NewParser(),
	}
}

// Expiry извлекает exp из полезной нагрузки токена без проверки подписи.
func (s *Store) Expiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := s.parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: no exp claim", ErrMalformedToken)
	}
	return claims.ExpiresAt.Time, nil
}

// Save сохраняет пару. Access токен живет до своего exp, refresh токен и
// признак администратора - до exp refresh токена. При некорректных токенах
// ничего не записывается.
func (s *Store) Save(ctx context.Context, pair entities.CredentialPair) error {
	accessExp, err := s.Expiry(pair.AccessToken)
	if err != nil {
		return fmt.Errorf("access token: %w", err)
	}
	refreshExp, err := s.Expiry(pair.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	if err := s.jar.Set(ctx, CookieAccessToken, pair.AccessToken, accessExp); err != nil {
		return err
	}
	if err := s.jar.Set(ctx, CookieIsAdmin, formatBool(pair.IsAdmin), refreshExp); err != nil {
		return err
	}
	if err := s.jar.Set(ctx, CookieRefreshToken, pair.RefreshToken, refreshExp); err != nil {
		return err
	}

	logger.Log(ctx).Debug(ctx, LogTokensSaved,
		zap.Time("access_expires", accessExp),
		zap.Time("refresh_expires", refreshExp),
		zap.Bool("is_admin", pair.IsAdmin))
	return nil
}

// Clear удаляет все три записи.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.jar.Delete(ctx, CookieAccessToken, CookieRefreshToken, CookieIsAdmin); err != nil {
		return err
	}
	logger.Log(ctx).Debug(ctx, LogTokensCleared)
	return nil
}

// IsLogged истинно, если есть refresh токен с неистекшим exp.
func (s *Store) IsLogged(ctx context.Context) bool {
	refresh := s.get(ctx, CookieRefreshToken)
	if refresh == "" {
		return false
	}
	exp, err := s.Expiry(refresh)
	if err != nil {
		return false
	}
	return exp.After(s.now())
}

// IsAdmin истинно, если признак администратора сохранен и равен "true".
func (s *Store) IsAdmin(ctx context.Context) bool {
	return s.get(ctx, CookieIsAdmin) == adminSentinel
}

// Read возвращает текущие токены, отсутствующие остаются пустыми.
func (s *Store) Read(ctx context.Context) entities.Tokens {
	return entities.Tokens{
		AccessToken:  s.get(ctx, CookieAccessToken),
		RefreshToken: s.get(ctx, CookieRefreshToken),
	}
}

func (s *Store) get(ctx context.Context, name string) string {
	value, ok, err := s.jar.Get(ctx, name)
	if err != nil {
		logger.Log(ctx).Warn(ctx, ErrorReadCookie, zap.String("cookie", name), zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return value
}

func formatBool(v bool) string {
	if v {
		return adminSentinel
	}
	return "false"
}
