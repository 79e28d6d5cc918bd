// Package testutil содержит помощники для тестов клиентского слоя.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"storefront/internal/storefront/domain/entities"
)

// Token выпускает подписанный HS256 токен с заданным exp.
func Token(t testing.TB, subject string, exp time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// Pair выпускает пару токенов с заданными сроками.
func Pair(t testing.TB, accessExp, refreshExp time.Time, admin bool) entities.CredentialPair {
	t.Helper()

	return entities.CredentialPair{
		AccessToken:  Token(t, "access", accessExp),
		RefreshToken: Token(t, "refresh", refreshExp),
		IsAdmin:      admin,
	}
}

// Clock - управляемые часы.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock создает часы, стоящие на now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now возвращает текущее время часов.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance сдвигает часы вперед.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
