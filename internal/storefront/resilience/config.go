// Package resilience содержит механизмы обеспечения отказоустойчивости
// вызовов внешних сервисов генерации.
package resilience

import (
	"context"
	"errors"
	"time"

	"storefront/internal/storefront/config"
)

// Config содержит настройки повторов и Circuit Breaker.
type Config struct {
	// Attempts - максимальное количество попыток, включая первую.
	Attempts int
	// InitialBackoff - начальная задержка между попытками.
	InitialBackoff time.Duration
	// MaxBackoff - максимальная задержка между попытками.
	MaxBackoff time.Duration
	// ErrorThreshold - количество ошибок подряд до размыкания.
	ErrorThreshold uint32
	// Timeout - время в разомкнутом состоянии до пробного запроса.
	Timeout time.Duration
	// SuccessThreshold - количество пробных запросов в полуоткрытом состоянии.
	SuccessThreshold uint32
	// ShouldRetry решает, стоит ли повторять запрос после ошибки.
	ShouldRetry func(error) bool
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		Attempts:         3,
		InitialBackoff:   100 * time.Millisecond,
		MaxBackoff:       time.Second,
		ErrorThreshold:   5,
		Timeout:          10 * time.Second,
		SuccessThreshold: 2,
		ShouldRetry:      defaultShouldRetry,
	}
}

// FromAIConfig строит конфигурацию из настроек сервисов генерации.
func FromAIConfig(cfg config.AIConfig) Config {
	c := DefaultConfig()
	if cfg.RetryAttempts > 0 {
		c.Attempts = cfg.RetryAttempts
	}
	if cfg.RetryBackoff > 0 {
		c.InitialBackoff = cfg.RetryBackoff
	}
	if cfg.BreakerThreshold > 0 {
		c.ErrorThreshold = cfg.BreakerThreshold
	}
	if cfg.BreakerTimeout > 0 {
		c.Timeout = cfg.BreakerTimeout
	}
	return c
}

func defaultShouldRetry(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
