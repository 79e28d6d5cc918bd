// Package ai содержит клиенты внешних сервисов генерации текста и изображений.
package ai

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/storefront/adapters/transport"
)

// Retryable сообщает, стоит ли повторять вызов после ошибки.
// Повторяются сетевые ошибки, 429 и ответы 5xx.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *transport.Error
	if !errors.As(err, &te) {
		return false
	}
	switch te.Kind {
	case transport.KindNetwork:
		return te.Status == 0 || te.Status >= http.StatusInternalServerError || te.Status == http.StatusTooManyRequests
	case transport.KindServer:
		return te.Status >= http.StatusInternalServerError || te.Status == http.StatusTooManyRequests
	default:
		return false
	}
}
