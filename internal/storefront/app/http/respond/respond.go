// Package respond отображает ошибки прикладного уровня в HTTP ответы.
package respond

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/app/generator"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogRequestError = "request error"

	ErrorInvalidRequest = "invalid request"
	ErrorRouteNotFound  = "Route not found"
)

// Renderer отображает ошибки, зная маршрут, на который отправляется пользователь после выхода.
type Renderer struct {
	landingRoute string
}

// NewRenderer создает Renderer.
func NewRenderer(landingRoute string) *Renderer {
	if landingRoute == "" {
		landingRoute = "/"
	}
	return &Renderer{landingRoute: landingRoute}
}

// JSON отправляет тело с кодом status.
func JSON(ctx fiber.Ctx, status int, body any) error {
	return ctx.Status(status).JSON(body)
}

// BadRequest отвечает 400 с сообщением message.
func BadRequest(ctx fiber.Ctx, message string) error {
	return JSON(ctx, http.StatusBadRequest, fiber.Map{"error": message})
}

// Error отображает err. Завершенная сессия дает 401 с адресом перехода,
// ошибка валидации генерации - 422 с ошибками полей, ошибка бэкенда - его код,
// сетевая ошибка - 502.
func (r *Renderer) Error(ctx fiber.Ctx, err error, fields map[string]string) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Warn(requestCtx, LogRequestError, zap.Error(err))

	message := transport.Message(err)

	switch {
	case errors.Is(err, transport.ErrSessionTerminated):
		return JSON(ctx, http.StatusUnauthorized, fiber.Map{"error": message, "redirect": r.landingRoute})
	case errors.Is(err, generator.ErrValidation):
		return JSON(ctx, http.StatusUnprocessableEntity, fiber.Map{"error": ErrorInvalidRequest, "fields": fields})
	}

	var te *transport.Error
	if errors.As(err, &te) && te.Kind == transport.KindServer && te.Status >= http.StatusBadRequest {
		return JSON(ctx, te.Status, fiber.Map{"error": message})
	}
	return JSON(ctx, http.StatusBadGateway, fiber.Map{"error": message})
}
