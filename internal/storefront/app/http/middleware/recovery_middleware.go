package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogServerPanic        = "server panic"
	LogPanicResponseError = "failed to send error response after panic"

	ErrorInternal = "Internal Server Error"
)

// NewRecoveryMiddleware перехватывает панику обработчика и отвечает 500.
func NewRecoveryMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			requestCtx := ctx.Context()
			log := logger.Log(requestCtx)
			log.Error(requestCtx, LogServerPanic,
				zap.String("error", fmt.Sprintf("%v", r)),
				zap.String("stack", string(debug.Stack())),
			)

			err = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrorInternal})
			if err != nil {
				log.Error(requestCtx, LogPanicResponseError, zap.Error(err))
			}
		}()

		return ctx.Next()
	}
}
