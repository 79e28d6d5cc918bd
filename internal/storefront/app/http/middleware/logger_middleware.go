// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogRequestStarted   = "request started"
	LogRequestCompleted = "request completed"
	LogRequestFailed    = "request failed"
)

// NewLoggerMiddleware кладет в контекст запроса request_id и логгер с полями запроса.
// Идентификатор берется из заголовка X-Request-ID или генерируется и возвращается в ответе.
func NewLoggerMiddleware(base *logger.Logger) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		start := time.Now()

		requestCtx := logger.NewRequestIDContext(ctx.Context(), ctx.Get(logger.HeaderRequestID))
		id, _ := logger.GetRequestID(requestCtx)
		ctx.Set(logger.HeaderRequestID, id)

		log := base
		if log == nil {
			log = logger.Log(requestCtx)
		}
		log = log.With(
			zap.String("path", ctx.Path()),
			zap.String("method", ctx.Method()),
			zap.String("ip", ctx.IP()),
		)
		requestCtx = logger.NewContext(requestCtx, log)
		ctx.SetContext(requestCtx)

		log.Debug(requestCtx, LogRequestStarted)

		err := ctx.Next()

		fields := []zap.Field{
			zap.Int("status", ctx.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			log.Error(requestCtx, LogRequestFailed, append(fields, zap.Error(err))...)
			return err
		}

		log.Info(requestCtx, LogRequestCompleted, fields...)
		return nil
	}
}
