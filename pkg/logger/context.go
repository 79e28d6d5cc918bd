package logger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Ошибки пакета logger.
var (
	ErrLoggerNotFound   = errors.New("logger not found in context")
	ErrInitGlobalLogger = errors.New("failed to initialize global logger")
)

type ctxKey struct{}

var global atomic.Pointer[Logger]

// fallback пишет только предупреждения и ошибки, пока глобальный логгер не задан.
var fallback = sync.OnceValue(func() *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	zl, err := cfg.Build()
	if err != nil {
		return NewNop()
	}
	return &Logger{l: zl.With(zap.String("logger", "fallback"))}
})

// NewContext кладет logger в контекст.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext извлекает logger из контекста.
func FromContext(ctx context.Context) (*Logger, error) {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
			return l, nil
		}
	}
	return nil, ErrLoggerNotFound
}

// InitGlobalLogger задает глобальный logger, только если он еще не задан.
func InitGlobalLogger(env Environment, level string) error {
	if global.Load() != nil {
		return nil
	}
	l, err := NewLogger(env, level)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitGlobalLogger, err)
	}
	global.CompareAndSwap(nil, l)
	return nil
}

// SetGlobalLogger заменяет глобальный logger. nil сбрасывает его.
func SetGlobalLogger(l *Logger) {
	global.Store(l)
}

// Log возвращает logger из контекста, глобальный или резервный.
func Log(ctx context.Context) *Logger {
	if l, err := FromContext(ctx); err == nil {
		return l
	}
	if l := global.Load(); l != nil {
		return l
	}
	return fallback()
}
