package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogExecute            = "executing operation with resilience"
	LogCircuitStateChange = "circuit breaker state changed"
	LogCircuitReject      = "circuit breaker rejected request"
	LogRetryAttempt       = "retry attempt"
	LogRetrySuccess       = "retry succeeded"
	LogRetryGaveUp        = "retry max attempts reached"
)

// Ошибки пакета resilience.
var (
	// ErrCircuitOpen возвращается, когда Circuit Breaker не пропускает запрос.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// Executor выполняет операции с повторами под защитой Circuit Breaker.
type Executor[T any] struct {
	name    string
	config  Config
	breaker *gobreaker.CircuitBreaker[T]
}

// NewExecutor создает исполнитель для сервиса name.
func NewExecutor[T any](name string, cfg Config) *Executor[T] {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = defaultShouldRetry
	}

	threshold := cfg.ErrorThreshold
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.SuccessThreshold,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log(context.Background()).Warn(context.Background(), LogCircuitStateChange,
				zap.String("circuit_breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Executor[T]{
		name:    name,
		config:  cfg,
		breaker: gobreaker.NewCircuitBreaker[T](settings),
	}
}

// State возвращает текущее состояние Circuit Breaker.
func (e *Executor[T]) State() gobreaker.State {
	return e.breaker.State()
}

// Execute выполняет операцию. Повторы происходят внутри одного вызова
// Circuit Breaker, поэтому серия неудачных попыток считается одной ошибкой.
func (e *Executor[T]) Execute(ctx context.Context, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	log := logger.Log(ctx).With(
		zap.String("service", e.name),
		zap.String("operation", operation),
	)
	log.Debug(ctx, LogExecute)

	result, err := e.breaker.Execute(func() (T, error) {
		return e.retry(ctx, log, fn)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		log.Warn(ctx, LogCircuitReject, zap.Error(err))
		return result, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return result, err
}

func (e *Executor[T]) retry(ctx context.Context, log *logger.Logger, fn func(ctx context.Context) (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.config.InitialBackoff
	if e.config.MaxBackoff > 0 {
		policy.MaxInterval = e.config.MaxBackoff
	}
	policy.MaxElapsedTime = 0

	attempts := 0
	operation := func() (T, error) {
		attempts++
		result, err := fn(ctx)
		if err != nil && !e.config.ShouldRetry(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}
	notify := func(err error, wait time.Duration) {
		log.Info(ctx, LogRetryAttempt,
			zap.Int("attempt", attempts),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(e.config.Attempts-1)), ctx)
	result, err := backoff.RetryNotifyWithData(operation, b, notify)
	switch {
	case err != nil && attempts >= e.config.Attempts:
		log.Warn(ctx, LogRetryGaveUp, zap.Int("attempts", attempts), zap.Error(err))
	case err == nil && attempts > 1:
		log.Info(ctx, LogRetrySuccess, zap.Int("attempts", attempts))
	}
	return result, err
}
