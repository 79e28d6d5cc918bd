package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/storefront/config"
	"storefront/internal/storefront/resilience"
)

var errBoom = errors.New("boom")

func fastConfig() resilience.Config {
	cfg := resilience.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	return cfg
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	exec := resilience.NewExecutor[string]("chat", fastConfig())

	calls := 0
	got, err := exec.Execute(context.Background(), "complete", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errBoom
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestExecuteStopsAfterAttempts(t *testing.T) {
	cfg := fastConfig()
	cfg.Attempts = 2
	exec := resilience.NewExecutor[int]("chat", cfg)

	calls := 0
	_, err := exec.Execute(context.Background(), "complete", func(context.Context) (int, error) {
		calls++
		return 0, errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls)
}

func TestExecuteDoesNotRetryPermanentErrors(t *testing.T) {
	cfg := fastConfig()
	cfg.ShouldRetry = func(err error) bool { return !errors.Is(err, errBoom) }
	exec := resilience.NewExecutor[int]("image", cfg)

	calls := 0
	_, err := exec.Execute(context.Background(), "generate", func(context.Context) (int, error) {
		calls++
		return 0, errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cfg := fastConfig()
	cfg.Attempts = 1
	cfg.ErrorThreshold = 2
	cfg.Timeout = time.Hour
	exec := resilience.NewExecutor[int]("image", cfg)

	fail := func(context.Context) (int, error) { return 0, errBoom }
	for range 2 {
		_, err := exec.Execute(context.Background(), "generate", fail)
		require.ErrorIs(t, err, errBoom)
	}
	assert.Equal(t, gobreaker.StateOpen, exec.State())

	called := false
	_, err := exec.Execute(context.Background(), "generate", func(context.Context) (int, error) {
		called = true
		return 1, nil
	})
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.False(t, called)
}

func TestExecuteHonorsCancellation(t *testing.T) {
	cfg := fastConfig()
	cfg.Attempts = 10
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour
	exec := resilience.NewExecutor[int]("chat", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := exec.Execute(ctx, "complete", func(context.Context) (int, error) {
			calls++
			return 0, errBoom
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("execute did not return after cancellation")
	}
	assert.Equal(t, 1, calls)
}

func TestFromAIConfig(t *testing.T) {
	cfg := resilience.FromAIConfig(config.AIConfig{
		RetryAttempts:    4,
		RetryBackoff:     50 * time.Millisecond,
		BreakerThreshold: 7,
		BreakerTimeout:   time.Minute,
	})
	assert.Equal(t, 4, cfg.Attempts)
	assert.Equal(t, 50*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, uint32(7), cfg.ErrorThreshold)
	assert.Equal(t, time.Minute, cfg.Timeout)

	defaults := resilience.FromAIConfig(config.AIConfig{})
	assert.Equal(t, resilience.DefaultConfig().Attempts, defaults.Attempts)
}
