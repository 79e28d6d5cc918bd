package querycache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront/pkg/logger"
)

// Константы для логирования мутаций.
const (
	LogMutationStarted  = "query cache: mutation started"
	LogMutationFinished = "query cache: mutation finished"
)

// Mutation - декларация записи: имя, инвалидируемые теги и функция вызова.
type Mutation[A, T any] struct {
	Name        string
	Invalidates []Tag
	Run         func(ctx context.Context, args A) (T, error)
}

// MutationEntry - результат последнего вызова мутации. Хранится до следующего вызова.
type MutationEntry struct {
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Err       error     `json:"-"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Execute выполняет мутацию и после завершения инвалидирует ее теги,
// в том числе при ошибке. Ошибка мутации возвращается вызывающему без изменений.
func Execute[A, T any](ctx context.Context, e *Engine, m Mutation[A, T], args A) (T, error) {
	log := logger.Log(ctx).With(zap.String("mutation", m.Name))

	started := e.now()
	e.setMutation(&MutationEntry{Name: m.Name, Status: StatusPending, StartedAt: started})
	log.Debug(ctx, LogMutationStarted)

	result, err := m.Run(ctx, args)

	entry := &MutationEntry{Name: m.Name, Status: StatusSucceeded, StartedAt: started, UpdatedAt: e.now()}
	if err != nil {
		entry.Status = StatusFailed
		entry.Err = err
		entry.Error = err.Error()
	}
	e.setMutation(entry)
	e.metrics.RecordMutation(m.Name, err)

	refetched := 0
	if len(m.Invalidates) > 0 {
		refetched = e.Invalidate(ctx, m.Invalidates...)
	}

	log.Debug(ctx, LogMutationFinished,
		zap.String("status", string(entry.Status)),
		zap.Int("refetched", refetched),
		zap.Error(err))
	return result, err
}

// Mutation возвращает последнюю запись мутации name.
func (e *Engine) Mutation(name string) (MutationEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.mutations[name]
	if !ok {
		return MutationEntry{}, false
	}
	return *m, true
}

func (e *Engine) setMutation(m *MutationEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mutations[m.Name] = m
}
