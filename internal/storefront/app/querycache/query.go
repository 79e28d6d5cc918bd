package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Query - декларация чтения: имя эндпоинта, предоставляемые теги и функция запроса.
type Query[A, T any] struct {
	Name     string
	Provides []Tag
	Fetch    func(ctx context.Context, args A) (T, error)
}

// Key вычисляет ключ записи по имени эндпоинта и аргументам.
func Key(name string, args any) string {
	data, err := json.Marshal(args)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", args))
	}

	h := xxhash.New()
	_, _ = h.WriteString(name)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(data)
	return fmt.Sprintf("%s/%016x", name, h.Sum64())
}

// Snapshot - состояние записи на момент чтения.
type Snapshot[T any] struct {
	Key       string
	Status    Status
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time
}

// Subscription - подписка на запись запроса.
type Subscription[T any] struct {
	engine *Engine
	entry  *entry
	id     uint64
	sub    *subscriber
	once   sync.Once
}

// Subscribe подписывается на запись (q.Name, args). Запись создается при первой подписке;
// одновременные подписки на один ключ разделяют один сетевой запрос.
func Subscribe[A, T any](e *Engine, q Query[A, T], args A) *Subscription[T] {
	key := Key(q.Name, args)
	fetch := func(ctx context.Context) (any, error) {
		return q.Fetch(ctx, args)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	en, existed := e.acquire(key, q.Name, q.Provides, args, fetch)
	id, sub := e.subscribe(en, existed)

	return &Subscription[T]{engine: e, entry: en, id: id, sub: sub}
}

// Key возвращает ключ записи.
func (s *Subscription[T]) Key() string {
	return s.entry.key
}

// Snapshot возвращает текущее состояние записи.
func (s *Subscription[T]) Snapshot() Snapshot[T] {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()

	snap := Snapshot[T]{
		Key:       s.entry.key,
		Status:    s.entry.status,
		HasData:   s.entry.hasData,
		Err:       s.entry.err,
		UpdatedAt: s.entry.updatedAt,
	}
	if v, ok := s.entry.data.(T); ok {
		snap.Data = v
	}
	return snap
}

// Updates сигнализирует об изменении записи. Несколько изменений подряд
// могут прийти одним сигналом.
func (s *Subscription[T]) Updates() <-chan struct{} {
	return s.sub.ch
}

// Refetch явно перезапрашивает запись. Если запрос уже в полете, ничего не делает.
func (s *Subscription[T]) Refetch() {
	s.engine.refetch(s.entry)
}

// Unsubscribe отменяет подписку. Повторный вызов ничего не делает.
// Уже отправленный запрос не отменяется, его результат остается в кэше.
func (s *Subscription[T]) Unsubscribe() {
	s.once.Do(func() {
		s.engine.unsubscribe(s.entry, s.id)
	})
}

// Await ждет завершения текущего запроса записи.
// Возвращает ошибку записи или ошибку контекста.
func Await[T any](ctx context.Context, s *Subscription[T]) (Snapshot[T], error) {
	for {
		snap := s.Snapshot()
		if snap.Status.Settled() {
			return snap, snap.Err
		}

		select {
		case <-s.sub.ch:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Fetch подписывается, ждет результат и отписывается.
func Fetch[A, T any](ctx context.Context, e *Engine, q Query[A, T], args A) (T, error) {
	sub := Subscribe(e, q, args)
	defer sub.Unsubscribe()

	snap, err := Await(ctx, sub)
	return snap.Data, err
}
