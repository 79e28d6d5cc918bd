package querycache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/metrics"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogFetchStarted   = "query cache: fetch started"
	LogFetchFinished  = "query cache: fetch finished"
	LogInvalidate     = "query cache: invalidate"
	LogEntryDropped   = "query cache: unsubscribed entry dropped"
	LogEntryEvicted   = "query cache: entry evicted"
	LogReset          = "query cache: reset"
	LogStaleDiscarded = "query cache: stale response discarded"
)

// ErrClosed возвращается после Close.
var ErrClosed = errors.New("query cache is closed")

// Options - настройки движка.
type Options struct {
	// Retention - время жизни записи без подписчиков. Ноль и меньше - запись удаляется сразу.
	Retention time.Duration
	// MaxRetained ограничивает число записей без подписчиков. Ноль - без ограничения.
	MaxRetained int
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type subscriber struct {
	ch chan struct{}
}

func (s *subscriber) notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

type entry struct {
	key  string
	name string
	tags []Tag
	args any

	fetch func(ctx context.Context) (any, error)

	status    Status
	data      any
	hasData   bool
	err       error
	updatedAt time.Time
	fetches   int

	inflight       bool
	refetchPending bool
	dropped        bool

	subscribers map[uint64]*subscriber

	parked atomic.Bool
}

func (en *entry) notifyAll() {
	for _, s := range en.subscribers {
		s.notify()
	}
}

// Engine - реестр записей запросов и мутаций.
type Engine struct {
	base   context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	entries   map[string]*entry
	tagIndex  map[Tag]map[string]struct{}
	mutations map[string]*MutationEntry
	nextSubID uint64
	closed    bool

	retained  *expirable.LRU[string, *entry]
	retention time.Duration

	flights singleflight.Group
	wg      sync.WaitGroup

	metrics *metrics.Metrics
	now     func() time.Time
}

// New создает движок. Логгер из ctx используется фоновыми запросами.
func New(ctx context.Context, opts Options) *Engine {
	base, cancel := context.WithCancel(context.WithoutCancel(ctx))

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	e := &Engine{
		base:      base,
		cancel:    cancel,
		entries:   make(map[string]*entry),
		tagIndex:  make(map[Tag]map[string]struct{}),
		mutations: make(map[string]*MutationEntry),
		retention: opts.Retention,
		metrics:   opts.Metrics,
		now:       now,
	}

	if opts.Retention > 0 {
		size := opts.MaxRetained
		if size < 0 {
			size = 0
		}
		e.retained = expirable.NewLRU[string, *entry](size, e.onEvict, opts.Retention)
	}
	return e
}

// onEvict вызывается LRU при истечении, вытеснении и удалении.
// Не захватывает e.mu: Remove и Add вызываются под ним, поэтому очистка индекса
// выполняется отдельно в release.
func (e *Engine) onEvict(key string, en *entry) {
	if !en.parked.CompareAndSwap(true, false) {
		return
	}
	e.metrics.RecordEviction()
	logger.Log(e.base).Debug(e.base, LogEntryEvicted, zap.String("key", key))
	go e.release(en)
}

// release убирает вытесненную запись из индекса тегов и singleflight,
// если ключ не занят новой записью.
func (e *Engine) release(en *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en.dropped = true
	if e.owned(en.key) {
		return
	}
	e.unindex(en.key, en.tags)
	e.flights.Forget(en.key)
	e.updateGauge()
}

// owned сообщает, есть ли у ключа активная или припаркованная запись. Вызывается под e.mu.
func (e *Engine) owned(key string) bool {
	if _, ok := e.entries[key]; ok {
		return true
	}
	if e.retained != nil {
		if en, ok := e.retained.Peek(key); ok && en.parked.Load() {
			return true
		}
	}
	return false
}

// unindex удаляет ключ из индекса тегов. Вызывается под e.mu.
func (e *Engine) unindex(key string, tags []Tag) {
	for _, tag := range tags {
		if keys, ok := e.tagIndex[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(e.tagIndex, tag)
			}
		}
	}
}

// acquire возвращает активную запись или создает ее. Вызывается под e.mu.
func (e *Engine) acquire(key, name string, tags []Tag, args any, fetch func(ctx context.Context) (any, error)) (*entry, bool) {
	if en, ok := e.entries[key]; ok {
		return en, true
	}

	if e.retained != nil {
		if en, ok := e.retained.Peek(key); ok && en.parked.CompareAndSwap(true, false) {
			e.retained.Remove(key)
			e.entries[key] = en
			return en, true
		}
	}

	en := &entry{
		key:         key,
		name:        name,
		tags:        append([]Tag(nil), tags...),
		args:        args,
		fetch:       fetch,
		status:      StatusIdle,
		subscribers: make(map[uint64]*subscriber),
	}
	e.entries[key] = en
	for _, tag := range en.tags {
		if e.tagIndex[tag] == nil {
			e.tagIndex[tag] = make(map[string]struct{})
		}
		e.tagIndex[tag][key] = struct{}{}
	}
	e.updateGauge()
	return en, false
}

// subscribe добавляет подписчика и при необходимости запускает запрос. Вызывается под e.mu.
func (e *Engine) subscribe(en *entry, existed bool) (uint64, *subscriber) {
	e.nextSubID++
	id := e.nextSubID
	sub := &subscriber{ch: make(chan struct{}, 1)}
	en.subscribers[id] = sub

	switch {
	case en.inflight:
		e.metrics.RecordDedup(en.name)
	case en.status == StatusIdle || en.status == StatusFailed:
		e.startFetch(en)
	default:
		if existed {
			e.metrics.RecordDedup(en.name)
		}
	}
	return id, sub
}

// unsubscribe удаляет подписчика. Запись без подписчиков паркуется на время retention.
func (e *Engine) unsubscribe(en *entry, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := en.subscribers[id]; !ok {
		return
	}
	delete(en.subscribers, id)
	if len(en.subscribers) > 0 || en.dropped {
		return
	}

	if current, ok := e.entries[en.key]; !ok || current != en {
		return
	}
	delete(e.entries, en.key)

	if e.retained == nil || e.closed {
		e.drop(en)
		return
	}
	en.parked.Store(true)
	e.retained.Add(en.key, en)
	e.updateGauge()
}

// drop окончательно удаляет запись из индекса. Вызывается под e.mu.
func (e *Engine) drop(en *entry) {
	en.dropped = true
	delete(e.entries, en.key)
	e.unindex(en.key, en.tags)
	e.flights.Forget(en.key)
	e.updateGauge()
}

// startFetch переводит запись в pending и запускает запрос в фоне. Вызывается под e.mu.
func (e *Engine) startFetch(en *entry) {
	if e.closed {
		en.status = StatusFailed
		en.err = ErrClosed
		en.notifyAll()
		return
	}
	if en.inflight {
		return
	}

	en.inflight = true
	en.status = StatusPending
	en.fetches++
	en.notifyAll()

	ctx := logger.NewContext(e.base, logger.Log(e.base).With(
		zap.String("query", en.name),
		zap.String("key", en.key)))

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		logger.Log(ctx).Debug(ctx, LogFetchStarted)
		started := time.Now()

		result := <-e.flights.DoChan(en.key, func() (interface{}, error) {
			return en.fetch(ctx)
		})

		e.metrics.RecordFetch(en.name, time.Since(started), result.Err)
		if result.Shared {
			e.metrics.RecordDedup(en.name)
		}
		logger.Log(ctx).Debug(ctx, LogFetchFinished,
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(result.Err))

		e.complete(ctx, en, result.Val, result.Err)
	}()
}

// complete записывает результат. Если запись была инвалидирована во время запроса,
// ответ отбрасывается и выполняется ровно один повторный запрос. Ошибка завершенной
// сессии записывается как есть: повторный запрос ушел бы уже без авторизации.
func (e *Engine) complete(ctx context.Context, en *entry, val any, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en.inflight = false
	if en.dropped {
		return
	}

	pending := en.refetchPending
	en.refetchPending = false
	if pending && !errors.Is(err, transport.ErrSessionTerminated) {
		logger.Log(ctx).Debug(ctx, LogStaleDiscarded)
		e.startFetch(en)
		return
	}

	en.updatedAt = e.now()
	if err != nil {
		en.status = StatusFailed
		en.err = err
	} else {
		en.status = StatusSucceeded
		en.data = val
		en.hasData = true
		en.err = nil
	}
	en.notifyAll()
}

// refetch явно перезапрашивает запись, если она не в полете.
func (e *Engine) refetch(en *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if en.dropped {
		return
	}
	e.startFetch(en)
}

// Invalidate инвалидирует теги и возвращает число перезапрошенных записей.
// Все затронутые активные записи переводятся в pending до запуска первого запроса.
func (e *Engine) Invalidate(ctx context.Context, tags ...Tag) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make(map[string]struct{})
	for _, tag := range tags {
		e.metrics.RecordInvalidation(string(tag))
		for key := range e.tagIndex[tag] {
			keys[key] = struct{}{}
		}
	}

	n := e.invalidateKeys(keys)
	logger.Log(ctx).Debug(ctx, LogInvalidate,
		zap.Any("tags", tags),
		zap.Int("matched", len(keys)),
		zap.Int("refetched", n))
	return n
}

// invalidateKeys помечает активные записи устаревшими и запускает перезапросы.
// Записи без подписчиков удаляются. Вызывается под e.mu.
func (e *Engine) invalidateKeys(keys map[string]struct{}) int {
	var active []*entry

	for key := range keys {
		if en, ok := e.entries[key]; ok {
			if en.inflight {
				en.refetchPending = true
			}
			en.status = StatusPending
			en.notifyAll()
			active = append(active, en)
			continue
		}

		if e.retained != nil {
			if en, ok := e.retained.Peek(key); ok && en.parked.CompareAndSwap(true, false) {
				e.retained.Remove(key)
				e.drop(en)
				logger.Log(e.base).Debug(e.base, LogEntryDropped, zap.String("key", key))
				continue
			}
		}

		for tag, indexed := range e.tagIndex {
			delete(indexed, key)
			if len(indexed) == 0 {
				delete(e.tagIndex, tag)
			}
		}
	}

	for _, en := range active {
		e.metrics.RecordRefetch(en.name)
		if !en.inflight {
			e.startFetch(en)
		}
	}
	return len(active)
}

// Reset сбрасывает кэш при завершении сессии: удаляет записи без подписчиков и
// мутации, активные записи перезапрашивает.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.retained != nil {
		for _, key := range e.retained.Keys() {
			if en, ok := e.retained.Peek(key); ok && en.parked.CompareAndSwap(true, false) {
				e.drop(en)
			}
		}
		e.retained.Purge()
	}
	e.mutations = make(map[string]*MutationEntry)

	keys := make(map[string]struct{}, len(e.entries))
	for key := range e.entries {
		keys[key] = struct{}{}
	}
	n := e.invalidateKeys(keys)

	logger.Log(ctx).Info(ctx, LogReset, zap.Int("refetched", n))
}

// EntryInfo - снимок записи для отладки и слоя представления.
type EntryInfo struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Tags        []Tag     `json:"tags"`
	Status      Status    `json:"status"`
	Subscribers int       `json:"subscribers"`
	Retained    bool      `json:"retained"`
	Fetches     int       `json:"fetches"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Entries возвращает снимок всех записей, отсортированный по ключу.
func (e *Engine) Entries() []EntryInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]EntryInfo, 0, len(e.entries))
	for _, en := range e.entries {
		out = append(out, info(en, false))
	}
	if e.retained != nil {
		for _, key := range e.retained.Keys() {
			if en, ok := e.retained.Peek(key); ok && en.parked.Load() {
				out = append(out, info(en, true))
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func info(en *entry, retained bool) EntryInfo {
	i := EntryInfo{
		Key:         en.key,
		Name:        en.name,
		Tags:        append([]Tag(nil), en.tags...),
		Status:      en.status,
		Subscribers: len(en.subscribers),
		Retained:    retained,
		Fetches:     en.fetches,
		UpdatedAt:   en.updatedAt,
	}
	if en.err != nil {
		i.Error = en.err.Error()
	}
	return i
}

// Close отменяет фоновые запросы и ждет их завершения.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.retained != nil {
		for _, key := range e.retained.Keys() {
			if en, ok := e.retained.Peek(key); ok && en.parked.CompareAndSwap(true, false) {
				e.drop(en)
			}
		}
		e.retained.Purge()
	}
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
	return nil
}

// updateGauge вызывается под e.mu.
func (e *Engine) updateGauge() {
	n := len(e.entries)
	if e.retained != nil {
		n += e.retained.Len()
	}
	e.metrics.SetEntries(n)
}
