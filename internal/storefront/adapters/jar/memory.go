// Package jar содержит реализации хранилища cookie-подобных записей.
package jar

import (
	"context"
	"sync"
	"time"

	"storefront/internal/storefront/ports/credentials"
)

type cookie struct {
	value   string
	expires time.Time
}

// MemoryJar хранит записи в памяти процесса.
type MemoryJar struct {
	mu      sync.Mutex
	cookies map[string]cookie
	now     func() time.Time
}

var _ credentials.Jar = (*MemoryJar)(nil)

// NewMemoryJar создает пустое хранилище. now может быть nil, тогда используется time.Now.
func NewMemoryJar(now func() time.Time) *MemoryJar {
	if now == nil {
		now = time.Now
	}
	return &MemoryJar{
		cookies: make(map[string]cookie),
		now:     now,
	}
}

// Set сохраняет запись. Уже истекшая запись удаляет предыдущее значение.
func (j *MemoryJar) Set(_ context.Context, name, value string, expires time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !expires.After(j.now()) {
		delete(j.cookies, name)
		return nil
	}
	j.cookies[name] = cookie{value: value, expires: expires}
	return nil
}

// Get возвращает значение, если запись существует и не истекла.
func (j *MemoryJar) Get(_ context.Context, name string) (string, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	c, ok := j.cookies[name]
	if !ok {
		return "", false, nil
	}
	if !c.expires.After(j.now()) {
		delete(j.cookies, name)
		return "", false, nil
	}
	return c.value, true, nil
}

// Delete удаляет записи.
func (j *MemoryJar) Delete(_ context.Context, names ...string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, name := range names {
		delete(j.cookies, name)
	}
	return nil
}
