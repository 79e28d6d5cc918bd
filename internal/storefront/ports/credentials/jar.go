// Package credentials определяет интерфейсы хранения учетных данных клиента.
package credentials

import (
	"context"
	"time"
)

// Jar - хранилище cookie-подобных записей с временем истечения.
// Истекшая запись должна быть неотличима от отсутствующей.
type Jar interface {
	Set(ctx context.Context, name, value string, expires time.Time) error

	Get(ctx context.Context, name string) (string, bool, error)

	Delete(ctx context.Context, names ...string) error
}
