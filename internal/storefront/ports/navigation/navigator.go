// Package navigation определяет интерфейс принудительной навигации слоя представления.
package navigation

import "context"

// Navigator переводит приложение на указанный маршрут.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NavigatorFunc адаптирует функцию к Navigator.
type NavigatorFunc func(ctx context.Context, route string)

// Navigate вызывает f(ctx, route).
func (f NavigatorFunc) Navigate(ctx context.Context, route string) {
	f(ctx, route)
}
