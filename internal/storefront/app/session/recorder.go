package session

import (
	"context"
	"sync"

	"storefront/internal/storefront/ports/navigation"
)

// RouteRecorder запоминает маршруты принудительной навигации.
// Слой представления читает последний маршрут и выполняет переход сам.
type RouteRecorder struct {
	mu     sync.Mutex
	routes []string
}

var _ navigation.Navigator = (*RouteRecorder)(nil)

// Navigate записывает маршрут.
func (r *RouteRecorder) Navigate(_ context.Context, route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// Last возвращает последний маршрут.
func (r *RouteRecorder) Last() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return "", false
	}
	return r.routes[len(r.routes)-1], true
}

// Routes возвращает все записанные маршруты.
func (r *RouteRecorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.routes))
	copy(out, r.routes)
	return out
}
