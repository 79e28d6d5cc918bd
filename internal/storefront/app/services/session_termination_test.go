package services_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/storefront/adapters/api"
	"storefront/internal/storefront/adapters/jar"
	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/app/credentials"
	"storefront/internal/storefront/app/querycache"
	"storefront/internal/storefront/app/refresh"
	"storefront/internal/storefront/app/services"
	"storefront/internal/storefront/app/session"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/testutil"
)

// unauthorizedBackend отвечает 401 на любой запрос и считает запросы по пути.
type unauthorizedBackend struct {
	mu   sync.Mutex
	hits map[string]int
}

func (b *unauthorizedBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.Path]++
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
}

func (b *unauthorizedBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func TestCachedReadKeepsSessionTerminatedError(t *testing.T) {
	ctx := context.Background()

	backend := &unauthorizedBackend{hits: map[string]int{}}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := transport.NewClient("backend", transport.Config{BaseURL: srv.URL + "/api/"}, srv.Client())
	require.NoError(t, err)

	store := credentials.NewStore(jar.NewMemoryJar(nil), nil)
	recorder := &session.RouteRecorder{}
	sess := session.New(store, recorder, "/")

	now := time.Now()
	require.NoError(t, sess.SignIn(ctx, entities.CredentialPair{
		AccessToken:  testutil.Token(t, "expired", now.Add(-time.Minute)),
		RefreshToken: testutil.Token(t, "refresh", now.Add(time.Hour)),
	}))
	require.Empty(t, store.Read(ctx).AccessToken)

	authAPI := api.NewAuthAPI(client)
	authorized := refresh.New(client, sess, authAPI)

	engine := querycache.New(ctx, querycache.Options{Retention: time.Minute, MaxRetained: 16})
	t.Cleanup(func() { _ = engine.Close() })
	sess.OnTeardown(engine.Reset)

	catalog := services.NewCatalogService(engine, api.NewStoreAPI(authorized))

	_, err = catalog.User(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, transport.ErrSessionTerminated), "got %v", err)
	assert.Equal(t, transport.MessageSession, transport.Message(err))

	assert.Equal(t, []string{"/"}, recorder.Routes())
	assert.False(t, sess.State().IsLogged)
	assert.Equal(t, 1, backend.count("/api/"+api.PathRefresh))
	assert.Equal(t, 1, backend.count("/api/auth/user-info/"), "no unauthenticated follow-up fetch")
}
