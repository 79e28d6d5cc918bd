package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/storefront/adapters/transport"
	apphttp "storefront/internal/storefront/app/http"
	"storefront/internal/storefront/app/generator"
	"storefront/internal/storefront/app/querycache"
	"storefront/internal/storefront/app/session"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/ports/services"
	"storefront/pkg/logger"
)

type fakeAuth struct {
	state  session.State
	err    error
	logins []entities.LoginRequest
}

func (f *fakeAuth) Login(_ context.Context, req entities.LoginRequest) (session.State, error) {
	f.logins = append(f.logins, req)
	if f.err == nil {
		f.state = session.State{IsLogged: true}
	}
	return f.state, f.err
}

func (f *fakeAuth) Register(_ context.Context, _ entities.RegisterRequest) (session.State, error) {
	return session.State{IsLogged: true}, f.err
}

func (f *fakeAuth) Logout(context.Context) error {
	f.state = session.State{}
	return nil
}

func (f *fakeAuth) State() session.State { return f.state }

// fakeCatalog переопределяет только используемые в тестах методы.
type fakeCatalog struct {
	services.CatalogService

	categories entities.Page[entities.Category]
	filters    []entities.Filter
	deleted    []int
	recFilter  entities.ProductFilter
	err        error
}

func (f *fakeCatalog) Categories(_ context.Context, filter entities.Filter) (entities.Page[entities.Category], error) {
	f.filters = append(f.filters, filter)
	return f.categories, f.err
}

func (f *fakeCatalog) DeleteCategory(_ context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeCatalog) Recommendations(_ context.Context, filter entities.ProductFilter) (entities.Page[entities.ProductCard], error) {
	f.recFilter = filter
	return entities.Page[entities.ProductCard]{}, f.err
}

func (f *fakeCatalog) User(context.Context) (entities.User, error) {
	return entities.User{}, f.err
}

func (f *fakeCatalog) Entries() []querycache.EntryInfo {
	return []querycache.EntryInfo{{Key: "getCategories/1", Name: "getCategories", Status: querycache.StatusSucceeded}}
}

type fakeGeneration struct {
	category generator.Result[generator.CategoryPatch]
	err      error
}

func (f *fakeGeneration) GenerateCategory(context.Context, string) (generator.Result[generator.CategoryPatch], error) {
	return f.category, f.err
}

func (f *fakeGeneration) GenerateProduct(context.Context, generator.ProductDraft) (generator.Result[generator.ProductPatch], error) {
	return generator.Result[generator.ProductPatch]{}, f.err
}

type fixture struct {
	app        *fiber.App
	auth       *fakeAuth
	catalog    *fakeCatalog
	generation *fakeGeneration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		app:        fiber.New(),
		auth:       &fakeAuth{},
		catalog:    &fakeCatalog{},
		generation: &fakeGeneration{},
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "probe"}))

	apphttp.SetupRouter(f.app, apphttp.Dependencies{
		Auth:         f.auth,
		Catalog:      f.catalog,
		Generation:   f.generation,
		Gatherer:     registry,
		Logger:       logger.NewNop(),
		LandingRoute: "/",
	})
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	decoded := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["is_logged"])

	resp, body = f.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.com","password":"x"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_logged"])
	assert.Equal(t, []entities.LoginRequest{{Email: "a@b.com", Password: "x"}}, f.auth.logins)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/auth/logout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, session.State{}, f.auth.State())
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.com"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, f.auth.logins)
}

func TestCategoriesQueryParams(t *testing.T) {
	f := newFixture(t)
	f.catalog.categories = entities.Page[entities.Category]{Count: 3, Pages: 1}

	resp, body := f.do(t, http.MethodGet, "/api/v1/categories?page=2&page_size=5&query=fr", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["count"])
	require.Len(t, f.catalog.filters, 1)
	assert.Equal(t, entities.Filter{PageParams: entities.PageParams{Page: 2, PageSize: 5}, Query: "fr"}, f.catalog.filters[0])
}

func TestRecommendationsFilter(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/api/v1/recommendations?categories=1,4&price_min=2.5&sort=newest", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{1, 4}, f.catalog.recFilter.Categories)
	assert.InDelta(t, 2.5, f.catalog.recFilter.PriceMin, 1e-9)
	assert.Equal(t, entities.SortNewest, f.catalog.recFilter.Sort)
}

func TestDeleteCategory(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodDelete, "/api/v1/categories/5", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{5}, f.catalog.deleted)

	resp, _ = f.do(t, http.MethodDelete, "/api/v1/categories/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorRendering(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		message  string
		redirect bool
	}{
		{
			name:     "session terminated",
			err:      transport.SessionError(&transport.Error{Kind: transport.KindServer, Status: http.StatusUnauthorized, Message: "expired"}),
			status:   http.StatusUnauthorized,
			message:  transport.MessageSession,
			redirect: true,
		},
		{
			name:    "server error message",
			err:     &transport.Error{Kind: transport.KindServer, Status: http.StatusNotFound, Message: "User not found"},
			status:  http.StatusNotFound,
			message: "User not found",
		},
		{
			name:    "network error",
			err:     &transport.Error{Kind: transport.KindNetwork},
			status:  http.StatusBadGateway,
			message: transport.MessageNetwork,
		},
		{
			name:    "unknown error",
			err:     errors.New("boom"),
			status:  http.StatusBadGateway,
			message: transport.MessageNetwork,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.catalog.err = tc.err

			resp, body := f.do(t, http.MethodGet, "/api/v1/user", "")
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.message, body["error"])
			if tc.redirect {
				assert.Equal(t, "/", body["redirect"])
			} else {
				assert.NotContains(t, body, "redirect")
			}
		})
	}
}

func TestGenerateCategoryPartialResult(t *testing.T) {
	f := newFixture(t)
	f.generation.category = generator.Result[generator.CategoryPatch]{
		Patch:    generator.CategoryPatch{Icon: &entities.File{Name: "x.svg", MimeType: "image/svg+xml", Data: []byte("<svg></svg>")}},
		Errors:   map[string]string{generator.FieldDescription: generator.MessageDescriptionFailed},
		Branches: map[string]querycache.Status{generator.FieldDescription: querycache.StatusFailed, generator.FieldImage: querycache.StatusSucceeded},
	}

	resp, body := f.do(t, http.MethodPost, "/api/v1/admin/generate/category", `{"name":"Toys"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	patch, ok := body["patch"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, patch, "description")
	icon, ok := patch["icon"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "x.svg", icon["name"])
	assert.Equal(t, map[string]any{generator.FieldDescription: generator.MessageDescriptionFailed}, body["errors"])
}

func TestGenerateValidationError(t *testing.T) {
	f := newFixture(t)
	f.generation.err = generator.ErrValidation
	f.generation.category = generator.Result[generator.CategoryPatch]{
		Errors: map[string]string{generator.FieldName: generator.MessageCategoryNameRequired},
	}

	resp, body := f.do(t, http.MethodPost, "/api/v1/admin/generate/category", `{"name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, map[string]any{generator.FieldName: generator.MessageCategoryNameRequired}, body["fields"])
}

func TestCacheAndMetricsAndNotFound(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache", nil)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	var entries []querycache.EntryInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	_ = resp.Body.Close()
	require.Len(t, entries, 1)
	assert.Equal(t, "getCategories", entries[0].Name)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Contains(t, string(raw), "probe_total")

	resp, body := f.do(t, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Route not found", body["error"])
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set(logger.HeaderRequestID, "req-42")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get(logger.HeaderRequestID))

	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Len(t, resp.Header.Get(logger.HeaderRequestID), 36)
}
