package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"storefront/internal/storefront/adapters/ai"
	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/metrics"
	ports "storefront/internal/storefront/ports/ai"
	"storefront/internal/storefront/resilience"
)

func testConfig() resilience.Config {
	cfg := resilience.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = time.Millisecond
	return cfg
}

func newDoer(t *testing.T, handler http.HandlerFunc, baseSuffix string) transport.Doer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := transport.NewClient("ai", transport.Config{BaseURL: srv.URL + baseSuffix}, srv.Client())
	require.NoError(t, err)
	return client
}

type captured struct {
	header http.Header
	url    string
	query  string
	body   []byte
}

func capture(r *http.Request) captured {
	body, _ := io.ReadAll(r.Body)
	return captured{header: r.Header.Clone(), url: r.URL.Path, query: r.URL.Query().Get("key"), body: body}
}

func TestChatComplete(t *testing.T) {
	seen := make(chan captured, 1)
	doer := newDoer(t, func(w http.ResponseWriter, r *http.Request) {
		seen <- capture(r)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Fresh fruit"}}]}`))
	}, "/api/v1/")

	m := metrics.New("test", prometheus.NewRegistry())
	client := ai.NewChatClient(doer, "secret", testConfig(), m)

	img := entities.EncodedImage{MimeType: "image/png", Data: "AAAA"}
	got, err := client.Complete(context.Background(), ai.ModelQwen, []ports.ContentItem{
		ports.Text("describe"),
		ports.Image(img),
	})
	require.NoError(t, err)
	assert.Equal(t, "Fresh fruit", got)

	req := <-seen
	body := req.body
	assert.Equal(t, "Bearer secret", req.header.Get("Authorization"))
	assert.Equal(t, "/api/v1/chat/completions", req.url)
	assert.Equal(t, ai.ModelQwen, gjson.GetBytes(body, "model").String())
	assert.Equal(t, "user", gjson.GetBytes(body, "messages.0.role").String())
	assert.Equal(t, "text", gjson.GetBytes(body, "messages.0.content.0.type").String())
	assert.Equal(t, "data:image/png;base64,AAAA", gjson.GetBytes(body, "messages.0.content.1.image_url.url").String())
}

func TestChatCompleteEmptyChoices(t *testing.T) {
	doer := newDoer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, "/")
	client := ai.NewChatClient(doer, "k", testConfig(), nil)

	_, err := client.Complete(context.Background(), ai.ModelGemini, []ports.ContentItem{ports.Text("x")})
	require.ErrorIs(t, err, ai.ErrEmptyChoice)
}

func TestChatCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	doer := newDoer(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message":"upstream"}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}, "/")
	client := ai.NewChatClient(doer, "k", testConfig(), nil)

	got, err := client.Complete(context.Background(), ai.ModelGemini, []ports.ContentItem{ports.Text("x")})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestChatCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	doer := newDoer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad key"}`))
	}, "/")
	client := ai.NewChatClient(doer, "k", testConfig(), nil)

	_, err := client.Complete(context.Background(), ai.ModelGemini, []ports.ContentItem{ports.Text("x")})
	require.Error(t, err)
	assert.True(t, transport.IsKind(err, transport.KindServer))
	assert.Equal(t, int32(1), calls.Load())
}

func TestImageGenerate(t *testing.T) {
	seen := make(chan captured, 1)
	doer := newDoer(t, func(w http.ResponseWriter, r *http.Request) {
		seen <- capture(r)
		resp := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{
					map[string]any{"text": "Here it is"},
					map[string]any{"inlineData": map[string]any{"mimeType": "image/png", "data": "R0lG"}},
				}},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}, "/v1beta/models/image:generateContent")

	client := ai.NewImageClient(doer, "gkey", testConfig(), nil)
	got, err := client.Generate(context.Background(), "draw", entities.EncodedImage{MimeType: "image/jpeg", Data: "QUJD"})
	require.NoError(t, err)
	assert.Equal(t, entities.EncodedImage{MimeType: "image/png", Data: "R0lG"}, got)

	req := <-seen
	body := req.body
	assert.Equal(t, "gkey", req.query)
	assert.Equal(t, "/v1beta/models/image:generateContent", req.url)
	assert.Equal(t, "draw", gjson.GetBytes(body, "contents.0.parts.0.text").String())
	assert.Equal(t, "image/jpeg", gjson.GetBytes(body, "contents.0.parts.1.inline_data.mime_type").String())
	assert.Equal(t, "QUJD", gjson.GetBytes(body, "contents.0.parts.1.inline_data.data").String())
	assert.Equal(t, `["Text","Image"]`, gjson.GetBytes(body, "generationConfig.responseModalities").Raw)
}

func TestImageGenerateWithoutImage(t *testing.T) {
	doer := newDoer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`))
	}, "/gen")
	client := ai.NewImageClient(doer, "k", testConfig(), nil)

	_, err := client.Generate(context.Background(), "draw", entities.EncodedImage{MimeType: "image/png", Data: "AA"})
	require.ErrorIs(t, err, ai.ErrNoInlineImage)
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"network", &transport.Error{Kind: transport.KindNetwork}, true},
		{"server 503", &transport.Error{Kind: transport.KindServer, Status: http.StatusServiceUnavailable}, true},
		{"server 429", &transport.Error{Kind: transport.KindServer, Status: http.StatusTooManyRequests}, true},
		{"server 400", &transport.Error{Kind: transport.KindServer, Status: http.StatusBadRequest}, false},
		{"auth", &transport.Error{Kind: transport.KindAuth}, false},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ai.Retryable(tc.err))
		})
	}
}

func TestCategoryListAndRender(t *testing.T) {
	list := ai.CategoryList([]entities.CategoryName{{ID: 1, Name: "Fruit"}, {ID: 4, Name: "Dairy"}})
	assert.Equal(t, "1: Fruit, 4: Dairy", list)

	prompt := ai.ProductCategories.Render(list, "Milk")
	assert.Contains(t, prompt, "Categories: 1: Fruit, 4: Dairy")
	assert.Contains(t, prompt, "- Product Title: Milk")
	assert.Contains(t, ai.CategoryIcon.Render("Toys"), "- Category Name: Toys")
}
