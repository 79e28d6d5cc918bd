// Package transport выполняет HTTP запросы к REST бэкенду с единым форматом запроса, ответа и ошибок.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	LogRequest       = "transport: request"
	LogResponse      = "transport: response"
	LogRequestFailed = "transport: request failed"

	ErrorInvalidBaseURL = "invalid base url"
	ErrorBuildRequest   = "failed to build request"
	ErrorReadResponse   = "failed to read response body"
	ErrorDecodeResponse = "failed to decode response body"
)

// Doer выполняет один запрос.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// DoerFunc адаптирует функцию к Doer.
type DoerFunc func(ctx context.Context, req *Request) (*Response, error)

// Do вызывает f(ctx, req).
func (f DoerFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Config - настройки клиента.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Header    http.Header
}

// Client выполняет ровно один HTTP вызов на запрос, без повторов.
type Client struct {
	base   *url.URL
	http   *http.Client
	header http.Header
	name   string
}

var _ Doer = (*Client)(nil)

// NewClient создает клиент. httpClient может быть nil.
func NewClient(name string, cfg Config, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorInvalidBaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: %q", ErrorInvalidBaseURL, cfg.BaseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	header := cfg.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if cfg.UserAgent != "" {
		header.Set("User-Agent", cfg.UserAgent)
	}
	if header.Get("Accept") == "" {
		header.Set("Accept", "application/json")
	}

	return &Client{base: base, http: httpClient, header: header, name: name}, nil
}

// URL возвращает абсолютный адрес запроса.
func (c *Client) URL(req *Request) (*url.URL, error) {
	u := *c.base
	if req.Path != "" {
		base := *c.base
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		ref, err := url.Parse(req.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrorBuildRequest, err)
		}
		u = *base.ResolveReference(ref)
	}

	if len(req.Query) > 0 {
		q := u.Query()
		for key, values := range req.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return &u, nil
}

// Do выполняет запрос. Ответ не 2xx возвращается как *Error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	log := logger.Log(ctx).With(
		zap.String("client", c.name),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
	)

	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Debug(ctx, LogRequest)
	started := time.Now()

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		log.Warn(ctx, LogRequestFailed, zap.Error(err))
		return nil, networkError(err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		log.Warn(ctx, LogRequestFailed, zap.Error(err))
		return nil, networkError(fmt.Errorf("%s: %w", ErrorReadResponse, err))
	}

	log.Debug(ctx, LogResponse,
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, statusError(httpResp.StatusCode, body)
	}

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   body,
	}, nil
}

func (c *Client) build(ctx context.Context, req *Request) (*http.Request, error) {
	u, err := c.URL(req)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		if body, err = req.Body.Encode(); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrorBuildRequest, err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorBuildRequest, err)
	}

	for key, values := range c.header {
		httpReq.Header[key] = append([]string(nil), values...)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", req.Body.ContentType())
	}
	for key, values := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}
	return httpReq, nil
}

// Decode разбирает JSON тело ответа. Пустое тело дает нулевое значение.
func Decode[T any](resp *Response) (T, error) {
	var out T
	if resp == nil || len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, networkError(fmt.Errorf("%s: %w", ErrorDecodeResponse, err))
	}
	return out, nil
}

// Call выполняет запрос через doer и разбирает ответ.
func Call[T any](ctx context.Context, doer Doer, req *Request) (T, error) {
	resp, err := doer.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](resp)
}
