package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/metrics"
	ports "storefront/internal/storefront/ports/ai"
	"storefront/internal/storefront/resilience"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	ServiceChat = "chat"

	PathChatCompletions = "chat/completions"

	LogChatComplete = "ai: chat completion"

	ErrorChatFailed = "chat completion failed"
)

// ErrEmptyChoice возвращается, если ответ не содержит вариантов.
var ErrEmptyChoice = errors.New("no completion choices in response")

type chatMessage struct {
	Role    string              `json:"role"`
	Content []ports.ContentItem `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// ChatClient обращается к сервису chat completion.
type ChatClient struct {
	doer     transport.Doer
	key      string
	executor *resilience.Executor[string]
	metrics  *metrics.Metrics
}

var _ ports.ChatCompleter = (*ChatClient)(nil)

// NewChatClient создает клиент. doer должен указывать на базовый адрес сервиса.
func NewChatClient(doer transport.Doer, key string, cfg resilience.Config, m *metrics.Metrics) *ChatClient {
	cfg.ShouldRetry = Retryable
	return &ChatClient{
		doer:     doer,
		key:      key,
		executor: resilience.NewExecutor[string](ServiceChat, cfg),
		metrics:  m,
	}
}

// Complete отправляет одно сообщение пользователя и возвращает текст первого варианта.
// Пустой текст первого варианта не считается ошибкой.
func (c *ChatClient) Complete(ctx context.Context, model string, content []ports.ContentItem) (string, error) {
	log := logger.Log(ctx).With(zap.String("model", model))
	log.Debug(ctx, LogChatComplete)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.key)
	req := &transport.Request{
		Method: http.MethodPost,
		Path:   PathChatCompletions,
		Header: header,
		Body: transport.JSONBody(chatRequest{
			Model:    model,
			Messages: []chatMessage{{Role: "user", Content: content}},
		}),
	}

	started := time.Now()
	text, err := c.executor.Execute(ctx, model, func(ctx context.Context) (string, error) {
		resp, err := c.doer.Do(ctx, req)
		if err != nil {
			return "", err
		}
		return firstChoice(resp.Body)
	})
	c.metrics.RecordAICall(ServiceChat, time.Since(started))
	if err != nil {
		log.Warn(ctx, ErrorChatFailed, zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrorChatFailed, err)
	}
	return text, nil
}

func firstChoice(body []byte) (string, error) {
	choices := gjson.GetBytes(body, "choices")
	if !choices.IsArray() || len(choices.Array()) == 0 {
		return "", ErrEmptyChoice
	}
	return choices.Get("0.message.content").String(), nil
}
