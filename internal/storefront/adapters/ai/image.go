package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/metrics"
	ports "storefront/internal/storefront/ports/ai"
	"storefront/internal/storefront/resilience"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	ServiceImage = "image"

	LogImageGenerate = "ai: image generation"

	ErrorImageFailed = "image generation failed"
)

// ErrNoInlineImage возвращается, если ответ не содержит изображения.
var ErrNoInlineImage = errors.New("no inline image in response")

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type imagePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type imageContent struct {
	Parts []imagePart `json:"parts"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type imageRequest struct {
	Contents         []imageContent   `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// ImageClient обращается к сервису генерации изображений.
type ImageClient struct {
	doer     transport.Doer
	key      string
	executor *resilience.Executor[entities.EncodedImage]
	metrics  *metrics.Metrics
}

var _ ports.ImageGenerator = (*ImageClient)(nil)

// NewImageClient создает клиент. doer должен указывать на полный адрес метода генерации.
func NewImageClient(doer transport.Doer, key string, cfg resilience.Config, m *metrics.Metrics) *ImageClient {
	cfg.ShouldRetry = Retryable
	return &ImageClient{
		doer:     doer,
		key:      key,
		executor: resilience.NewExecutor[entities.EncodedImage](ServiceImage, cfg),
		metrics:  m,
	}
}

// Generate отправляет текст и изображение и возвращает первое изображение из ответа.
func (c *ImageClient) Generate(ctx context.Context, text string, image entities.EncodedImage) (entities.EncodedImage, error) {
	log := logger.Log(ctx)
	log.Debug(ctx, LogImageGenerate, zap.String("mime_type", image.MimeType))

	body := imageRequest{
		Contents: []imageContent{{Parts: []imagePart{
			{Text: text},
			{InlineData: &inlineData{MimeType: image.MimeType, Data: image.Data}},
		}}},
		GenerationConfig: generationConfig{ResponseModalities: []string{"Text", "Image"}},
	}

	req := &transport.Request{
		Method: http.MethodPost,
		Query:  url.Values{"key": {c.key}},
		Body:   transport.JSONBody(body),
	}

	started := time.Now()
	result, err := c.executor.Execute(ctx, ServiceImage, func(ctx context.Context) (entities.EncodedImage, error) {
		resp, err := c.doer.Do(ctx, req)
		if err != nil {
			return entities.EncodedImage{}, err
		}
		return firstInlineImage(resp.Body)
	})
	c.metrics.RecordAICall(ServiceImage, time.Since(started))
	if err != nil {
		log.Warn(ctx, ErrorImageFailed, zap.Error(err))
		return entities.EncodedImage{}, fmt.Errorf("%s: %w", ErrorImageFailed, err)
	}
	return result, nil
}

// firstInlineImage ищет первую часть первого кандидата с inlineData.
func firstInlineImage(body []byte) (entities.EncodedImage, error) {
	var found entities.EncodedImage
	gjson.GetBytes(body, "candidates.0.content.parts").ForEach(func(_, part gjson.Result) bool {
		data := part.Get("inlineData")
		if !data.Exists() {
			data = part.Get("inline_data")
		}
		if !data.Exists() || data.Get("data").String() == "" {
			return true
		}
		found = entities.EncodedImage{
			MimeType: firstString(data, "mimeType", "mime_type"),
			Data:     data.Get("data").String(),
		}
		return false
	})
	if found.Data == "" {
		return entities.EncodedImage{}, ErrNoInlineImage
	}
	return found, nil
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v.String()
		}
	}
	return ""
}
