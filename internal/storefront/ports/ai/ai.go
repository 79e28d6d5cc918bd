// Package ai определяет интерфейсы внешних сервисов генерации контента.
package ai

import (
	"context"

	"storefront/internal/storefront/domain/entities"
)

// ContentType - тип части сообщения.
type ContentType string

// Типы частей сообщения.
const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image_url"
)

// ImageURL - ссылка на изображение в сообщении.
type ImageURL struct {
	URL string `json:"url"`
}

// ContentItem - часть сообщения: текст или изображение.
type ContentItem struct {
	Type     ContentType `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL *ImageURL   `json:"image_url,omitempty"`
}

// Text создает текстовую часть.
func Text(text string) ContentItem {
	return ContentItem{Type: ContentText, Text: text}
}

// Image создает часть с изображением в виде data URL.
func Image(img entities.EncodedImage) ContentItem {
	return ContentItem{Type: ContentImage, ImageURL: &ImageURL{URL: img.DataURL()}}
}

// ChatCompleter отправляет сообщение модели и возвращает текст первого варианта ответа.
type ChatCompleter interface {
	Complete(ctx context.Context, model string, content []ContentItem) (string, error)
}

// ImageGenerator генерирует изображение по тексту и исходному изображению.
type ImageGenerator interface {
	Generate(ctx context.Context, text string, image entities.EncodedImage) (entities.EncodedImage, error)
}
