package config

import "time"

// AIConfig описывает внешние сервисы генерации контента.
type AIConfig struct {
	ChatURL  string        `yaml:"chat_url" env:"STOREFRONT_AI_CHAT_URL" env-default:"https://openrouter.ai/api/v1/"`
	ChatKey  string        `yaml:"chat_key" env:"STOREFRONT_AI_CHAT_KEY"`
	ImageURL string        `yaml:"image_url" env:"STOREFRONT_AI_IMAGE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash-exp-image-generation:generateContent"`
	ImageKey string        `yaml:"image_key" env:"STOREFRONT_AI_IMAGE_KEY"`
	Timeout  time.Duration `yaml:"timeout" env:"STOREFRONT_AI_TIMEOUT" env-default:"60s"`

	RetryAttempts    int           `yaml:"retry_attempts" env:"STOREFRONT_AI_RETRY_ATTEMPTS" env-default:"2"`
	RetryBackoff     time.Duration `yaml:"retry_backoff" env:"STOREFRONT_AI_RETRY_BACKOFF" env-default:"200ms"`
	BreakerThreshold uint32        `yaml:"breaker_threshold" env:"STOREFRONT_AI_BREAKER_THRESHOLD" env-default:"5"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout" env:"STOREFRONT_AI_BREAKER_TIMEOUT" env-default:"30s"`
}
