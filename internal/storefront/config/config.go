// Package config содержит конфигурацию клиентского слоя доступа к данным витрины.
package config

import (
	"context"

	"go.uber.org/zap"

	pkgconfig "storefront/pkg/config"
	"storefront/pkg/logger"
)

// ServiceName используется в логах и метриках.
const ServiceName = "storefront"

// Константы сообщений конфигурации.
const (
	LogConfigLoaded = "storefront configuration loaded"
)

// Config представляет полную конфигурацию клиента.
type Config struct {
	API      APIConfig      `yaml:"api"`
	AI       AIConfig       `yaml:"ai"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Jar      JarConfig      `yaml:"jar"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// Load загружает конфигурацию из переменных окружения и, если он есть, из envPath.
func Load(ctx context.Context, envPath string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, envPath)
	if err != nil {
		return nil, err
	}

	logger.Log(ctx).Info(ctx, LogConfigLoaded,
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.String("ai_chat_url", cfg.AI.ChatURL),
		zap.String("ai_image_url", cfg.AI.ImageURL),
		zap.Duration("cache_retention", cfg.Cache.Retention),
		zap.Bool("coalesce_refresh", cfg.Auth.CoalesceRefresh),
		zap.String("jar_backend", cfg.Jar.Backend),
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("log_level", cfg.Logging.Level))

	return cfg, nil
}

// GetEnvironment возвращает режим работы логгера.
func (c *LoggingConfig) GetEnvironment() logger.Environment {
	if c.Mode == "development" {
		return logger.Development
	}
	return logger.Production
}
