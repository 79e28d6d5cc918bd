package config

import "time"

// CacheConfig описывает движок кэша запросов.
type CacheConfig struct {
	// Retention - сколько неиспользуемая запись живет после ухода последнего подписчика.
	Retention   time.Duration `yaml:"retention" env:"STOREFRONT_CACHE_RETENTION" env-default:"60s"`
	MaxRetained int           `yaml:"max_retained" env:"STOREFRONT_CACHE_MAX_RETAINED" env-default:"256"`
}
