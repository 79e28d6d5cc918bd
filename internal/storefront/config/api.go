package config

import "time"

// APIConfig описывает REST бэкенд витрины.
type APIConfig struct {
	BaseURL string `yaml:"base_url" env:"STOREFRONT_API_BASE_URL" env-default:"http://localhost:8000/api/"`
	// Timeout 0 означает отсутствие таймаута на уровне транспорта.
	Timeout   time.Duration `yaml:"timeout" env:"STOREFRONT_API_TIMEOUT" env-default:"0s"`
	UserAgent string        `yaml:"user_agent" env:"STOREFRONT_API_USER_AGENT" env-default:"storefront-client/1.0"`
}

// AuthConfig описывает поведение сессии.
type AuthConfig struct {
	LandingRoute    string `yaml:"landing_route" env:"STOREFRONT_AUTH_LANDING_ROUTE" env-default:"/"`
	CoalesceRefresh bool   `yaml:"coalesce_refresh" env:"STOREFRONT_AUTH_COALESCE_REFRESH" env-default:"true"`
}

// JarConfig описывает хранилище cookie-подобных записей с учетными данными.
type JarConfig struct {
	Backend   string `yaml:"backend" env:"STOREFRONT_JAR_BACKEND" env-default:"memory"`
	KeyPrefix string `yaml:"key_prefix" env:"STOREFRONT_JAR_KEY_PREFIX" env-default:"storefront:cookie:"`
}

// Поддерживаемые бэкенды JarConfig.
const (
	JarBackendMemory = "memory"
	JarBackendRedis  = "redis"
)
