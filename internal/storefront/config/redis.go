package config

import (
	"time"

	"storefront/pkg/db/redis"
)

// RedisConfig представляет конфигурацию для Redis.
type RedisConfig struct {
	Host     string        `yaml:"host" env:"STOREFRONT_REDIS_HOST" env-default:"localhost"`
	Port     int           `yaml:"port" env:"STOREFRONT_REDIS_PORT" env-default:"6379"`
	Password string        `yaml:"password" env:"STOREFRONT_REDIS_PASSWORD" env-default:""`
	DB       int           `yaml:"db" env:"STOREFRONT_REDIS_DB" env-default:"0"`
	PoolSize int           `yaml:"pool_size" env:"STOREFRONT_REDIS_POOL_SIZE" env-default:"10"`
	Timeout  time.Duration `yaml:"timeout" env:"STOREFRONT_REDIS_TIMEOUT" env-default:"5s"`
}

// ClientConfig преобразует конфигурацию в настройки общего клиента Redis.
func (c *RedisConfig) ClientConfig() *redis.Config {
	return &redis.Config{
		Host:     c.Host,
		Port:     c.Port,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
		Timeout:  c.Timeout,
	}
}
