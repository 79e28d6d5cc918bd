// Package redis предоставляет общую реализацию клиента Redis.
package redis

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// DefaultTimeout используется, если таймаут не задан.
const DefaultTimeout = 5 * time.Second

// Config содержит настройки подключения к Redis.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
	Timeout  time.Duration
}

// DefaultConfig возвращает конфигурацию для локального Redis.
func DefaultConfig() *Config {
	return &Config{Host: "localhost", Port: 6379, PoolSize: 10, Timeout: DefaultTimeout}
}

// ConfigFromAddress строит конфигурацию по умолчанию для адреса host:port.
func ConfigFromAddress(addr string) (*Config, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis port %q: %w", portStr, err)
	}
	cfg := DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	return cfg, nil
}

// Address возвращает адрес в формате host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
