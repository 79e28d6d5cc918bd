// Package config предоставляет загрузку конфигурации из переменных окружения и .env файла.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"storefront/pkg/logger"
)

const (
	msgLoadingConfiguration    = "loading configuration"
	msgConfigurationLoaded     = "configuration loaded successfully"
	msgFailedLoadConfiguration = "failed to load configuration"

	errFailedLoadConfiguration = "failed to load configuration"

	sourceFile = "file"
	sourceEnv  = "env"
)

// Load читает конфигурацию типа T. Значения из файла envPath, если он существует,
// переопределяются переменными окружения. Без файла читаются только переменные окружения.
func Load[T any](ctx context.Context, serviceName, envPath string) (*T, error) {
	log := logger.Log(ctx).With(zap.String("service", serviceName))

	source := sourceEnv
	if isFile(envPath) {
		source = sourceFile
	}
	log.Info(ctx, msgLoadingConfiguration, zap.String("source", source), zap.String("path", envPath))

	cfg := new(T)
	if err := read(source, envPath, cfg); err != nil {
		log.Error(ctx, msgFailedLoadConfiguration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded, zap.String("source", source))
	return cfg, nil
}

func read(source, path string, cfg any) error {
	if source == sourceFile {
		return cleanenv.ReadConfig(path, cfg)
	}
	return cleanenv.ReadEnv(cfg)
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
