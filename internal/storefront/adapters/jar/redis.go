package jar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/storefront/ports/credentials"
	"storefront/pkg/db/redis"
	"storefront/pkg/logger"
)

// Константы для логирования.
const (
	ErrorFailedToGet    = "failed to get cookie from redis"
	ErrorFailedToSet    = "failed to set cookie in redis"
	ErrorFailedToDelete = "failed to delete cookie from redis"
)

// RedisJar хранит записи в Redis, TTL ключа совпадает со временем истечения записи.
type RedisJar struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ credentials.Jar = (*RedisJar)(nil)

// NewRedisJar создает хранилище поверх клиента Redis.
func NewRedisJar(client *redis.Client, prefix string, now func() time.Time) *RedisJar {
	if now == nil {
		now = time.Now
	}
	return &RedisJar{client: client, prefix: prefix, now: now}
}

// Set сохраняет запись до expires. Уже истекшая запись удаляется.
func (j *RedisJar) Set(ctx context.Context, name, value string, expires time.Time) error {
	key := j.prefix + name
	ttl := expires.Sub(j.now())
	if ttl <= 0 {
		return j.Delete(ctx, name)
	}

	if err := j.client.Set(ctx, key, value, ttl); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToSet, zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}
	return nil
}

// Get возвращает значение, если ключ существует.
func (j *RedisJar) Get(ctx context.Context, name string) (string, bool, error) {
	key := j.prefix + name

	value, err := j.client.Get(ctx, key)
	if errors.Is(err, redis.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToGet, zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}
	return value, true, nil
}

// Delete удаляет записи.
func (j *RedisJar) Delete(ctx context.Context, names ...string) error {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, j.prefix+name)
	}

	if err := j.client.Delete(ctx, keys...); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToDelete, zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDelete, err)
	}
	return nil
}
