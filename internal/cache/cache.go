// Package cache хранит отрисованные html-фрагменты каталога.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// FragmentCache — кэш готовых фрагментов по ключу.
// Get возвращает ok == false, если значения нет.
type FragmentCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

const keyPrefix = "storefront:fragment:"

type redisCache struct {
	client *redis.Client
}

// NewRedisCache создаёт кэш поверх redis и проверяет соединение
func NewRedisCache(ctx context.Context, addr, password string, db int) (FragmentCache, func() error, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &redisCache{client: client}, client.Close, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get fragment %s: %w", key, err)
	}
	return value, true, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set fragment %s: %w", key, err)
	}
	return nil
}

// Nop — кэш, который ничего не хранит; используется, когда redis не настроен
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (Nop) Set(context.Context, string, string, time.Duration) error {
	return nil
}
