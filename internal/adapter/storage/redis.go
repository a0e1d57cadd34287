package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/shopcore/internal/core/port"
	"github.com/redis/go-redis/v9"
)

var _ port.KeyValueStorage = (*RedisStorage)(nil)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces keys, e.g. per user or device.
	KeyPrefix string
}

type RedisStorage struct {
	cl     *redis.Client
	prefix string
}

func NewRedisStorage(ctx context.Context, cfg RedisConfig) (RedisStorage, error) {
	const op = "NewRedisStorage"

	cl := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return RedisStorage{}, fmt.Errorf("%s: redis is unavailable: %w", op, err)
	}
	slog.Info("redis is available", "op", op, "addr", cfg.Addr)
	return RedisStorage{cl: cl, prefix: cfg.KeyPrefix}, nil
}

func (s RedisStorage) Get(ctx context.Context, key string) (string, error) {
	const op = "RedisStorage.Get"

	v, err := s.cl.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, port.ErrKeyNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (s RedisStorage) Set(ctx context.Context, key, value string) error {
	const op = "RedisStorage.Set"

	if err := s.cl.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s RedisStorage) Close() {
	const op = "RedisStorage.Close"
	log := slog.With("op", op)

	log.Info("closing redis client...")
	if err := s.cl.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("redis client is closed")
}
