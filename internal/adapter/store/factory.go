package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fx-widget/internal/config"
	"fx-widget/internal/domain/ports"
	"fx-widget/pkg/logger"
)

// Open builds the KeyValueStore selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (ports.KeyValueStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStore(log), nil
	case config.BackendFile:
		return NewFileStore(cfg.Path, log)
	case config.BackendBadger:
		return NewBadgerStore(cfg.Path, log)
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis connection error: %w", err)
		}

		return NewRedisStore(client, cfg.RedisPrefix, log), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
