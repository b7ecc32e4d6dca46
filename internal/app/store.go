package app

import (
	"context"
	"fmt"

	"economy_server/internal/config"
	"economy_server/internal/db"
	"economy_server/internal/migrations"
	"economy_server/internal/repository"

	redis "github.com/redis/go-redis/v9"
)

// OpenStore opens the configured document backend. The Redis client is
// returned when the backend is redis so the rate limiter can share it.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.DocumentStore, *redis.Client, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(pool), nil, nil
	case config.BackendSQLite:
		store, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.BackendRedis:
		client, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisStore(client), client, nil
	default:
		return repository.NewMemoryStore(), nil, nil
	}
}
