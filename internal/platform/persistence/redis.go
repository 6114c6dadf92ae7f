package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient opens and verifies a connection for the product snapshot cache
func NewRedisClient(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     20,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Connected to Redis", "addr", cfg.Addr, "db", cfg.DB)
	return client, nil
}
