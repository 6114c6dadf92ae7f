package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/finnova-banking-ledger/internal/data/postgres"
	"github.com/finnova-banking-ledger/internal/data/redis"
	"github.com/finnova-banking-ledger/internal/domain/commission"
	"github.com/finnova-banking-ledger/internal/logger"
	"github.com/finnova-banking-ledger/internal/platform/httpserver"
	"github.com/finnova-banking-ledger/internal/platform/persistence"
	"github.com/finnova-banking-ledger/internal/product_service"
	"github.com/finnova-banking-ledger/internal/product_service/handler"
	"github.com/finnova-banking-ledger/internal/product_service/service"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("product_service")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Product Service",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	version, err := persistence.RunMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath)
	if err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("Database schema is up to date", "version", version)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	checks := map[string]httpserver.HealthCheck{
		"postgres": postgresDB.Ping,
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = persistence.NewRedisClient(appCtx, log, &cfg.Redis)
		if err != nil {
			log.Error("Failed to initialize Redis", "error", err)
			os.Exit(1)
		}
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	} else {
		log.Warn("Redis address not configured, product cache disabled")
	}

	productRepo := postgres.NewProductRepository(log, postgresDB)
	productCache := redis.NewProductCache(log.With("component", "product_cache"), redisClient, cfg.Redis.TTL)
	productService := service.NewProductService(
		log.With("component", "product_service"),
		postgresDB,
		productRepo,
		productCache,
		commission.DefaultPolicy(),
	)

	server := httpserver.NewServer(log, cfg, checks)
	product_service.RegisterRoutes(server.Router(), handler.NewProductHandler(log, productService))

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case serviceErr = <-errChan:
		log.Error("Server error occurred", "error", serviceErr)
	}

	cancelAppCtx()
	log.Info("Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", "error", err)
		}
	}
	postgresDB.Close()

	if serviceErr != nil {
		log.Error("Product Service shutdown with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Product Service shutdown completed successfully")
}
