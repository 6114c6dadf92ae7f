package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/finnova-banking-ledger/internal/data/mongo"
	"github.com/finnova-banking-ledger/internal/data/postgres"
	"github.com/finnova-banking-ledger/internal/domain/event"
	"github.com/finnova-banking-ledger/internal/logger"
	"github.com/finnova-banking-ledger/internal/platform/httpserver"
	"github.com/finnova-banking-ledger/internal/platform/messaging/consumers"
	"github.com/finnova-banking-ledger/internal/platform/messaging/producers"
	"github.com/finnova-banking-ledger/internal/platform/persistence"
	"github.com/finnova-banking-ledger/internal/transaction_api"
	"github.com/finnova-banking-ledger/internal/transaction_api/handler"
	"github.com/finnova-banking-ledger/internal/transaction_processor/components"
	"github.com/finnova-banking-ledger/internal/transaction_processor/consumer"
	"github.com/finnova-banking-ledger/internal/transaction_processor/outbox_poller"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("transaction_service")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Transaction Service",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"delivery_mode", cfg.Events.DeliveryMode,
	)

	version, err := persistence.RunMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath)
	if err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("Outbox schema is up to date", "version", version)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Repositories
	ledgerRepo := mongo.NewTransactionRepository(log, mongoDB.Database())
	sagaRepo := mongo.NewTransferRepository(log, mongoDB.Database())
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)

	if err := ledgerRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create ledger indexes", "error", err)
		os.Exit(1)
	}
	if err := sagaRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create transfer indexes", "error", err)
		os.Exit(1)
	}

	// The relay needs broker acknowledgement before it marks a row processed
	relayProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka, event.Topics(), false)
	if err != nil {
		log.Error("Failed to initialize event producer", "error", err)
		os.Exit(1)
	}

	var directProducer *producers.EventProducer
	var direct components.EventDispatcher
	if cfg.Events.DeliveryMode == config.DeliveryModeDirect {
		directProducer, err = producers.NewEventProducer(appCtx, log, &cfg.Kafka, event.Topics(), true)
		if err != nil {
			log.Error("Failed to initialize direct event producer", "error", err)
			os.Exit(1)
		}
		direct = directProducer
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka, cfg.Events.Source)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	// Ledger core
	dispatcher := components.CreateEventDispatcher(cfg, outboxRepo, direct, log)
	events := components.NewEventSink(log.With("component", "event_sink"), dispatcher, cfg.Events.Source)
	accounts := components.NewAccountClient(log.With("component", "account_client"), cfg.AccountService, nil)
	core := components.CreateLedgerCore(ledgerRepo, sagaRepo, accounts, events, log, cfg)

	// Outbox relay and transfer-failed consumer
	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		outboxRepo,
		outbox_poller.NewBrokerPublisher(outboxRepo, relayProducer, log),
		dlqProducer,
		log.With("component", "outbox_poller"),
	)
	transferFailedConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka, event.TopicTransferFailed)
	transferEventHandler := consumer.NewTransferEventHandler(
		log.With("component", "transfer_event_handler"),
		core.Transfers,
		dlqProducer,
		cfg.Saga.AutoReverse,
	)

	// HTTP API
	server := httpserver.NewServer(log, cfg, map[string]httpserver.HealthCheck{
		"postgres": postgresDB.Ping,
		"mongodb":  mongoDB.Ping,
	})
	transaction_api.RegisterRoutes(
		server.Router(),
		handler.NewTransactionHandler(log, core.Processor, core.Queries, core.Transfers),
		handler.NewTransferHandler(log, core.Transfers),
	)

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	if err := transferFailedConsumer.Subscribe(appCtx, transferEventHandler.HandleMessage); err != nil {
		errChan <- fmt.Errorf("kafka consumer error: %w", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case serviceErr = <-errChan:
		log.Error("Service error occurred", "error", serviceErr)
	}

	log.Info("Starting graceful shutdown...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Drain HTTP first so in-flight operations can still publish
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", "error", err)
	}
	cancelAppCtx()
	core.Shutdown()

	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()
	select {
	case <-wgChan:
		log.Info("All background workers stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err := transferFailedConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}
	if directProducer != nil {
		if err := directProducer.Close(); err != nil {
			log.Error("Error closing direct event producer", "error", err)
		}
	}
	if err := relayProducer.Close(); err != nil {
		log.Error("Error closing event producer", "error", err)
	}
	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}

	postgresDB.Close()
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serviceErr != nil {
		log.Error("Transaction Service shutdown with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Transaction Service shutdown completed successfully")
}
