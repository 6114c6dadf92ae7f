// Package config loads and validates settings for the ledger binaries.
// Both the transaction service and the product service read the same
// structure; each binary uses the sections it needs.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Application    ApplicationConfig
	Logging        LoggingConfig
	Server         ServerConfig
	Kafka          KafkaConfig
	Postgres       PostgresConfig
	MongoDB        MongoDBConfig
	Redis          RedisConfig
	Outbox         OutboxConfig
	WorkerPool     WorkerPoolConfig
	AccountService AccountServiceConfig
	Events         EventsConfig
	Saga           SagaConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig contains broker settings for the event topics
type KafkaConfig struct {
	Brokers           string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig contains the ledger store connection settings
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains the product snapshot cache settings.
// An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// OutboxConfig contains outbox relay configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int
}

// AccountServiceConfig contains the product service client settings
type AccountServiceConfig struct {
	BaseURL                 string
	Timeout                 time.Duration // per call
	BreakerMaxRequests      uint32        // probes allowed while half-open
	BreakerInterval         time.Duration // closed-state counter reset period
	BreakerTimeout          time.Duration // open-state duration before half-open
	BreakerFailureThreshold uint32        // consecutive failures that trip the breaker
}

// EventsConfig selects how lifecycle events reach the broker
type EventsConfig struct {
	DeliveryMode string // "outbox" or "direct"
	Source       string
}

const (
	DeliveryModeOutbox = "outbox"
	DeliveryModeDirect = "direct"
)

// SagaConfig controls transfer saga handling
type SagaConfig struct {
	AutoReverse bool
	ListLimit   int
}

// validate collects every violation so operators see them in one pass
func (c *Config) validate() error {
	var validationErrors []string

	// Server
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.NumPartitions <= 0 {
		validationErrors = append(validationErrors, "KAFKA_NUM_PARTITIONS must be greater than 0")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// PostgreSQL
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// MongoDB
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}

	// Redis
	if c.Redis.Addr != "" && c.Redis.TTL <= 0 {
		validationErrors = append(validationErrors, "REDIS_TTL must be greater than 0 when REDIS_ADDR is set")
	}

	// Outbox
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Account service client
	if c.AccountService.BaseURL == "" {
		validationErrors = append(validationErrors, "ACCOUNT_SERVICE_BASE_URL is required")
	}
	if c.AccountService.Timeout <= 0 {
		validationErrors = append(validationErrors, "ACCOUNT_SERVICE_TIMEOUT must be greater than 0")
	}
	if c.AccountService.BreakerFailureThreshold == 0 {
		validationErrors = append(validationErrors, "ACCOUNT_SERVICE_BREAKER_FAILURE_THRESHOLD must be greater than 0")
	}

	// Events
	if c.Events.DeliveryMode != DeliveryModeOutbox && c.Events.DeliveryMode != DeliveryModeDirect {
		validationErrors = append(validationErrors, "EVENTS_DELIVERY_MODE must be one of: outbox, direct")
	}
	if c.Events.Source == "" {
		validationErrors = append(validationErrors, "EVENTS_SOURCE is required")
	}

	if c.Saga.ListLimit <= 0 {
		validationErrors = append(validationErrors, "SAGA_LIST_LIMIT must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
