package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// ErrDLQDisabled is returned when no dead letter topic is configured
var ErrDLQDisabled = errors.New("DLQ producer not initialized")

// DeadLetter is the envelope written to the dead letter topic
type DeadLetter struct {
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	Reason        string `json:"dlq_reason"`
	Source        string `json:"source,omitempty"`
	Timestamp     string `json:"timestamp"`
}

type DLQProducer struct {
	logger   *slog.Logger
	writer   KafkaWriter
	dlqTopic string
	source   string
	now      func() time.Time
}

// NewDLQProducer returns a nil producer when cfg.DLQTopic is empty
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig, source string) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic is not configured, dead letters will be dropped")
		return nil, nil
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for dlq producer: %w", err)
	}
	defer conn.Close()

	if err := createKafkaTopicIfNotExists(conn, cfg.DLQTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure DLQ topic %s exists: %w", cfg.DLQTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.DLQTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return &DLQProducer{
		logger:   logger,
		writer:   writer,
		dlqTopic: cfg.DLQTopic,
		source:   source,
		now:      time.Now,
	}, nil
}

func (p *DLQProducer) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	if p == nil || p.writer == nil {
		return ErrDLQDisabled
	}

	now := time.Now
	if p.now != nil {
		now = p.now
	}

	value, err := json.Marshal(DeadLetter{
		OriginalKey:   key,
		OriginalValue: string(originalMessageValue),
		Reason:        reason,
		Source:        p.source,
		Timestamp:     now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "dlq-reason", Value: []byte(reason)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish dead letter",
			"topic", p.dlqTopic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to DLQ %s: %w", p.dlqTopic, err)
	}

	p.logger.Warn("Published dead letter",
		"topic", p.dlqTopic,
		"key", key,
		"reason", reason,
	)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	p.logger.Info("Closing DLQ Kafka producer", "topic", p.dlqTopic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close dlq kafka writer for topic %s: %w", p.dlqTopic, err)
	}
	return nil
}
