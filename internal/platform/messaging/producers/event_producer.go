package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// EventProducer publishes lifecycle events. The writer carries no default
// topic; every message names its own.
type EventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	async  bool
}

// NewEventProducer ensures every topic exists before returning. Async
// producers acknowledge immediately and report delivery failures through the
// completion callback only, so the outbox relay must use a synchronous one.
func NewEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig, topics []string, async bool) (*EventProducer, error) {
	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for event producer: %w", err)
	}
	defer conn.Close()

	for _, topic := range topics {
		if err := createKafkaTopicIfNotExists(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
			return nil, fmt.Errorf("failed to ensure event topic %s exists: %w", topic, err)
		}
	}

	acks := kafka.RequireAll
	if async {
		acks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Balancer:     &kafka.Hash{},
		RequiredAcks: acks,
		Async:        async,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write event messages", "error", err, "count", len(messages), "async", async)
				return
			}
			logger.Debug("Wrote event messages", "count", len(messages), "async", async)
		},
	}

	return &EventProducer{logger: logger, writer: writer, async: async}, nil
}

func (p *EventProducer) Publish(ctx context.Context, topic, key string, payload []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			"topic", topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish event to %s: %w", topic, err)
	}

	p.logger.Debug("Published event", "topic", topic, "key", key)
	return nil
}

func (p *EventProducer) Close() error {
	p.logger.Info("Closing Kafka event producer", "async", p.async)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close event kafka writer: %w", err)
	}
	return nil
}
