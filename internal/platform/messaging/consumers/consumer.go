package consumers

import (
	"context"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// MessageReader is the subset of kafka.Reader the consumer loop needs
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer implements Consumer for a single topic and consumer group
type KafkaConsumer struct {
	reader     MessageReader
	logger     *slog.Logger
	topic      string
	groupID    string
	retryDelay time.Duration
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig, topic string) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}

	return &KafkaConsumer{
		logger:     logger,
		topic:      topic,
		groupID:    cfg.ConsumerGroup,
		retryDelay: time.Second,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Brokers},
			Topic:       topic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
	}
}

// Subscribe starts the fetch loop in the background. Offsets are committed
// only after the handler succeeds.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Subscribed to Kafka topic",
		"topic", c.topic,
		"group_id", c.groupID,
	)

	go c.run(ctx, handler)
	return nil
}

func (c *KafkaConsumer) run(ctx context.Context, handler MessageHandler) {
	for {
		if ctx.Err() != nil {
			c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
			return
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to fetch message from Kafka",
				"topic", c.topic,
				"group_id", c.groupID,
				"error", err,
			)
			time.Sleep(c.retryDelay)
			continue
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			c.logger.Error("Failed to process message, will not commit offset",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"key", string(msg.Key),
				"error", err,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit message after successful processing",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"key", string(msg.Key),
				"error", err,
			)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
