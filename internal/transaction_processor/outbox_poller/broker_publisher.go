package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finnova-banking-ledger/internal/domain/outbox"
	"github.com/finnova-banking-ledger/internal/domain/shared"
)

// BrokerPublisher relays one outbox message to the broker
type BrokerPublisher interface {
	PublishMessage(ctx context.Context, message *outbox.Message) error
}

// EventWriter is the synchronous broker write used by the relay
type EventWriter interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// BrokerPublisherImpl implements BrokerPublisher
type BrokerPublisherImpl struct {
	outboxRepo outbox.Repository
	writer     EventWriter
	logger     *slog.Logger
}

func NewBrokerPublisher(outboxRepo outbox.Repository, writer EventWriter, logger *slog.Logger) BrokerPublisher {
	return &BrokerPublisherImpl{
		outboxRepo: outboxRepo,
		writer:     writer,
		logger:     logger,
	}
}

// PublishMessage writes the message and marks it PROCESSED. A message that
// reached the broker but could not be marked is delivered again on the next
// tick; consumers see event_id duplicates in that case.
func (p *BrokerPublisherImpl) PublishMessage(ctx context.Context, message *outbox.Message) error {
	if err := p.writer.Publish(ctx, message.Topic, message.MessageKey, message.Payload); err != nil {
		return fmt.Errorf("failed to publish outbox message %d to %s: %w", message.ID, message.Topic, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		p.logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		return fmt.Errorf("published outbox %d, but failed to mark it PROCESSED: %w", message.ID, err)
	}

	p.logger.Debug("Outbox message published", "outbox_id", message.ID, "topic", message.Topic, "key", message.MessageKey)
	return nil
}
