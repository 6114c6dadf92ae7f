package components

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finnova-banking-ledger/internal/domain/outbox"
	"github.com/google/uuid"
)

// OutboxDispatcher stores events in the outbox table; the poller relays them
// to the broker.
type OutboxDispatcher struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

var _ EventDispatcher = (*OutboxDispatcher)(nil)

func NewOutboxDispatcher(outboxRepo outbox.Repository, logger *slog.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Publish enqueues payload once per event_id. A payload without an event_id
// gets a fresh outbox id.
func (d *OutboxDispatcher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	msg := outbox.NewMessage(topic, key, payload)
	if id, ok := payloadEventID(payload); ok {
		msg.EventID = id
		existing, err := d.outboxRepo.GetByEventID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to look up outbox message for %s: %w", key, err)
		}
		if existing != nil {
			d.logger.Debug("Event already enqueued",
				"outbox_id", existing.ID,
				"event_id", id,
				"topic", topic)
			return nil
		}
	}

	if err := d.outboxRepo.Create(ctx, msg); err != nil {
		var dup outbox.ErrDuplicateMessage
		if errors.As(err, &dup) {
			d.logger.Debug("Event already enqueued", "event_id", dup.EventID, "topic", topic)
			return nil
		}
		return fmt.Errorf("failed to create outbox message for %s: %w", key, err)
	}
	d.logger.Debug("Outbox message created",
		"outbox_id", msg.ID,
		"event_id", msg.EventID,
		"topic", topic)
	return nil
}

func payloadEventID(payload []byte) (uuid.UUID, bool) {
	var envelope struct {
		EventID uuid.UUID `json:"event_id"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.EventID == uuid.Nil {
		return uuid.Nil, false
	}
	return envelope.EventID, true
}
