package components

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/event"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/finnova-banking-ledger/internal/transaction_processor/service"
)

// EventDispatcher hands an encoded event to its transport: the broker
// directly, or the outbox table for later relay.
type EventDispatcher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// EventSink builds lifecycle envelopes and dispatches them. Failures are
// logged and swallowed so a ledger operation never fails on delivery.
type EventSink struct {
	dispatcher EventDispatcher
	source     string
	now        func() time.Time
	logger     *slog.Logger
}

var _ service.EventSink = (*EventSink)(nil)

func NewEventSink(logger *slog.Logger, dispatcher EventDispatcher, source string) *EventSink {
	return &EventSink{
		dispatcher: dispatcher,
		source:     source,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

func (s *EventSink) TransactionCreated(ctx context.Context, tx *transaction.Transaction) {
	s.transaction(ctx, event.TopicTransactionCreated, event.TypeTransactionCreated, tx, "")
}

func (s *EventSink) TransactionCompleted(ctx context.Context, tx *transaction.Transaction) {
	s.transaction(ctx, event.TopicTransactionCompleted, event.TypeTransactionCompleted, tx, "")
}

func (s *EventSink) TransactionFailed(ctx context.Context, tx *transaction.Transaction, reason string) {
	s.transaction(ctx, event.TopicTransactionFailed, event.TypeTransactionFailed, tx, reason)
}

func (s *EventSink) TransferCompleted(ctx context.Context, tr *transfer.Transfer, debit, credit *transaction.Transaction) {
	e := event.NewTransferEvent(event.TypeTransferCompleted, s.source, tr.Token, tr, debit, credit, "", s.now())
	s.dispatch(ctx, event.TopicTransferCompleted, e.Key(), e)
}

func (s *EventSink) TransferFailed(ctx context.Context, token string, tr *transfer.Transfer, debit, credit *transaction.Transaction, reason string) {
	e := event.NewTransferEvent(event.TypeTransferFailed, s.source, token, tr, debit, credit, reason, s.now())
	s.dispatch(ctx, event.TopicTransferFailed, e.Key(), e)
}

func (s *EventSink) transaction(ctx context.Context, topic string, t event.Type, tx *transaction.Transaction, reason string) {
	e := event.NewTransactionEvent(t, s.source, tx, reason, s.now())
	s.dispatch(ctx, topic, e.Key(), e)
}

func (s *EventSink) dispatch(ctx context.Context, topic, key string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to encode event", "topic", topic, "key", key, "error", err)
		return
	}
	if err := s.dispatcher.Publish(ctx, topic, key, data); err != nil {
		s.logger.Error("Failed to publish event", "topic", topic, "key", key, "error", err)
		return
	}
	s.logger.Debug("Event dispatched", "topic", topic, "key", key)
}
