// Package consumer reacts to transfer-failed events.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finnova-banking-ledger/internal/domain/event"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/finnova-banking-ledger/internal/platform/messaging/producers"
	"github.com/finnova-banking-ledger/internal/transaction_processor/saga"
)

// Reverser compensates a transfer whose credit leg failed
type Reverser interface {
	Reverse(ctx context.Context, token string) (*saga.TransferResult, error)
}

// TransferEventHandler handles transfer-failed events. With auto-reverse on,
// sagas left in CREDIT_FAILED are credited back to their source.
type TransferEventHandler struct {
	reverser    Reverser
	producer    producers.DeadLetterPublisher
	autoReverse bool
	logger      *slog.Logger
}

func NewTransferEventHandler(
	logger *slog.Logger,
	reverser Reverser,
	producer producers.DeadLetterPublisher,
	autoReverse bool,
) *TransferEventHandler {
	return &TransferEventHandler{
		reverser:    reverser,
		producer:    producer,
		autoReverse: autoReverse,
		logger:      logger,
	}
}

// HandleMessage processes one transfer-failed message
func (h *TransferEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var evt event.TransferEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal transfer event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key))
				return nil
			}
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger.With("transfer_token", evt.TransferToken, "state", evt.State)
	logger.Info("Received transfer failure", "reason", evt.Reason)

	if !h.autoReverse || evt.State != transfer.StateCreditFailed {
		return nil
	}

	result, err := h.reverser.Reverse(ctx, evt.TransferToken)
	switch {
	case err == nil:
		logger.Info("Transfer reversed automatically",
			"reversal_transaction_number", result.Reversal.TransactionNumber)
		return nil
	case errors.Is(err, transfer.ErrTransferNotFound{}), errors.Is(err, transfer.ErrInvalidStateTransition{}):
		// Already reversed or never persisted; nothing left to do.
		logger.Info("Skipping reversal", "error", err)
		return nil
	default:
		logger.Error("Automatic reversal failed", "error", err)
		return fmt.Errorf("reversing transfer %s failed: %w", evt.TransferToken, err)
	}
}
