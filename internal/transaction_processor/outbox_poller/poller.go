// Package outbox_poller relays outbox rows to the broker.
package outbox_poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/finnova-banking-ledger/internal/domain/outbox"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/platform/messaging/producers"
	"github.com/finnova-banking-ledger/internal/platform/metrics"
)

// Poller processes pending outbox messages
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        BrokerPublisher
	dlq              producers.DeadLetterPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher BrokerPublisher,
	dlq producers.DeadLetterPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		dlq:              dlq,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Outbox Poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox Poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		logger := p.logger.With("outbox_id", msg.ID, "topic", msg.Topic, "key", msg.MessageKey)
		if correlationID := correlationIDOf(msg.Payload); correlationID != "" {
			logger = logger.With("correlation_id", correlationID)
		}

		if err := p.publisher.PublishMessage(ctx, msg); err != nil {
			p.handleFailure(ctx, logger, msg, err)
			continue
		}
		metrics.OutboxResult(metrics.OutboxPublished)
	}
	return nil
}

func (p *Poller) handleFailure(ctx context.Context, logger *slog.Logger, msg *outbox.Message, cause error) {
	logger.Error("Failed to relay outbox message", "current_attempts", msg.Attempts, "error", cause)

	if err := p.outboxRepo.IncrementAttempts(ctx, msg.ID); err != nil {
		logger.Error("Failed to increment attempts for outbox message", "error", err)
		return
	}

	if !msg.Exhausted(p.maxRetryAttempts) {
		metrics.OutboxResult(metrics.OutboxRetried)
		return
	}

	logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH",
		"attempts_made", msg.Attempts+1)
	if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); err != nil {
		logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH after max retries", "error", err)
	}
	if p.dlq != nil {
		if err := p.dlq.PublishToDLQ(ctx, msg.MessageKey, msg.Payload, cause.Error()); err != nil {
			logger.Error("Failed to copy exhausted outbox message to DLQ", "error", err)
		}
	}
	metrics.OutboxResult(metrics.OutboxDeadLetter)
}

// correlationIDOf digs the correlation id out of a transaction envelope
func correlationIDOf(payload []byte) string {
	var env struct {
		Transaction *struct {
			CorrelationID string `json:"correlation_id"`
		} `json:"transaction"`
	}
	if err := json.Unmarshal(payload, &env); err != nil || env.Transaction == nil {
		return ""
	}
	return env.Transaction.CorrelationID
}
