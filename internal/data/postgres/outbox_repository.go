package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/outbox"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// OutboxRepository implements outbox.Repository on the event_outbox table
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create enqueues a PENDING message for the relay
func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	query := `
		INSERT INTO event_outbox (event_id, topic, message_key, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		message.EventID,
		message.Topic,
		message.MessageKey,
		message.Payload,
		message.Status,
		message.Attempts,
		message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return outbox.ErrDuplicateMessage{EventID: message.EventID}
		}
		r.logger.Error("Failed to create outbox message",
			"event_id", message.EventID.String(),
			"topic", message.Topic,
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

// GetPending returns the oldest PENDING messages first
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	query := `
		SELECT id, event_id, topic, message_key, payload, status, attempts, created_at, last_attempt_at
		FROM event_outbox
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, shared.OutboxStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to query pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to query pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*outbox.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			r.logger.Error("Failed to scan outbox message", "error", err)
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}
	return messages, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	query := `
		UPDATE event_outbox
		SET status = $1, last_attempt_at = $2
		WHERE id = $3
	`
	result, err := r.querier.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update outbox status", "id", id, "status", status, "error", err)
		return fmt.Errorf("failed to update outbox message status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	query := `
		UPDATE event_outbox
		SET attempts = attempts + 1, last_attempt_at = $1
		WHERE id = $2
	`
	result, err := r.querier.Exec(ctx, query, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to increment outbox attempts", "id", id, "error", err)
		return fmt.Errorf("failed to increment outbox message attempts: %w", err)
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

// GetByEventID returns nil without error when no message carries eventID
func (r *OutboxRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*outbox.Message, error) {
	query := `
		SELECT id, event_id, topic, message_key, payload, status, attempts, created_at, last_attempt_at
		FROM event_outbox
		WHERE event_id = $1
	`
	msg, err := scanMessage(r.querier.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get outbox message", "event_id", eventID.String(), "error", err)
		return nil, fmt.Errorf("failed to get outbox message by event ID: %w", err)
	}
	return msg, nil
}

func scanMessage(row pgx.Row) (*outbox.Message, error) {
	var msg outbox.Message
	err := row.Scan(
		&msg.ID,
		&msg.EventID,
		&msg.Topic,
		&msg.MessageKey,
		&msg.Payload,
		&msg.Status,
		&msg.Attempts,
		&msg.CreatedAt,
		&msg.LastAttemptAt,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
