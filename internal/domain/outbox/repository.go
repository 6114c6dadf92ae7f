package outbox

import (
	"context"
	"strconv"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages outbox message persistence
type Repository interface {
	Create(ctx context.Context, message *Message) error
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error
	IncrementAttempts(ctx context.Context, id int64) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*Message, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrMessageNotFound indicates missing outbox message
type ErrMessageNotFound struct {
	ID int64
}

func (e ErrMessageNotFound) Error() string {
	return "outbox message not found: " + strconv.FormatInt(e.ID, 10)
}

// ErrDuplicateMessage indicates an event was enqueued twice
type ErrDuplicateMessage struct {
	EventID uuid.UUID
}

func (e ErrDuplicateMessage) Error() string {
	return "duplicate outbox message: " + e.EventID.String()
}
