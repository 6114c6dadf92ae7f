package transaction

import (
	"context"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository is the Ledger Store contract
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	Update(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetByNumber(ctx context.Context, number string) (*Transaction, error)
	GetAll(ctx context.Context, limit, offset int) ([]*Transaction, error)
	CountAll(ctx context.Context) (int64, error)
	GetByProductID(ctx context.Context, productID uuid.UUID) ([]*Transaction, error)
	GetByCustomerID(ctx context.Context, customerID string) ([]*Transaction, error)
	GetLatestByProductID(ctx context.Context, productID uuid.UUID, limit int) ([]*Transaction, error)
	GetByTransferToken(ctx context.Context, token string) ([]*Transaction, error)

	// CountCompletedInRange counts COMPLETED records of the given types for a
	// product whose transaction date falls within [from, to].
	CountCompletedInRange(ctx context.Context, productID uuid.UUID, types []shared.TransactionType, from, to time.Time) (int64, error)
}
