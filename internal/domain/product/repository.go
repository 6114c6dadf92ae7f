package product

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines product persistence operations
type Repository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Product, error)
	Update(ctx context.Context, product *Product) error

	// LockForUpdate acquires a row lock so invariants are checked against the live value
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrInvalidOperation indicates a mutation the product's rules reject
type ErrInvalidOperation struct {
	Reason string
}

func (e ErrInvalidOperation) Error() string {
	return e.Reason
}

func (e ErrInvalidOperation) Is(target error) bool {
	_, ok := target.(ErrInvalidOperation)
	return ok
}

// ErrConcurrentModification indicates the row changed between read and write
type ErrConcurrentModification struct {
	ProductID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for product: " + e.ProductID.String()
}

func (e ErrConcurrentModification) Is(target error) bool {
	t, ok := target.(ErrConcurrentModification)
	if !ok {
		return false
	}
	return t.ProductID == uuid.Nil || t.ProductID == e.ProductID
}
