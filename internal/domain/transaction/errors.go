package transaction

import (
	"fmt"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrNonPositiveAmount  = shared.ErrInvalidTransaction{Reason: "Amount must be positive"}
	ErrNegativeCommission = shared.ErrInvalidTransaction{Reason: "Commission cannot be negative"}
)

// ErrTransactionNotFound indicates a missing ledger record
type ErrTransactionNotFound struct {
	ID     uuid.UUID
	Number string
}

func (e ErrTransactionNotFound) Error() string {
	if e.Number != "" {
		return "transaction not found: " + e.Number
	}
	return "transaction not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil && t.Number == "" {
		return true
	}
	return e.ID == t.ID && e.Number == t.Number
}

// ErrDuplicateTransactionNumber indicates a transaction number collision
type ErrDuplicateTransactionNumber struct {
	Number string
}

func (e ErrDuplicateTransactionNumber) Error() string {
	return "duplicate transaction number: " + e.Number
}

func (e ErrDuplicateTransactionNumber) Is(target error) bool {
	_, ok := target.(ErrDuplicateTransactionNumber)
	return ok
}

// ErrInvalidStatusTransition indicates an attempt to leave a terminal status
type ErrInvalidStatusTransition struct {
	From shared.TransactionStatus
	To   shared.TransactionStatus
}

func (e ErrInvalidStatusTransition) Error() string {
	return fmt.Sprintf("invalid transaction status transition from %s to %s", e.From, e.To)
}

func (e ErrInvalidStatusTransition) Is(target error) bool {
	_, ok := target.(ErrInvalidStatusTransition)
	return ok
}
