package transfer

import (
	"context"
	"fmt"
)

// Repository persists transfer sagas
type Repository interface {
	Create(ctx context.Context, t *Transfer) error
	Update(ctx context.Context, t *Transfer) error
	GetByToken(ctx context.Context, token string) (*Transfer, error)
	ListByState(ctx context.Context, state State, limit int) ([]*Transfer, error)
}

// ErrTransferNotFound indicates a missing saga
type ErrTransferNotFound struct {
	Token string
}

func (e ErrTransferNotFound) Error() string {
	return "transfer not found: " + e.Token
}

func (e ErrTransferNotFound) Is(target error) bool {
	t, ok := target.(ErrTransferNotFound)
	if !ok {
		return false
	}
	return t.Token == "" || t.Token == e.Token
}

// ErrInvalidStateTransition indicates a saga step out of order
type ErrInvalidStateTransition struct {
	Token string
	From  State
	To    State
}

func (e ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("transfer %s cannot move from %s to %s", e.Token, e.From, e.To)
}

func (e ErrInvalidStateTransition) Is(target error) bool {
	_, ok := target.(ErrInvalidStateTransition)
	return ok
}

// ErrLegFailed wraps the failure of one transfer leg
type ErrLegFailed struct {
	Token string
	Leg   string
	Err   error
}

func (e ErrLegFailed) Error() string {
	return fmt.Sprintf("transfer %s %s leg failed: %v", e.Token, e.Leg, e.Err)
}

func (e ErrLegFailed) Unwrap() error {
	return e.Err
}

// ErrReversalInProgress reports a reversal leg that has not settled yet
type ErrReversalInProgress struct {
	Token             string
	TransactionNumber string
}

func (e ErrReversalInProgress) Error() string {
	return fmt.Sprintf("transfer %s reversal %s is still pending", e.Token, e.TransactionNumber)
}

func (e ErrReversalInProgress) Is(target error) bool {
	_, ok := target.(ErrReversalInProgress)
	return ok
}
