package service

import (
	"context"
	"errors"

	"github.com/finnova-banking-ledger/internal/domain/product"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionProcessor runs the single-leg operations
type TransactionProcessor interface {
	Deposit(ctx context.Context, req DepositRequest) (*transaction.Transaction, error)
	Withdrawal(ctx context.Context, req WithdrawalRequest) (*transaction.Transaction, error)
	Payment(ctx context.Context, req PaymentRequest) (*transaction.Transaction, error)
	CreditCharge(ctx context.Context, req CreditChargeRequest) (*transaction.Transaction, error)
}

// LegExecutor persists a prepared PENDING record, applies it remotely and
// finalizes it. The returned record is terminal whenever it is non-nil.
type LegExecutor interface {
	ExecuteLeg(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error)
}

// AccountClient talks to the balance-owning product service
type AccountClient interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, update product.BalanceUpdate) (*product.Product, error)
}

// EventSink publishes lifecycle notifications. Delivery problems are logged
// by the sink and never reach the caller.
type EventSink interface {
	TransactionCreated(ctx context.Context, tx *transaction.Transaction)
	TransactionCompleted(ctx context.Context, tx *transaction.Transaction)
	TransactionFailed(ctx context.Context, tx *transaction.Transaction, reason string)
	TransferCompleted(ctx context.Context, tr *transfer.Transfer, debit, credit *transaction.Transaction)
	TransferFailed(ctx context.Context, token string, tr *transfer.Transfer, debit, credit *transaction.Transaction, reason string)
}

type DepositRequest struct {
	ProductID     uuid.UUID
	Amount        decimal.Decimal
	Description   string
	CorrelationID string
}

type WithdrawalRequest struct {
	ProductID     uuid.UUID
	Amount        decimal.Decimal
	Description   string
	CorrelationID string
}

// PaymentRequest pays down an active product. PayerCustomerID defaults to
// the product owner.
type PaymentRequest struct {
	ProductID       uuid.UUID
	Amount          decimal.Decimal
	PayerCustomerID string
	Description     string
	CorrelationID   string
}

type CreditChargeRequest struct {
	CreditCardID  uuid.UUID
	Amount        decimal.Decimal
	MerchantName  string
	Description   string
	CorrelationID string
}

// ErrAccountServiceUnavailable is returned when the product service cannot be
// reached, times out, or the client's breaker is open.
var ErrAccountServiceUnavailable = errors.New("account service unavailable")
