package transaction

import (
	"strings"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the atomic ledger record for a single balance movement
type Transaction struct {
	ID                    uuid.UUID                `json:"id"`
	TransactionNumber     string                   `json:"transaction_number"`
	CustomerID            string                   `json:"customer_id"`
	ProductID             uuid.UUID                `json:"product_id"`
	ProductType           shared.ProductType       `json:"product_type"`
	TransactionType       shared.TransactionType   `json:"transaction_type"`
	Amount                decimal.Decimal          `json:"amount"`
	BalanceBefore         decimal.Decimal          `json:"balance_before"`
	BalanceAfter          decimal.Decimal          `json:"balance_after"`
	Commission            decimal.Decimal          `json:"commission"`
	DestinationProductID  *uuid.UUID               `json:"destination_product_id,omitempty"`
	DestinationCustomerID string                   `json:"destination_customer_id,omitempty"`
	TransferToken         string                   `json:"transfer_token,omitempty"`
	Description           string                   `json:"description,omitempty"`
	Status                shared.TransactionStatus `json:"status"`
	CorrelationID         string                   `json:"correlation_id,omitempty"`
	TransactionDate       time.Time                `json:"transaction_date"`
	CreatedAt             time.Time                `json:"created_at"`
	UpdatedAt             time.Time                `json:"updated_at"`
}

// Params carries the inputs needed to open a PENDING record
type Params struct {
	CustomerID            string
	ProductID             uuid.UUID
	ProductType           shared.ProductType
	TransactionType       shared.TransactionType
	Amount                decimal.Decimal
	BalanceBefore         decimal.Decimal
	Commission            decimal.Decimal
	DestinationProductID  *uuid.UUID
	DestinationCustomerID string
	TransferToken         string
	Number                string // optional, generated from the type prefix when empty
	Description           string
	CorrelationID         string
}

// New validates the parameters and builds a PENDING record whose balanceAfter
// follows the sign convention of the transaction type.
func New(p Params, now time.Time) (*Transaction, error) {
	if !p.TransactionType.Valid() {
		return nil, shared.Invalid("Unsupported transaction type: %s", p.TransactionType)
	}
	if !p.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if p.Commission.IsNegative() {
		return nil, ErrNegativeCommission
	}

	number := p.Number
	if number == "" {
		number = NewNumber(p.TransactionType)
	}

	return &Transaction{
		ID:                    uuid.New(),
		TransactionNumber:     number,
		CustomerID:            p.CustomerID,
		ProductID:             p.ProductID,
		ProductType:           p.ProductType,
		TransactionType:       p.TransactionType,
		Amount:                p.Amount,
		BalanceBefore:         p.BalanceBefore,
		BalanceAfter:          ApplySign(p.TransactionType, p.BalanceBefore, p.Amount, p.Commission),
		Commission:            p.Commission,
		DestinationProductID:  p.DestinationProductID,
		DestinationCustomerID: p.DestinationCustomerID,
		TransferToken:         p.TransferToken,
		Description:           p.Description,
		Status:                shared.TransactionStatusPending,
		CorrelationID:         p.CorrelationID,
		TransactionDate:       now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// ApplySign returns before ± (amount + commission) for the given type
func ApplySign(t shared.TransactionType, before, amount, commission decimal.Decimal) decimal.Decimal {
	total := amount.Add(commission)
	if t.Sign() < 0 {
		return before.Sub(total)
	}
	return before.Add(total)
}

// NewNumber builds a human-facing number of the form PREFIX-XXXXXXXX
func NewNumber(t shared.TransactionType) string {
	return t.Prefix() + "-" + randomHex()
}

// NewTransferToken builds the correlation token shared by transfer legs
func NewTransferToken() string {
	return "TRF-" + randomHex()
}

func randomHex() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Complete moves a PENDING record to COMPLETED
func (t *Transaction) Complete(now time.Time) error {
	if t.Status != shared.TransactionStatusPending {
		return ErrInvalidStatusTransition{From: t.Status, To: shared.TransactionStatusCompleted}
	}
	t.Status = shared.TransactionStatusCompleted
	t.UpdatedAt = now
	return nil
}

// Fail moves a PENDING record to FAILED and appends the reason to the description
func (t *Transaction) Fail(reason string, now time.Time) error {
	if t.Status != shared.TransactionStatusPending {
		return ErrInvalidStatusTransition{From: t.Status, To: shared.TransactionStatusFailed}
	}
	t.Status = shared.TransactionStatusFailed
	if reason != "" {
		t.Description = t.Description + " - Error: " + reason
	}
	t.UpdatedAt = now
	return nil
}

func (t *Transaction) IsTerminal() bool {
	return t.Status == shared.TransactionStatusCompleted || t.Status == shared.TransactionStatusFailed
}

// Correct applies an administrative correction. The description may always
// change; status may only move out of PENDING.
func (t *Transaction) Correct(description *string, status *shared.TransactionStatus, now time.Time) error {
	if status != nil && *status != t.Status {
		if !status.Valid() {
			return shared.Invalid("Invalid transaction status: %s", *status)
		}
		if t.IsTerminal() {
			return ErrInvalidStatusTransition{From: t.Status, To: *status}
		}
		t.Status = *status
	}
	if description != nil {
		t.Description = *description
	}
	t.UpdatedAt = now
	return nil
}

// CanDelete reports whether the record may be removed
func (t *Transaction) CanDelete() error {
	if t.Status == shared.TransactionStatusCompleted {
		return shared.Invalid("Cannot delete completed transactions")
	}
	return nil
}
