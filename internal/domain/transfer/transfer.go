package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type distinguishes transfers between a customer's own products from
// transfers to another customer.
type Type string

const (
	TypeOwnAccounts Type = "OWN_ACCOUNTS"
	TypeThirdParty  Type = "THIRD_PARTY"
)

// State is the saga position of a two-leg transfer
type State string

const (
	StatePending      State = "PENDING"
	StateDebited      State = "DEBITED"
	StateCompleted    State = "COMPLETED"
	StateDebitFailed  State = "DEBIT_FAILED"
	StateCreditFailed State = "CREDIT_FAILED"
	StateReversed     State = "REVERSED"
)

var transitions = map[State][]State{
	StatePending:      {StateDebited, StateDebitFailed},
	StateDebited:      {StateCompleted, StateCreditFailed},
	StateCreditFailed: {StateReversed},
}

func (s State) Valid() bool {
	switch s {
	case StatePending, StateDebited, StateCompleted, StateDebitFailed, StateCreditFailed, StateReversed:
		return true
	}
	return false
}

func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateDebitFailed || s == StateReversed
}

// Transfer records the saga that pairs a debit leg and a credit leg
type Transfer struct {
	Token                 string          `json:"transfer_token"`
	Type                  Type            `json:"transfer_type"`
	SourceProductID       uuid.UUID       `json:"source_product_id"`
	SourceCustomerID      string          `json:"source_customer_id"`
	DestinationProductID  uuid.UUID       `json:"destination_product_id"`
	DestinationCustomerID string          `json:"destination_customer_id"`
	Amount                decimal.Decimal `json:"amount"`
	Description           string          `json:"description,omitempty"`
	State                 State           `json:"state"`
	DebitTransactionID    *uuid.UUID      `json:"debit_transaction_id,omitempty"`
	CreditTransactionID   *uuid.UUID      `json:"credit_transaction_id,omitempty"`
	ReversalTransactionID *uuid.UUID      `json:"reversal_transaction_id,omitempty"`
	FailureReason         string          `json:"failure_reason,omitempty"`
	CorrelationID         string          `json:"correlation_id,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// New opens a PENDING saga
func New(token string, t Type, sourceProductID uuid.UUID, sourceCustomerID string, destProductID uuid.UUID, destCustomerID string, amount decimal.Decimal, description, correlationID string, now time.Time) *Transfer {
	return &Transfer{
		Token:                 token,
		Type:                  t,
		SourceProductID:       sourceProductID,
		SourceCustomerID:      sourceCustomerID,
		DestinationProductID:  destProductID,
		DestinationCustomerID: destCustomerID,
		Amount:                amount,
		Description:           description,
		State:                 StatePending,
		CorrelationID:         correlationID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func (t *Transfer) transition(to State, now time.Time) error {
	for _, allowed := range transitions[t.State] {
		if allowed == to {
			t.State = to
			t.UpdatedAt = now
			return nil
		}
	}
	return ErrInvalidStateTransition{Token: t.Token, From: t.State, To: to}
}

// MarkDebited records the completed debit leg
func (t *Transfer) MarkDebited(debitID uuid.UUID, now time.Time) error {
	if err := t.transition(StateDebited, now); err != nil {
		return err
	}
	t.DebitTransactionID = &debitID
	return nil
}

func (t *Transfer) MarkDebitFailed(debitID *uuid.UUID, reason string, now time.Time) error {
	if err := t.transition(StateDebitFailed, now); err != nil {
		return err
	}
	t.DebitTransactionID = debitID
	t.FailureReason = reason
	return nil
}

func (t *Transfer) MarkCompleted(creditID uuid.UUID, now time.Time) error {
	if err := t.transition(StateCompleted, now); err != nil {
		return err
	}
	t.CreditTransactionID = &creditID
	return nil
}

// MarkCreditFailed leaves the saga in the state that requires reversal
func (t *Transfer) MarkCreditFailed(creditID *uuid.UUID, reason string, now time.Time) error {
	if err := t.transition(StateCreditFailed, now); err != nil {
		return err
	}
	t.CreditTransactionID = creditID
	t.FailureReason = reason
	return nil
}

func (t *Transfer) MarkReversed(reversalID uuid.UUID, now time.Time) error {
	if err := t.transition(StateReversed, now); err != nil {
		return err
	}
	t.ReversalTransactionID = &reversalID
	return nil
}

// DebitNumber, CreditNumber and ReversalNumber derive leg transaction numbers from the token
func DebitNumber(token string) string    { return token + "-OUT" }
func CreditNumber(token string) string   { return token + "-IN" }
func ReversalNumber(token string) string { return token + "-REV" }
