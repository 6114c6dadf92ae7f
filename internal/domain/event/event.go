// Package event defines the lifecycle notifications published to the event sink.
package event

import (
	"time"

	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Topic names, one per lifecycle transition
const (
	TopicTransactionCreated   = "transaction-created"
	TopicTransactionCompleted = "transaction-completed"
	TopicTransactionFailed    = "transaction-failed"
	TopicTransferCompleted    = "transfer-completed"
	TopicTransferFailed       = "transfer-failed"
)

// Topics lists every topic the ledger publishes to
func Topics() []string {
	return []string{
		TopicTransactionCreated,
		TopicTransactionCompleted,
		TopicTransactionFailed,
		TopicTransferCompleted,
		TopicTransferFailed,
	}
}

// Type is the event_type carried in the envelope
type Type string

const (
	TypeTransactionCreated   Type = "TRANSACTION_CREATED"
	TypeTransactionCompleted Type = "TRANSACTION_COMPLETED"
	TypeTransactionFailed    Type = "TRANSACTION_FAILED"
	TypeTransferCompleted    Type = "TRANSFER_COMPLETED"
	TypeTransferFailed       Type = "TRANSFER_FAILED"
)

// TransactionEvent carries the full ledger record
type TransactionEvent struct {
	EventID     uuid.UUID                `json:"event_id"`
	EventType   Type                     `json:"event_type"`
	Timestamp   time.Time                `json:"timestamp"`
	Source      string                   `json:"source"`
	Transaction *transaction.Transaction `json:"transaction"`
	Reason      string                   `json:"reason,omitempty"`
}

// Key is the transaction number
func (e *TransactionEvent) Key() string {
	return e.Transaction.TransactionNumber
}

// TransferEvent describes the outcome of a two-leg transfer
type TransferEvent struct {
	EventID               uuid.UUID                `json:"event_id"`
	EventType             Type                     `json:"event_type"`
	Timestamp             time.Time                `json:"timestamp"`
	Source                string                   `json:"source"`
	TransferToken         string                   `json:"transfer_token"`
	TransactionNumber     string                   `json:"transaction_number"`
	TransferType          transfer.Type            `json:"transfer_type,omitempty"`
	State                 transfer.State           `json:"state,omitempty"`
	SourceProductID       *uuid.UUID               `json:"source_product_id,omitempty"`
	SourceCustomerID      string                   `json:"source_customer_id,omitempty"`
	DestinationProductID  *uuid.UUID               `json:"destination_product_id,omitempty"`
	DestinationCustomerID string                   `json:"destination_customer_id,omitempty"`
	Amount                decimal.Decimal          `json:"amount"`
	Description           string                   `json:"description,omitempty"`
	Reason                string                   `json:"reason,omitempty"`
	Debit                 *transaction.Transaction `json:"debit,omitempty"`
	Credit                *transaction.Transaction `json:"credit,omitempty"`
}

// Key is the debit leg's transaction number when known, else the transfer token
func (e *TransferEvent) Key() string {
	if e.TransactionNumber != "" {
		return e.TransactionNumber
	}
	return e.TransferToken
}

// NewTransactionEvent builds an envelope for a single-record transition
func NewTransactionEvent(t Type, source string, tx *transaction.Transaction, reason string, now time.Time) *TransactionEvent {
	return &TransactionEvent{
		EventID:     uuid.New(),
		EventType:   t,
		Timestamp:   now,
		Source:      source,
		Transaction: tx,
		Reason:      reason,
	}
}

// NewTransferEvent builds an envelope from the saga and whatever legs exist
func NewTransferEvent(t Type, source, token string, tr *transfer.Transfer, debit, credit *transaction.Transaction, reason string, now time.Time) *TransferEvent {
	e := &TransferEvent{
		EventID:       uuid.New(),
		EventType:     t,
		Timestamp:     now,
		Source:        source,
		TransferToken: token,
		Reason:        reason,
		Debit:         debit,
		Credit:        credit,
	}
	if debit != nil {
		e.TransactionNumber = debit.TransactionNumber
	}
	if tr != nil {
		src, dst := tr.SourceProductID, tr.DestinationProductID
		e.TransferType = tr.Type
		e.State = tr.State
		e.SourceProductID = &src
		e.SourceCustomerID = tr.SourceCustomerID
		e.DestinationProductID = &dst
		e.DestinationCustomerID = tr.DestinationCustomerID
		e.Amount = tr.Amount
		e.Description = tr.Description
	}
	return e
}
