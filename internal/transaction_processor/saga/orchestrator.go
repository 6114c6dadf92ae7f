// Package saga runs two-leg transfers as an explicit saga on top of the
// single-leg ledger pipeline.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/product"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/finnova-banking-ledger/internal/platform/metrics"
	"github.com/finnova-banking-ledger/internal/transaction_processor/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	legDebit    = "debit"
	legCredit   = "credit"
	legReversal = "reversal"
)

type TransferRequest struct {
	SourceProductID      uuid.UUID
	DestinationProductID uuid.UUID
	Amount               decimal.Decimal
	Description          string
	CorrelationID        string
}

// TransferResult is a saga together with the ledger records of its legs
type TransferResult struct {
	Transfer *transfer.Transfer       `json:"transfer"`
	Debit    *transaction.Transaction `json:"debit,omitempty"`
	Credit   *transaction.Transaction `json:"credit,omitempty"`
	Reversal *transaction.Transaction `json:"reversal,omitempty"`
}

type Orchestrator struct {
	accounts  service.AccountClient
	legs      service.LegExecutor
	ledger    transaction.Repository
	sagas     transfer.Repository
	events    service.EventSink
	listLimit int
	now       func() time.Time
	logger    *slog.Logger
}

func NewOrchestrator(
	logger *slog.Logger,
	accounts service.AccountClient,
	legs service.LegExecutor,
	ledger transaction.Repository,
	sagas transfer.Repository,
	events service.EventSink,
	listLimit int,
) *Orchestrator {
	return &Orchestrator{
		accounts:  accounts,
		legs:      legs,
		ledger:    ledger,
		sagas:     sagas,
		events:    events,
		listLimit: listLimit,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

func (o *Orchestrator) TransferOwnAccounts(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	return o.transfer(ctx, transfer.TypeOwnAccounts, req)
}

func (o *Orchestrator) TransferThirdParty(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	return o.transfer(ctx, transfer.TypeThirdParty, req)
}

func (o *Orchestrator) transfer(ctx context.Context, kind transfer.Type, req TransferRequest) (*TransferResult, error) {
	token := transaction.NewTransferToken()
	logger := o.logger.With("transfer_token", token, "transfer_type", kind)
	if req.CorrelationID != "" {
		logger = logger.With("correlation_id", req.CorrelationID)
	}
	logger.Info("Processing transfer",
		"source_product_id", req.SourceProductID,
		"destination_product_id", req.DestinationProductID)

	source, dest, err := o.validate(ctx, kind, req)
	if err != nil {
		logger.Warn("Transfer rejected", "error", err)
		o.events.TransferFailed(ctx, token, nil, nil, nil, err.Error())
		metrics.TransferSettled(string(kind), "REJECTED")
		return nil, err
	}

	saga := transfer.New(token, kind,
		source.ID, source.CustomerID,
		dest.ID, dest.CustomerID,
		req.Amount, req.Description, req.CorrelationID, o.now())
	if err := o.sagas.Create(ctx, saga); err != nil {
		logger.Error("Failed to persist transfer saga", "error", err)
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	// Legs run to completion once the saga exists.
	ctx = context.WithoutCancel(ctx)
	result := &TransferResult{Transfer: saga}

	debit, err := o.buildLeg(saga, source, dest, shared.TransactionTypeTransferOut, transfer.DebitNumber(token))
	if err == nil {
		debit, err = o.legs.ExecuteLeg(ctx, debit)
	}
	result.Debit = debit
	if err != nil {
		reason := err.Error()
		o.advance(ctx, logger, saga, saga.MarkDebitFailed(legID(debit), reason, o.now()))
		o.events.TransferFailed(ctx, token, saga, debit, nil, reason)
		metrics.TransferSettled(string(kind), string(saga.State))
		logger.Warn("Transfer debit leg failed", "error", err)
		return result, transfer.ErrLegFailed{Token: token, Leg: legDebit, Err: err}
	}
	o.advance(ctx, logger, saga, saga.MarkDebited(debit.ID, o.now()))

	credit, err := o.buildLeg(saga, dest, source, shared.TransactionTypeTransferIn, transfer.CreditNumber(token))
	if err == nil {
		credit, err = o.legs.ExecuteLeg(ctx, credit)
	}
	result.Credit = credit
	if err != nil {
		reason := err.Error()
		o.advance(ctx, logger, saga, saga.MarkCreditFailed(legID(credit), reason, o.now()))
		o.events.TransferFailed(ctx, token, saga, debit, credit, reason)
		metrics.TransferSettled(string(kind), string(saga.State))
		logger.Error("Transfer credit leg failed after debit completed",
			"error", err,
			"debit_transaction_number", debit.TransactionNumber,
			"requires_reversal", true)
		return result, transfer.ErrLegFailed{Token: token, Leg: legCredit, Err: err}
	}
	o.advance(ctx, logger, saga, saga.MarkCompleted(credit.ID, o.now()))

	o.events.TransferCompleted(ctx, saga, debit, credit)
	metrics.TransferSettled(string(kind), string(saga.State))
	logger.Info("Transfer completed", "amount", req.Amount)
	return result, nil
}

// validate fetches both snapshots concurrently and applies the pre-checks
func (o *Orchestrator) validate(ctx context.Context, kind transfer.Type, req TransferRequest) (*product.Product, *product.Product, error) {
	if !req.Amount.IsPositive() {
		return nil, nil, transaction.ErrNonPositiveAmount
	}

	var source, dest *product.Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := o.accounts.GetProduct(gctx, req.SourceProductID)
		if err != nil {
			return notFoundAs(err, req.SourceProductID, "Source product not found")
		}
		source = p
		return nil
	})
	g.Go(func() error {
		p, err := o.accounts.GetProduct(gctx, req.DestinationProductID)
		if err != nil {
			return notFoundAs(err, req.DestinationProductID, "Destination product not found")
		}
		dest = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if req.SourceProductID == req.DestinationProductID {
		return nil, nil, shared.Invalid("Cannot transfer to the same account")
	}
	if kind == transfer.TypeOwnAccounts && source.CustomerID != dest.CustomerID {
		return nil, nil, shared.Invalid("Accounts must belong to the same customer")
	}
	if source.LedgerBalance().LessThan(req.Amount) {
		return nil, nil, shared.ErrInsufficientBalance{
			ProductID: source.ID,
			Available: source.LedgerBalance(),
			Required:  req.Amount,
			Message:   "Insufficient balance in source account",
		}
	}
	return source, dest, nil
}

func notFoundAs(err error, id uuid.UUID, message string) error {
	if errors.Is(err, shared.ErrProductNotFound{}) {
		return shared.ErrProductNotFound{ProductID: id, Message: message}
	}
	return err
}

// buildLeg prepares a PENDING leg against own, cross-referencing other
func (o *Orchestrator) buildLeg(saga *transfer.Transfer, own, other *product.Product, txType shared.TransactionType, number string) (*transaction.Transaction, error) {
	otherID := other.ID
	return transaction.New(transaction.Params{
		CustomerID:            own.CustomerID,
		ProductID:             own.ID,
		ProductType:           own.ProductType,
		TransactionType:       txType,
		Amount:                saga.Amount,
		BalanceBefore:         own.LedgerBalance(),
		Commission:            decimal.Zero,
		DestinationProductID:  &otherID,
		DestinationCustomerID: other.CustomerID,
		TransferToken:         saga.Token,
		Number:                number,
		Description:           saga.Description,
		CorrelationID:         saga.CorrelationID,
	}, o.now())
}

// advance persists a saga step. The ledger records stay authoritative when
// the saga write fails, so the failure is logged rather than returned.
func (o *Orchestrator) advance(ctx context.Context, logger *slog.Logger, saga *transfer.Transfer, stepErr error) {
	if stepErr != nil {
		logger.Error("Invalid transfer state transition", "error", stepErr)
		return
	}
	if err := o.sagas.Update(ctx, saga); err != nil {
		logger.Error("Failed to persist transfer state",
			"state", saga.State,
			"error", err,
			"requires_reconciliation", true)
	}
}

func legID(tx *transaction.Transaction) *uuid.UUID {
	if tx == nil {
		return nil
	}
	id := tx.ID
	return &id
}

// Get returns a saga with its legs
func (o *Orchestrator) Get(ctx context.Context, token string) (*TransferResult, error) {
	saga, err := o.sagas.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	legs, err := o.ledger.GetByTransferToken(ctx, token)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{Transfer: saga}
	for _, leg := range legs {
		switch {
		case leg.TransactionNumber == transfer.DebitNumber(token):
			result.Debit = leg
		case leg.TransactionNumber == transfer.CreditNumber(token):
			result.Credit = leg
		case strings.HasPrefix(leg.TransactionNumber, transfer.ReversalNumber(token)):
			if saga.ReversalTransactionID != nil && leg.ID == *saga.ReversalTransactionID {
				result.Reversal = leg
			} else if result.Reversal == nil {
				result.Reversal = leg
			}
		}
	}
	return result, nil
}

func (o *Orchestrator) ListByState(ctx context.Context, state transfer.State) ([]*transfer.Transfer, error) {
	if !state.Valid() {
		return nil, shared.Invalid("Invalid transfer state: %s", state)
	}
	return o.sagas.ListByState(ctx, state, o.listLimit)
}

// Reverse credits the source back for a saga whose credit leg failed.
// A failed reversal leaves the saga in CREDIT_FAILED so it can be retried;
// each retry gets a fresh numbered leg. A completed earlier reversal settles
// the saga without crediting again.
func (o *Orchestrator) Reverse(ctx context.Context, token string) (*TransferResult, error) {
	logger := o.logger.With("transfer_token", token)

	saga, err := o.sagas.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if saga.State != transfer.StateCreditFailed {
		return nil, transfer.ErrInvalidStateTransition{Token: token, From: saga.State, To: transfer.StateReversed}
	}

	legs, err := o.ledger.GetByTransferToken(ctx, token)
	if err != nil {
		return nil, err
	}
	number := transfer.ReversalNumber(token)
	prior := reversalLegs(legs, number)
	for _, leg := range prior {
		if !leg.IsTerminal() {
			return nil, transfer.ErrReversalInProgress{Token: token, TransactionNumber: leg.TransactionNumber}
		}
	}
	for _, leg := range prior {
		if leg.Status != shared.TransactionStatusCompleted {
			continue
		}
		// the source was already credited back; only the saga write is missing
		o.advance(context.WithoutCancel(ctx), logger, saga, saga.MarkReversed(leg.ID, o.now()))
		metrics.TransferSettled(string(saga.Type), string(saga.State))
		logger.Warn("Transfer already reversed, settling saga",
			"reversal_transaction_number", leg.TransactionNumber)
		return &TransferResult{Transfer: saga, Reversal: leg}, nil
	}
	if len(prior) > 0 {
		number = fmt.Sprintf("%s-%d", number, len(prior)+1)
	}

	source, err := o.accounts.GetProduct(ctx, saga.SourceProductID)
	if err != nil {
		return nil, err
	}
	destID := saga.DestinationProductID

	reversal, err := transaction.New(transaction.Params{
		CustomerID:            source.CustomerID,
		ProductID:             source.ID,
		ProductType:           source.ProductType,
		TransactionType:       shared.TransactionTypeTransferIn,
		Amount:                saga.Amount,
		BalanceBefore:         source.LedgerBalance(),
		Commission:            decimal.Zero,
		DestinationProductID:  &destID,
		DestinationCustomerID: saga.DestinationCustomerID,
		TransferToken:         token,
		Number:                number,
		Description:           "Reversal of transfer " + token,
		CorrelationID:         saga.CorrelationID,
	}, o.now())
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	reversal, err = o.legs.ExecuteLeg(ctx, reversal)
	result := &TransferResult{Transfer: saga, Reversal: reversal}
	if err != nil {
		logger.Error("Transfer reversal failed", "error", err)
		return result, transfer.ErrLegFailed{Token: token, Leg: legReversal, Err: err}
	}

	o.advance(ctx, logger, saga, saga.MarkReversed(reversal.ID, o.now()))
	metrics.TransferSettled(string(saga.Type), string(saga.State))
	logger.Info("Transfer reversed", "reversal_transaction_number", reversal.TransactionNumber)
	return result, nil
}

func reversalLegs(legs []*transaction.Transaction, prefix string) []*transaction.Transaction {
	var out []*transaction.Transaction
	for _, leg := range legs {
		if strings.HasPrefix(leg.TransactionNumber, prefix) {
			out = append(out, leg)
		}
	}
	return out
}
