package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/commission"
	"github.com/finnova-banking-ledger/internal/domain/product"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

// maxNumberAttempts bounds regeneration of a colliding transaction number
const maxNumberAttempts = 3

// feeCountedTypes are the movements counted against the monthly free ceiling
var feeCountedTypes = []shared.TransactionType{
	shared.TransactionTypeDeposit,
	shared.TransactionTypeWithdrawal,
}

// Processor implements TransactionProcessor and LegExecutor
type Processor struct {
	repo     transaction.Repository
	accounts AccountClient
	events   EventSink
	policy   commission.Policy
	now      func() time.Time
	logger   *slog.Logger
}

func NewProcessor(
	logger *slog.Logger,
	repo transaction.Repository,
	accounts AccountClient,
	events EventSink,
	policy commission.Policy,
) *Processor {
	return &Processor{
		repo:     repo,
		accounts: accounts,
		events:   events,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

func (p *Processor) Deposit(ctx context.Context, req DepositRequest) (*transaction.Transaction, error) {
	logger := p.requestLogger(req.CorrelationID)
	logger.Info("Processing deposit", "product_id", req.ProductID)

	if !req.Amount.IsPositive() {
		return nil, transaction.ErrNonPositiveAmount
	}
	prod, err := p.accounts.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !prod.ProductType.IsPassive() {
		return nil, shared.Invalid("Deposits can only be made to bank accounts")
	}

	tx, err := transaction.New(transaction.Params{
		CustomerID:      prod.CustomerID,
		ProductID:       prod.ID,
		ProductType:     prod.ProductType,
		TransactionType: shared.TransactionTypeDeposit,
		Amount:          req.Amount,
		BalanceBefore:   prod.Balance,
		Commission:      decimal.Zero,
		Description:     req.Description,
		CorrelationID:   req.CorrelationID,
	}, p.now())
	if err != nil {
		return nil, err
	}
	return p.ExecuteLeg(ctx, tx)
}

// Withdrawal checks the balance twice: once for the bare amount, and again
// once the monthly fee is known.
func (p *Processor) Withdrawal(ctx context.Context, req WithdrawalRequest) (*transaction.Transaction, error) {
	logger := p.requestLogger(req.CorrelationID)
	logger.Info("Processing withdrawal", "product_id", req.ProductID)

	if !req.Amount.IsPositive() {
		return nil, transaction.ErrNonPositiveAmount
	}
	prod, err := p.accounts.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !prod.ProductType.IsPassive() {
		return nil, shared.Invalid("Withdrawals can only be made from bank accounts")
	}
	if prod.Balance.LessThan(req.Amount) {
		return nil, shared.ErrInsufficientBalance{
			ProductID: prod.ID,
			Available: prod.Balance,
			Required:  req.Amount,
			Message:   "Insufficient balance",
		}
	}

	fee, err := p.monthlyFee(ctx, prod)
	if err != nil {
		return nil, err
	}
	required := req.Amount.Add(fee)
	if prod.Balance.LessThan(required) {
		return nil, shared.ErrInsufficientBalance{
			ProductID: prod.ID,
			Available: prod.Balance,
			Required:  required,
			Message:   "Insufficient balance including commission",
		}
	}

	tx, err := transaction.New(transaction.Params{
		CustomerID:      prod.CustomerID,
		ProductID:       prod.ID,
		ProductType:     prod.ProductType,
		TransactionType: shared.TransactionTypeWithdrawal,
		Amount:          req.Amount,
		BalanceBefore:   prod.Balance,
		Commission:      fee,
		Description:     req.Description,
		CorrelationID:   req.CorrelationID,
	}, p.now())
	if err != nil {
		return nil, err
	}
	return p.ExecuteLeg(ctx, tx)
}

func (p *Processor) Payment(ctx context.Context, req PaymentRequest) (*transaction.Transaction, error) {
	logger := p.requestLogger(req.CorrelationID)
	logger.Info("Processing payment", "product_id", req.ProductID)

	if !req.Amount.IsPositive() {
		return nil, shared.Invalid("Payment amount must be positive")
	}
	prod, err := p.accounts.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !prod.ProductType.IsActive() {
		return nil, shared.Invalid("Payments can only be made to credit products")
	}
	if prod.Status == shared.ProductStatusBlocked || prod.Status == shared.ProductStatusClosed {
		return nil, shared.Invalid("Product is %s", prod.Status)
	}
	if req.Amount.GreaterThan(prod.Debt()) {
		return nil, shared.Invalid("Payment amount cannot exceed current debt")
	}

	payer := req.PayerCustomerID
	if payer == "" {
		payer = prod.CustomerID
	}

	tx, err := transaction.New(transaction.Params{
		CustomerID:      payer,
		ProductID:       prod.ID,
		ProductType:     prod.ProductType,
		TransactionType: shared.TransactionTypePayment,
		Amount:          req.Amount,
		BalanceBefore:   prod.AvailableBalance,
		Commission:      decimal.Zero,
		Description:     req.Description,
		CorrelationID:   req.CorrelationID,
	}, p.now())
	if err != nil {
		return nil, err
	}
	return p.ExecuteLeg(ctx, tx)
}

func (p *Processor) CreditCharge(ctx context.Context, req CreditChargeRequest) (*transaction.Transaction, error) {
	logger := p.requestLogger(req.CorrelationID)
	logger.Info("Processing credit charge", "credit_card_id", req.CreditCardID, "merchant", req.MerchantName)

	if !req.Amount.IsPositive() {
		return nil, transaction.ErrNonPositiveAmount
	}
	prod, err := p.accounts.GetProduct(ctx, req.CreditCardID)
	if err != nil {
		if errors.Is(err, shared.ErrProductNotFound{}) {
			return nil, shared.ErrProductNotFound{ProductID: req.CreditCardID, Message: "Credit card not found"}
		}
		return nil, err
	}
	if prod.ProductType != shared.ProductTypeCreditCard {
		return nil, shared.Invalid("Product is not a credit card")
	}
	if prod.IsOverdue() {
		return nil, shared.ErrOverdueDebt{CustomerID: prod.CustomerID, ProductID: prod.ID}
	}
	if !prod.IsOperable() {
		return nil, shared.Invalid("Product is %s", prod.Status)
	}
	if prod.AvailableBalance.LessThan(req.Amount) {
		return nil, shared.ErrInsufficientBalance{
			ProductID: prod.ID,
			Available: prod.AvailableBalance,
			Required:  req.Amount,
			Message:   "Insufficient credit limit. Available: " + prod.AvailableBalance.StringFixed(2),
		}
	}

	tx, err := transaction.New(transaction.Params{
		CustomerID:      prod.CustomerID,
		ProductID:       prod.ID,
		ProductType:     prod.ProductType,
		TransactionType: shared.TransactionTypeCreditCharge,
		Amount:          req.Amount,
		BalanceBefore:   prod.AvailableBalance,
		Commission:      decimal.Zero,
		Description:     req.Description + " - Merchant: " + req.MerchantName,
		CorrelationID:   req.CorrelationID,
	}, p.now())
	if err != nil {
		return nil, err
	}
	return p.ExecuteLeg(ctx, tx)
}

// ExecuteLeg is the persist-and-apply half shared by every operation.
// Once the PENDING record exists, any failure leaves it FAILED.
func (p *Processor) ExecuteLeg(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	logger := p.requestLogger(tx.CorrelationID).With(
		"transaction_type", tx.TransactionType,
		"product_id", tx.ProductID,
	)

	if err := p.create(ctx, tx); err != nil {
		logger.Error("Failed to persist pending transaction", "error", err)
		return nil, err
	}
	logger = logger.With("transaction_number", tx.TransactionNumber)

	// Past this point the record exists; finish it even if the caller leaves.
	ctx = context.WithoutCancel(ctx)
	p.events.TransactionCreated(ctx, tx)

	_, applyErr := p.accounts.UpdateBalance(ctx, tx.ProductID, product.BalanceUpdate{
		Balance:         tx.BalanceAfter,
		ObservedBalance: decimal.NewNullDecimal(tx.BalanceBefore),
		Commission:      decimal.NewNullDecimal(tx.Commission),
	})
	if applyErr != nil {
		logger.Warn("Remote balance update failed", "error", applyErr)
		p.fail(ctx, logger, tx, applyErr)
		return tx, applyErr
	}

	if err := tx.Complete(p.now()); err != nil {
		return tx, err
	}
	if err := p.repo.Update(ctx, tx); err != nil {
		logger.Error("Balance applied but transaction could not be marked completed",
			"error", err,
			"requires_reconciliation", true)
		return tx, fmt.Errorf("failed to finalize transaction %s: %w", tx.TransactionNumber, err)
	}

	metrics.TransactionFinalized(string(tx.TransactionType), string(tx.Status))
	p.events.TransactionCompleted(ctx, tx)
	logger.Info("Transaction completed",
		"amount", tx.Amount,
		"commission", tx.Commission,
		"balance_after", tx.BalanceAfter)
	return tx, nil
}

// create inserts the record, regenerating a generated number on collision.
// Transfer legs carry numbers derived from their token and are never renumbered.
func (p *Processor) create(ctx context.Context, tx *transaction.Transaction) error {
	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		err = p.repo.Create(ctx, tx)
		if err == nil || !errors.Is(err, transaction.ErrDuplicateTransactionNumber{}) || tx.TransferToken != "" {
			return err
		}
		p.logger.Warn("Transaction number collision, regenerating",
			"transaction_number", tx.TransactionNumber,
			"attempt", attempt)
		tx.TransactionNumber = transaction.NewNumber(tx.TransactionType)
	}
	return err
}

func (p *Processor) fail(ctx context.Context, logger *slog.Logger, tx *transaction.Transaction, cause error) {
	reason := cause.Error()
	if err := tx.Fail(reason, p.now()); err != nil {
		logger.Error("Cannot fail transaction", "error", err)
		return
	}
	if err := p.repo.Update(ctx, tx); err != nil {
		logger.Error("Failed to persist FAILED status",
			"error", err,
			"cause", reason,
			"requires_reconciliation", true)
	}
	metrics.TransactionFinalized(string(tx.TransactionType), string(tx.Status))
	p.events.TransactionFailed(ctx, tx, reason)
}

func (p *Processor) monthlyFee(ctx context.Context, prod *product.Product) (decimal.Decimal, error) {
	from, to := commission.MonthBounds(p.now())
	count, err := p.repo.CountCompletedInRange(ctx, prod.ID, feeCountedTypes, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to count monthly transactions: %w", err)
	}
	return p.policy.Fee(prod.ProductType, count, prod.MaxTransactionsWithoutFee), nil
}

func (p *Processor) requestLogger(correlationID string) *slog.Logger {
	if correlationID == "" {
		return p.logger
	}
	return p.logger.With("correlation_id", correlationID)
}
