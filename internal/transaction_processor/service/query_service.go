package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const lastTransactionsLimit = 10

// Balance is the live balance view of a product
type Balance struct {
	ProductID        uuid.UUID       `json:"product_id"`
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	Currency         string          `json:"currency"`
}

// Correction is an administrative change to a ledger record
type Correction struct {
	Description *string
	Status      *shared.TransactionStatus
}

// QueryService serves reads over the ledger plus the administrative
// correction and delete operations.
type QueryService struct {
	repo     transaction.Repository
	accounts AccountClient
	now      func() time.Time
	logger   *slog.Logger
}

func NewQueryService(logger *slog.Logger, repo transaction.Repository, accounts AccountClient) *QueryService {
	return &QueryService{
		repo:     repo,
		accounts: accounts,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

func (s *QueryService) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByProduct lists a product's records newest first
func (s *QueryService) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*transaction.Transaction, error) {
	return s.repo.GetByProductID(ctx, productID)
}

func (s *QueryService) GetByCustomer(ctx context.Context, customerID string) ([]*transaction.Transaction, error) {
	return s.repo.GetByCustomerID(ctx, customerID)
}

func (s *QueryService) GetLast10(ctx context.Context, productID uuid.UUID) ([]*transaction.Transaction, error) {
	return s.repo.GetLatestByProductID(ctx, productID, lastTransactionsLimit)
}

// GetBalance reads the live value from the product service, not the ledger
func (s *QueryService) GetBalance(ctx context.Context, productID uuid.UUID) (*Balance, error) {
	prod, err := s.accounts.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &Balance{
		ProductID:        prod.ID,
		Balance:          prod.Balance,
		AvailableBalance: prod.AvailableBalance,
		Currency:         prod.Currency,
	}, nil
}

// GetAll returns one page of records and the total count
func (s *QueryService) GetAll(ctx context.Context, limit, offset int) ([]*transaction.Transaction, int64, error) {
	items, err := s.repo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *QueryService) Correct(ctx context.Context, id uuid.UUID, c Correction) (*transaction.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := tx.Status
	if err := tx.Correct(c.Description, c.Status, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Transaction corrected",
		"transaction_number", tx.TransactionNumber,
		"previous_status", previous,
		"status", tx.Status)
	return tx, nil
}

func (s *QueryService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := tx.CanDelete(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Transaction deleted", "transaction_number", tx.TransactionNumber, "status", tx.Status)
	return nil
}
