// Package service owns product balances: every mutation is validated against
// the locked row before it is written.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/commission"
	"github.com/finnova-banking-ledger/internal/domain/product"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/platform/metrics"
	"github.com/finnova-banking-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Balance mutation outcomes
const (
	mutationApplied  = "applied"
	mutationRejected = "rejected"
	mutationError    = "error"
)

// SnapshotCache holds read-through copies of products. Implementations swallow
// their own failures.
type SnapshotCache interface {
	Get(ctx context.Context, id uuid.UUID) (*product.Product, bool)
	Set(ctx context.Context, p *product.Product)
	Delete(ctx context.Context, id uuid.UUID)
}

type ProductService struct {
	db     persistence.TxRunner
	repo   product.Repository
	cache  SnapshotCache
	policy commission.Policy
	now    func() time.Time
	logger *slog.Logger
}

func NewProductService(logger *slog.Logger, db persistence.TxRunner, repo product.Repository, cache SnapshotCache, policy commission.Policy) *ProductService {
	return &ProductService{
		db:     db,
		repo:   repo,
		cache:  cache,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// GetProduct serves from the cache and falls back to the database
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	if p, ok := s.cache.Get(ctx, id); ok {
		return p, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, p)
	return p, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, params product.CreateParams) (*product.Product, error) {
	p, err := product.New(params, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, p)
	s.logger.Info("Product created",
		"product_id", p.ID,
		"customer_id", p.CustomerID,
		"product_type", p.ProductType,
		"account_number", p.AccountNumber)
	return p, nil
}

func (s *ProductService) ListByCustomer(ctx context.Context, customerID string) ([]*product.Product, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// ApplyBalance locks the product row, re-validates the requested balance
// against the live value and persists it in one database transaction.
func (s *ProductService) ApplyBalance(ctx context.Context, id uuid.UUID, update product.BalanceUpdate) (*product.Product, error) {
	logger := s.logger.With("product_id", id)

	var (
		updated     *product.Product
		productType shared.ProductType
	)
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repoTx := s.repo.WithTx(tx)

		locked, err := repoTx.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		productType = locked.ProductType
		before := locked.LedgerBalance()

		if err := locked.ApplyBalanceUpdate(update, s.now(), s.policy); err != nil {
			return err
		}
		if err := repoTx.Update(ctx, locked); err != nil {
			return err
		}

		logger.Info("Balance updated",
			"product_type", locked.ProductType,
			"before", before,
			"after", locked.LedgerBalance(),
			"version", locked.Version,
			"monthly_transactions", locked.CurrentMonthTransactions)
		updated = locked
		return nil
	})
	if err != nil {
		if isRejection(err) {
			logger.Warn("Balance update rejected", "error", err)
			metrics.BalanceMutation(string(productType), mutationRejected)
		} else {
			logger.Error("Balance update failed", "error", err)
			metrics.BalanceMutation(string(productType), mutationError)
		}
		if errors.Is(err, product.ErrConcurrentModification{}) {
			s.cache.Delete(ctx, id)
		}
		return nil, err
	}

	s.cache.Set(ctx, updated)
	metrics.BalanceMutation(string(updated.ProductType), mutationApplied)
	return updated, nil
}

func isRejection(err error) bool {
	return errors.Is(err, shared.ErrProductNotFound{}) ||
		errors.Is(err, shared.ErrInsufficientBalance{}) ||
		errors.Is(err, shared.ErrOverdueDebt{}) ||
		errors.Is(err, product.ErrInvalidOperation{})
}
