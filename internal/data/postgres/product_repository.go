// Package postgres provides PostgreSQL implementations of the product and
// outbox repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finnova-banking-ledger/internal/domain/product"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const productColumns = `id, customer_id, product_type, account_number, currency, status,
		balance, available_balance, credit_limit, used_credit, outstanding_balance, overdue_amount,
		minimum_payment, has_overdue_debt, current_month_transactions, counter_period,
		max_transactions_without_fee, movement_day, version, created_at, updated_at`

// ProductRepository implements product.Repository for PostgreSQL
type ProductRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewProductRepository(logger *slog.Logger, db *persistence.PostgresDB) product.Repository {
	return &ProductRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *ProductRepository) WithTx(tx pgx.Tx) product.Repository {
	return &ProductRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.querier.Exec(ctx, query,
		p.ID,
		p.CustomerID,
		p.ProductType,
		p.AccountNumber,
		p.Currency,
		p.Status,
		p.Balance,
		p.AvailableBalance,
		p.CreditLimit,
		p.UsedCredit,
		p.OutstandingBalance,
		p.OverdueAmount,
		p.MinimumPayment,
		p.HasOverdueDebt,
		p.CurrentMonthTransactions,
		p.CounterPeriod,
		p.MaxTransactionsWithoutFee,
		p.MovementDay,
		p.Version,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create product", "id", p.ID.String(), "error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`
	p, err := scanProduct(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrProductNotFound{ProductID: id}
		}
		r.logger.Error("Failed to get product", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// LockForUpdate reads the product holding a row lock until the surrounding transaction ends
func (r *ProductRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
		FOR UPDATE
	`
	p, err := scanProduct(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrProductNotFound{ProductID: id}
		}
		r.logger.Error("Failed to lock product for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock product for update: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) ListByCustomer(ctx context.Context, customerID string) ([]*product.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE customer_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.querier.Query(ctx, query, customerID)
	if err != nil {
		r.logger.Error("Failed to list products", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("Failed to scan product", "error", err)
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// Update persists the mutated product; the caller bumps Version before saving
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products
		SET status = $1, balance = $2, available_balance = $3, credit_limit = $4, used_credit = $5,
			outstanding_balance = $6, overdue_amount = $7, minimum_payment = $8, has_overdue_debt = $9,
			current_month_transactions = $10, counter_period = $11, version = $12, updated_at = $13
		WHERE id = $14 AND version = $15
	`

	result, err := r.querier.Exec(ctx, query,
		p.Status,
		p.Balance,
		p.AvailableBalance,
		p.CreditLimit,
		p.UsedCredit,
		p.OutstandingBalance,
		p.OverdueAmount,
		p.MinimumPayment,
		p.HasOverdueDebt,
		p.CurrentMonthTransactions,
		p.CounterPeriod,
		p.Version,
		p.UpdatedAt,
		p.ID,
		p.Version-1,
	)
	if err != nil {
		r.logger.Error("Failed to update product", "id", p.ID.String(), "error", err)
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return product.ErrConcurrentModification{ProductID: p.ID}
	}
	return nil
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID,
		&p.CustomerID,
		&p.ProductType,
		&p.AccountNumber,
		&p.Currency,
		&p.Status,
		&p.Balance,
		&p.AvailableBalance,
		&p.CreditLimit,
		&p.UsedCredit,
		&p.OutstandingBalance,
		&p.OverdueAmount,
		&p.MinimumPayment,
		&p.HasOverdueDebt,
		&p.CurrentMonthTransactions,
		&p.CounterPeriod,
		&p.MaxTransactionsWithoutFee,
		&p.MovementDay,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
