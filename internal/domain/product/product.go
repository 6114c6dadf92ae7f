package product

import (
	"strings"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/commission"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "USD"

var minimumPaymentRate = decimal.RequireFromString("0.05")

// Product is the balance-owning snapshot of a passive account or an active
// credit line. For active products Balance mirrors UsedCredit.
type Product struct {
	ID                        uuid.UUID            `json:"id"`
	CustomerID                string               `json:"customer_id"`
	ProductType               shared.ProductType   `json:"product_type"`
	AccountNumber             string               `json:"account_number"`
	Currency                  string               `json:"currency"`
	Status                    shared.ProductStatus `json:"status"`
	Balance                   decimal.Decimal      `json:"balance"`
	AvailableBalance          decimal.Decimal      `json:"available_balance"`
	CreditLimit               decimal.Decimal      `json:"credit_limit"`
	UsedCredit                decimal.Decimal      `json:"used_credit"`
	OutstandingBalance        decimal.Decimal      `json:"outstanding_balance"`
	OverdueAmount             decimal.Decimal      `json:"overdue_amount"`
	MinimumPayment            decimal.Decimal      `json:"minimum_payment"`
	HasOverdueDebt            bool                 `json:"has_overdue_debt"`
	CurrentMonthTransactions  int                  `json:"current_month_transactions"`
	CounterPeriod             string               `json:"counter_period"`
	MaxTransactionsWithoutFee *int                 `json:"max_transactions_without_fee,omitempty"`
	MovementDay               *int                 `json:"movement_day,omitempty"`
	Version                   int                  `json:"version"`
	CreatedAt                 time.Time            `json:"created_at"`
	UpdatedAt                 time.Time            `json:"updated_at"`
}

// CreateParams describes a product to open
type CreateParams struct {
	CustomerID                string
	ProductType               shared.ProductType
	Currency                  string
	InitialBalance            decimal.Decimal
	CreditLimit               decimal.Decimal
	MaxTransactionsWithoutFee *int
	MovementDay               *int
}

// New opens a product applying per-type defaults
func New(p CreateParams, now time.Time) (*Product, error) {
	if p.CustomerID == "" {
		return nil, ErrInvalidOperation{Reason: "Customer id is required"}
	}
	if !p.ProductType.Valid() {
		return nil, ErrInvalidOperation{Reason: "Unsupported product type: " + string(p.ProductType)}
	}
	if p.InitialBalance.IsNegative() || p.CreditLimit.IsNegative() {
		return nil, ErrInvalidOperation{Reason: "Balances cannot be negative"}
	}
	if p.MovementDay != nil && (*p.MovementDay < 1 || *p.MovementDay > 28) {
		return nil, ErrInvalidOperation{Reason: "Movement day must be between 1 and 28"}
	}
	currency := p.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	prod := &Product{
		ID:                        uuid.New(),
		CustomerID:                p.CustomerID,
		ProductType:               p.ProductType,
		Currency:                  strings.ToUpper(currency),
		Status:                    shared.ProductStatusActive,
		MaxTransactionsWithoutFee: p.MaxTransactionsWithoutFee,
		CounterPeriod:             commission.Period(now),
		Version:                   1,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	switch {
	case p.ProductType.IsPassive():
		prod.AccountNumber = "ACC-" + hex8()
		prod.Balance = p.InitialBalance
		prod.AvailableBalance = p.InitialBalance
		if p.ProductType == shared.ProductTypeFixedTerm {
			day := 1
			if p.MovementDay != nil {
				day = *p.MovementDay
			}
			prod.MovementDay = &day
		}
	case p.ProductType.IsActive():
		prod.AccountNumber = "CRD-" + hex8()
		prod.CreditLimit = p.CreditLimit
		prod.AvailableBalance = p.CreditLimit
	}
	return prod, nil
}

func hex8() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// LedgerBalance is the value the ledger records as balanceBefore/balanceAfter:
// available credit for active products, account balance for passive ones.
func (p *Product) LedgerBalance() decimal.Decimal {
	if p.ProductType.IsActive() {
		return p.AvailableBalance
	}
	return p.Balance
}

// Debt is the amount owed on an active product
func (p *Product) Debt() decimal.Decimal {
	return p.CreditLimit.Sub(p.AvailableBalance)
}

func (p *Product) IsOverdue() bool {
	return p.HasOverdueDebt || p.Status == shared.ProductStatusOverdue
}

func (p *Product) IsOperable() bool {
	return p.Status == shared.ProductStatusActive
}

// RollPeriod resets the monthly movement counter when the month changes
func (p *Product) RollPeriod(now time.Time) {
	period := commission.Period(now)
	if p.CounterPeriod != period {
		p.CounterPeriod = period
		p.CurrentMonthTransactions = 0
	}
}
