package product

import (
	"strconv"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/commission"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BalanceUpdate is the body of PUT /products/{id}/balance.
//
// Balance is the new ledger balance the caller computed. ObservedBalance, when
// present, is the snapshot value the caller computed from; the change is then
// rebased onto the live value. Commission, when present, is the fee the caller
// already folded into Balance, so no fee is priced again here.
type BalanceUpdate struct {
	Balance         decimal.Decimal     `json:"balance"`
	ObservedBalance decimal.NullDecimal `json:"observed_balance"`
	Commission      decimal.NullDecimal `json:"commission"`
}

// ApplyBalanceUpdate validates the change against the live product and applies it
func (p *Product) ApplyBalanceUpdate(u BalanceUpdate, now time.Time, policy commission.Policy) error {
	p.RollPeriod(now)

	live := p.LedgerBalance()
	target := u.Balance
	if u.ObservedBalance.Valid {
		target = live.Add(u.Balance.Sub(u.ObservedBalance.Decimal))
	}
	delta := target.Sub(live)
	if delta.IsZero() {
		return ErrInvalidOperation{Reason: "Balance update does not change the balance"}
	}

	var err error
	switch {
	case p.ProductType.IsPassive():
		err = p.applyPassive(live, target, delta, u.Commission, now, policy)
	case p.ProductType.IsActive():
		err = p.applyActive(live, target, delta)
	default:
		err = ErrInvalidOperation{Reason: "Unsupported product type: " + string(p.ProductType)}
	}
	if err != nil {
		return err
	}

	p.Version++
	p.UpdatedAt = now
	return nil
}

func (p *Product) applyPassive(live, target, delta decimal.Decimal, supplied decimal.NullDecimal, now time.Time, policy commission.Policy) error {
	if !p.IsOperable() {
		return ErrInvalidOperation{Reason: "Product is not active"}
	}
	if p.ProductType == shared.ProductTypeFixedTerm {
		if p.MovementDay == nil || now.UTC().Day() != *p.MovementDay {
			return ErrInvalidOperation{Reason: fixedTermReason(p.MovementDay)}
		}
	}

	if delta.IsNegative() && !supplied.Valid {
		fee := policy.Fee(p.ProductType, int64(p.CurrentMonthTransactions), p.MaxTransactionsWithoutFee)
		target = target.Sub(fee)
	}
	if target.IsNegative() {
		return shared.ErrInsufficientBalance{
			ProductID: p.ID,
			Available: live,
			Required:  live.Sub(target),
		}
	}

	p.Balance = target
	p.AvailableBalance = target
	p.CurrentMonthTransactions++
	return nil
}

func (p *Product) applyActive(live, target, delta decimal.Decimal) error {
	switch p.Status {
	case shared.ProductStatusBlocked:
		return ErrInvalidOperation{Reason: "Product is blocked"}
	case shared.ProductStatusClosed:
		return ErrInvalidOperation{Reason: "Product is closed"}
	}

	if delta.IsNegative() {
		if p.IsOverdue() {
			return shared.ErrOverdueDebt{CustomerID: p.CustomerID, ProductID: p.ID}
		}
		if !p.IsOperable() {
			return ErrInvalidOperation{Reason: "Product is not active"}
		}
		if target.IsNegative() {
			return shared.ErrInsufficientBalance{
				ProductID: p.ID,
				Available: live,
				Required:  delta.Neg(),
				Message:   "Insufficient credit. Available: " + live.StringFixed(2),
			}
		}
	}

	used := p.CreditLimit.Sub(target)
	if used.IsNegative() {
		return ErrInvalidOperation{Reason: "Payment amount exceeds outstanding balance"}
	}

	p.OutstandingBalance = decimal.Max(p.OutstandingBalance.Sub(delta), decimal.Zero)
	if delta.IsPositive() && p.OverdueAmount.IsPositive() {
		p.OverdueAmount = p.OverdueAmount.Sub(decimal.Min(delta, p.OverdueAmount))
		if p.OverdueAmount.IsZero() {
			p.HasOverdueDebt = false
			if p.Status == shared.ProductStatusOverdue {
				p.Status = shared.ProductStatusActive
			}
		}
	}
	p.MinimumPayment = p.OutstandingBalance.Mul(minimumPaymentRate).Round(2)
	p.UsedCredit = used
	p.Balance = used
	p.AvailableBalance = target
	return nil
}

func fixedTermReason(day *int) string {
	if day == nil {
		return "Fixed-term account has no movement day configured"
	}
	return "Fixed-term account can only accept movements on day " + strconv.Itoa(*day)
}
