// Package commission holds the extra-transaction fee policy shared by the
// ledger core and the product service.
package commission

import (
	"math"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Unbounded is the ceiling used by products with no free-transaction limit
const Unbounded = math.MaxInt

// Policy maps product types to their flat extra-transaction fee and default
// free-transaction ceiling.
type Policy struct {
	Fees     map[shared.ProductType]decimal.Decimal
	Ceilings map[shared.ProductType]int
}

// DefaultPolicy returns the fee schedule for passive products.
// Fixed-term accounts are fee-exempt: their ceiling of one already forbids a
// second movement in the same month.
func DefaultPolicy() Policy {
	return Policy{
		Fees: map[shared.ProductType]decimal.Decimal{
			shared.ProductTypeSavings:   decimal.RequireFromString("1.00"),
			shared.ProductTypeChecking:  decimal.RequireFromString("2.00"),
			shared.ProductTypeFixedTerm: decimal.Zero,
		},
		Ceilings: map[shared.ProductType]int{
			shared.ProductTypeSavings:   10,
			shared.ProductTypeChecking:  Unbounded,
			shared.ProductTypeFixedTerm: 1,
		},
	}
}

// Ceiling returns the configured ceiling when set, else the type default
func (p Policy) Ceiling(productType shared.ProductType, configured *int) int {
	if configured != nil {
		return *configured
	}
	if c, ok := p.Ceilings[productType]; ok {
		return c
	}
	return Unbounded
}

// Fee computes the commission owed for the next movement given the number of
// completed movements already recorded this month.
func (p Policy) Fee(productType shared.ProductType, monthlyCount int64, configured *int) decimal.Decimal {
	if !productType.IsPassive() {
		return decimal.Zero
	}
	ceiling := p.Ceiling(productType, configured)
	if ceiling == Unbounded || monthlyCount < int64(ceiling) {
		return decimal.Zero
	}
	fee, ok := p.Fees[productType]
	if !ok {
		return decimal.Zero
	}
	return fee
}

// MonthBounds returns the inclusive UTC range of the calendar month containing t
func MonthBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// Period formats the month key used for per-product counters
func Period(t time.Time) string {
	return t.UTC().Format("2006-01")
}
