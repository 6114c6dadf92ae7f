package transaction

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew(t *testing.T) {
	now := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		txType       shared.TransactionType
		before       string
		amount       string
		commission   string
		balanceAfter string
		prefix       string
	}{
		{"deposit raises balance", shared.TransactionTypeDeposit, "50.00", "100.00", "0", "150.00", "DEP-"},
		{"withdrawal lowers balance by amount plus fee", shared.TransactionTypeWithdrawal, "30.00", "20.00", "1.00", "9.00", "WTH-"},
		{"payment raises available credit", shared.TransactionTypePayment, "200.00", "50.00", "0", "250.00", "PAY-"},
		{"charge lowers available credit", shared.TransactionTypeCreditCharge, "500.00", "120.50", "0", "379.50", "CHG-"},
		{"transfer out", shared.TransactionTypeTransferOut, "80.00", "80.00", "0", "0.00", "TRF-"},
		{"transfer in", shared.TransactionTypeTransferIn, "0", "80.00", "0", "80.00", "TRF-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := New(Params{
				CustomerID:      "cust-1",
				ProductID:       uuid.New(),
				ProductType:     shared.ProductTypeSavings,
				TransactionType: tt.txType,
				Amount:          dec(tt.amount),
				BalanceBefore:   dec(tt.before),
				Commission:      dec(tt.commission),
				Description:     "test",
			}, now)

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, tx.ID)
			assert.True(t, dec(tt.balanceAfter).Equal(tx.BalanceAfter), "balance after %s", tx.BalanceAfter)
			assert.Equal(t, shared.TransactionStatusPending, tx.Status)
			assert.Regexp(t, "^"+regexp.QuoteMeta(tt.prefix)+"[0-9A-F]{8}$", tx.TransactionNumber)
			assert.Equal(t, now, tx.TransactionDate)
			assert.Equal(t, now, tx.CreatedAt)
		})
	}
}

func TestNew_Validation(t *testing.T) {
	base := Params{
		ProductID:       uuid.New(),
		TransactionType: shared.TransactionTypeDeposit,
		Amount:          dec("10"),
	}

	t.Run("ZeroAmount", func(t *testing.T) {
		p := base
		p.Amount = decimal.Zero
		_, err := New(p, time.Now())
		assert.ErrorIs(t, err, shared.ErrInvalidTransaction{})
	})

	t.Run("NegativeAmount", func(t *testing.T) {
		p := base
		p.Amount = dec("-0.01")
		_, err := New(p, time.Now())
		assert.ErrorIs(t, err, ErrNonPositiveAmount)
	})

	t.Run("NegativeCommission", func(t *testing.T) {
		p := base
		p.Commission = dec("-1")
		_, err := New(p, time.Now())
		assert.ErrorIs(t, err, ErrNegativeCommission)
	})

	t.Run("ExplicitNumber", func(t *testing.T) {
		p := base
		p.Number = "TRF-ABCDEF12-OUT"
		tx, err := New(p, time.Now())
		require.NoError(t, err)
		assert.Equal(t, "TRF-ABCDEF12-OUT", tx.TransactionNumber)
	})
}

func TestNewNumber_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		n := NewNumber(shared.TransactionTypeDeposit)
		_, dup := seen[n]
		require.False(t, dup, "duplicate number %s", n)
		seen[n] = struct{}{}
	}
	assert.Regexp(t, `^TRF-[0-9A-F]{8}$`, NewTransferToken())
}

func TestTransaction_Lifecycle(t *testing.T) {
	now := time.Now()

	t.Run("CompleteFromPending", func(t *testing.T) {
		tx := &Transaction{Status: shared.TransactionStatusPending}
		require.NoError(t, tx.Complete(now))
		assert.Equal(t, shared.TransactionStatusCompleted, tx.Status)
		assert.True(t, tx.IsTerminal())
	})

	t.Run("FailAppendsReason", func(t *testing.T) {
		tx := &Transaction{Status: shared.TransactionStatusPending, Description: "Rent"}
		require.NoError(t, tx.Fail("Insufficient balance", now))
		assert.Equal(t, shared.TransactionStatusFailed, tx.Status)
		assert.Equal(t, "Rent - Error: Insufficient balance", tx.Description)
	})

	t.Run("TerminalIsFinal", func(t *testing.T) {
		tx := &Transaction{Status: shared.TransactionStatusCompleted}
		err := tx.Fail("late failure", now)
		assert.True(t, errors.Is(err, ErrInvalidStatusTransition{}))
		assert.Equal(t, shared.TransactionStatusCompleted, tx.Status)

		failed := &Transaction{Status: shared.TransactionStatusFailed}
		assert.Error(t, failed.Complete(now))
	})
}

func TestTransaction_Correct(t *testing.T) {
	desc := "corrected"
	completed := shared.TransactionStatusCompleted
	failed := shared.TransactionStatusFailed

	t.Run("DescriptionOnCompleted", func(t *testing.T) {
		tx := &Transaction{Status: shared.TransactionStatusCompleted, Description: "old"}
		require.NoError(t, tx.Correct(&desc, nil, time.Now()))
		assert.Equal(t, "corrected", tx.Description)
	})

	t.Run("StatusFromPending", func(t *testing.T) {
		tx := &Transaction{Status: shared.TransactionStatusPending}
		require.NoError(t, tx.Correct(nil, &failed, time.Now()))
		assert.Equal(t, shared.TransactionStatusFailed, tx.Status)
	})

	t.Run("StatusFromCompletedRejected", func(t *testing.T) {
		tx := &Transaction{Status: shared.TransactionStatusCompleted}
		err := tx.Correct(nil, &failed, time.Now())
		assert.ErrorIs(t, err, ErrInvalidStatusTransition{})
	})

	t.Run("StatusFromFailedRejected", func(t *testing.T) {
		tx := &Transaction{Status: shared.TransactionStatusFailed}
		err := tx.Correct(nil, &completed, time.Now())
		assert.ErrorIs(t, err, ErrInvalidStatusTransition{})
		assert.Equal(t, shared.TransactionStatusFailed, tx.Status)
	})

	t.Run("SameStatusIsNoop", func(t *testing.T) {
		tx := &Transaction{Status: shared.TransactionStatusCompleted}
		assert.NoError(t, tx.Correct(nil, &completed, time.Now()))
	})
}

func TestTransaction_CanDelete(t *testing.T) {
	assert.Error(t, (&Transaction{Status: shared.TransactionStatusCompleted}).CanDelete())
	assert.NoError(t, (&Transaction{Status: shared.TransactionStatusFailed}).CanDelete())
	assert.NoError(t, (&Transaction{Status: shared.TransactionStatusPending}).CanDelete())
}
