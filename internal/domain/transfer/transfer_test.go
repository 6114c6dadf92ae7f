package transfer

import (
	"errors"
	"testing"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransfer() *Transfer {
	return New("TRF-0A1B2C3D", TypeThirdParty, uuid.New(), "cust-1", uuid.New(), "cust-2",
		decimal.RequireFromString("25.00"), "rent", "corr-1", time.Now())
}

func TestTransfer_HappyPath(t *testing.T) {
	tr := newTransfer()
	assert.Equal(t, StatePending, tr.State)

	debitID, creditID := uuid.New(), uuid.New()
	require.NoError(t, tr.MarkDebited(debitID, time.Now()))
	require.NoError(t, tr.MarkCompleted(creditID, time.Now()))

	assert.Equal(t, StateCompleted, tr.State)
	assert.Equal(t, debitID, *tr.DebitTransactionID)
	assert.Equal(t, creditID, *tr.CreditTransactionID)
	assert.True(t, tr.State.IsTerminal())
}

func TestTransfer_CreditFailureThenReversal(t *testing.T) {
	tr := newTransfer()
	require.NoError(t, tr.MarkDebited(uuid.New(), time.Now()))

	creditID := uuid.New()
	require.NoError(t, tr.MarkCreditFailed(&creditID, "product service unavailable", time.Now()))
	assert.Equal(t, StateCreditFailed, tr.State)
	assert.False(t, tr.State.IsTerminal())
	assert.Equal(t, "product service unavailable", tr.FailureReason)

	reversalID := uuid.New()
	require.NoError(t, tr.MarkReversed(reversalID, time.Now()))
	assert.Equal(t, StateReversed, tr.State)
	assert.Equal(t, reversalID, *tr.ReversalTransactionID)
}

func TestTransfer_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		step func(tr *Transfer) error
	}{
		{"complete before debit", func(tr *Transfer) error { return tr.MarkCompleted(uuid.New(), time.Now()) }},
		{"reverse pending", func(tr *Transfer) error { return tr.MarkReversed(uuid.New(), time.Now()) }},
		{"credit fail before debit", func(tr *Transfer) error { return tr.MarkCreditFailed(nil, "x", time.Now()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTransfer()
			err := tt.step(tr)
			assert.ErrorIs(t, err, ErrInvalidStateTransition{})
			assert.Equal(t, StatePending, tr.State)
		})
	}

	t.Run("completed cannot be reversed", func(t *testing.T) {
		tr := newTransfer()
		require.NoError(t, tr.MarkDebited(uuid.New(), time.Now()))
		require.NoError(t, tr.MarkCompleted(uuid.New(), time.Now()))
		assert.Error(t, tr.MarkReversed(uuid.New(), time.Now()))
	})
}

func TestErrLegFailed_Unwrap(t *testing.T) {
	err := ErrLegFailed{Token: "TRF-1", Leg: "credit", Err: shared.ErrProductNotFound{ProductID: uuid.New()}}
	assert.True(t, errors.Is(err, shared.ErrProductNotFound{}))
	assert.Contains(t, err.Error(), "credit leg failed")
}

func TestLegNumbers(t *testing.T) {
	assert.Equal(t, "TRF-0A1B2C3D-OUT", DebitNumber("TRF-0A1B2C3D"))
	assert.Equal(t, "TRF-0A1B2C3D-IN", CreditNumber("TRF-0A1B2C3D"))
	assert.Equal(t, "TRF-0A1B2C3D-REV", ReversalNumber("TRF-0A1B2C3D"))
}
