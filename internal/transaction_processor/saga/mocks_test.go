package saga

import (
	"context"

	"github.com/finnova-banking-ledger/internal/domain/product"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAccountClient struct {
	mock.Mock
}

func (m *MockAccountClient) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockAccountClient) UpdateBalance(ctx context.Context, id uuid.UUID, update product.BalanceUpdate) (*product.Product, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

type MockSagaRepository struct {
	mock.Mock
}

func (m *MockSagaRepository) Create(ctx context.Context, t *transfer.Transfer) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockSagaRepository) Update(ctx context.Context, t *transfer.Transfer) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockSagaRepository) GetByToken(ctx context.Context, token string) (*transfer.Transfer, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Transfer), args.Error(1)
}

func (m *MockSagaRepository) ListByState(ctx context.Context, state transfer.State, limit int) ([]*transfer.Transfer, error) {
	args := m.Called(ctx, state, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transfer.Transfer), args.Error(1)
}

// MockLedger only answers token lookups; the orchestrator reads nothing else
type MockLedger struct {
	transaction.Repository
	mock.Mock
}

func (m *MockLedger) GetByTransferToken(ctx context.Context, token string) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

// fakeLegs finalizes legs in memory, failing those whose number is listed
type fakeLegs struct {
	failures map[string]error
	executed []*transaction.Transaction
}

func (f *fakeLegs) ExecuteLeg(_ context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	f.executed = append(f.executed, tx)
	if err, ok := f.failures[tx.TransactionNumber]; ok {
		tx.Status = shared.TransactionStatusFailed
		return tx, err
	}
	tx.Status = shared.TransactionStatusCompleted
	return tx, nil
}

type recordingSink struct {
	events  []string
	reasons []string
	tokens  []string
}

func (s *recordingSink) TransactionCreated(context.Context, *transaction.Transaction)           {}
func (s *recordingSink) TransactionCompleted(context.Context, *transaction.Transaction)         {}
func (s *recordingSink) TransactionFailed(context.Context, *transaction.Transaction, string)    {}

func (s *recordingSink) TransferCompleted(_ context.Context, tr *transfer.Transfer, _, _ *transaction.Transaction) {
	s.events = append(s.events, "transfer-completed")
	s.tokens = append(s.tokens, tr.Token)
}

func (s *recordingSink) TransferFailed(_ context.Context, token string, _ *transfer.Transfer, _, _ *transaction.Transaction, reason string) {
	s.events = append(s.events, "transfer-failed")
	s.reasons = append(s.reasons, reason)
	s.tokens = append(s.tokens, token)
}
