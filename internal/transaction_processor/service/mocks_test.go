package service

import (
	"context"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/product"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *transaction.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByNumber(ctx context.Context, number string) (*transaction.Transaction, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetAll(ctx context.Context, limit, offset int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) GetByProductID(ctx context.Context, productID uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByCustomerID(ctx context.Context, customerID string) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetLatestByProductID(ctx context.Context, productID uuid.UUID, limit int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByTransferToken(ctx context.Context, token string) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountCompletedInRange(ctx context.Context, productID uuid.UUID, types []shared.TransactionType, from, to time.Time) (int64, error) {
	args := m.Called(ctx, productID, types, from, to)
	return args.Get(0).(int64), args.Error(1)
}

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

// recordingSink captures events in order instead of publishing them
type recordingSink struct {
	events []string
	failed []string
}

func (s *recordingSink) TransactionCreated(_ context.Context, tx *transaction.Transaction) {
	s.events = append(s.events, "created:"+string(tx.Status))
}

func (s *recordingSink) TransactionCompleted(_ context.Context, tx *transaction.Transaction) {
	s.events = append(s.events, "completed:"+string(tx.Status))
}

func (s *recordingSink) TransactionFailed(_ context.Context, tx *transaction.Transaction, reason string) {
	s.events = append(s.events, "failed:"+string(tx.Status))
	s.failed = append(s.failed, reason)
}

func (s *recordingSink) TransferCompleted(_ context.Context, _ *transfer.Transfer, _, _ *transaction.Transaction) {
	s.events = append(s.events, "transfer-completed")
}

func (s *recordingSink) TransferFailed(_ context.Context, _ string, _ *transfer.Transfer, _, _ *transaction.Transaction, reason string) {
	s.events = append(s.events, "transfer-failed")
	s.failed = append(s.failed, reason)
}
