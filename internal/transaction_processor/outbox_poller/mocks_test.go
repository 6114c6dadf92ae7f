package outbox_poller

import (
	"context"

	"github.com/finnova-banking-ledger/internal/domain/outbox"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) GetByEventID(ctx context.Context, eventID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m.Called(tx).Get(0).(outbox.Repository)
}

type MockBrokerPublisher struct {
	mock.Mock
}

func (m *MockBrokerPublisher) PublishMessage(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

type MockEventWriter struct {
	mock.Mock
}

func (m *MockEventWriter) Publish(ctx context.Context, topic, key string, payload []byte) error {
	return m.Called(ctx, topic, key, payload).Error(0)
}

type MockDLQ struct {
	mock.Mock
}

func (m *MockDLQ) PublishToDLQ(ctx context.Context, key string, value []byte, reason string) error {
	return m.Called(ctx, key, value, reason).Error(0)
}

func (m *MockDLQ) Close() error {
	return m.Called().Error(0)
}
