package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"

	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/finnova-banking-ledger/internal/platform/httpserver/middleware"
	"github.com/finnova-banking-ledger/internal/platform/httpserver/response"
	"github.com/finnova-banking-ledger/internal/transaction_processor/saga"
	"github.com/finnova-banking-ledger/internal/transaction_processor/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Deposit(ctx context.Context, req service.DepositRequest) (*transaction.Transaction, error) {
	args := m.Called(ctx, req)
	return txOrNil(args.Get(0)), args.Error(1)
}

func (m *MockProcessor) Withdrawal(ctx context.Context, req service.WithdrawalRequest) (*transaction.Transaction, error) {
	args := m.Called(ctx, req)
	return txOrNil(args.Get(0)), args.Error(1)
}

func (m *MockProcessor) Payment(ctx context.Context, req service.PaymentRequest) (*transaction.Transaction, error) {
	args := m.Called(ctx, req)
	return txOrNil(args.Get(0)), args.Error(1)
}

func (m *MockProcessor) CreditCharge(ctx context.Context, req service.CreditChargeRequest) (*transaction.Transaction, error) {
	args := m.Called(ctx, req)
	return txOrNil(args.Get(0)), args.Error(1)
}

type MockQueries struct {
	mock.Mock
}

func (m *MockQueries) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	return txOrNil(args.Get(0)), args.Error(1)
}

func (m *MockQueries) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, productID)
	return txsOrNil(args.Get(0)), args.Error(1)
}

func (m *MockQueries) GetByCustomer(ctx context.Context, customerID string) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, customerID)
	return txsOrNil(args.Get(0)), args.Error(1)
}

func (m *MockQueries) GetLast10(ctx context.Context, productID uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, productID)
	return txsOrNil(args.Get(0)), args.Error(1)
}

func (m *MockQueries) GetBalance(ctx context.Context, productID uuid.UUID) (*service.Balance, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Balance), args.Error(1)
}

func (m *MockQueries) GetAll(ctx context.Context, limit, offset int) ([]*transaction.Transaction, int64, error) {
	args := m.Called(ctx, limit, offset)
	return txsOrNil(args.Get(0)), args.Get(1).(int64), args.Error(2)
}

func (m *MockQueries) Correct(ctx context.Context, id uuid.UUID, c service.Correction) (*transaction.Transaction, error) {
	args := m.Called(ctx, id, c)
	return txOrNil(args.Get(0)), args.Error(1)
}

func (m *MockQueries) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTransfers struct {
	mock.Mock
}

func (m *MockTransfers) TransferOwnAccounts(ctx context.Context, req saga.TransferRequest) (*saga.TransferResult, error) {
	args := m.Called(ctx, req)
	return resultOrNil(args.Get(0)), args.Error(1)
}

func (m *MockTransfers) TransferThirdParty(ctx context.Context, req saga.TransferRequest) (*saga.TransferResult, error) {
	args := m.Called(ctx, req)
	return resultOrNil(args.Get(0)), args.Error(1)
}

func (m *MockTransfers) Get(ctx context.Context, token string) (*saga.TransferResult, error) {
	args := m.Called(ctx, token)
	return resultOrNil(args.Get(0)), args.Error(1)
}

func (m *MockTransfers) ListByState(ctx context.Context, state transfer.State) ([]*transfer.Transfer, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transfer.Transfer), args.Error(1)
}

func (m *MockTransfers) Reverse(ctx context.Context, token string) (*saga.TransferResult, error) {
	args := m.Called(ctx, token)
	return resultOrNil(args.Get(0)), args.Error(1)
}

func txOrNil(v interface{}) *transaction.Transaction {
	if v == nil {
		return nil
	}
	return v.(*transaction.Transaction)
}

func txsOrNil(v interface{}) []*transaction.Transaction {
	if v == nil {
		return nil
	}
	return v.([]*transaction.Transaction)
}

func resultOrNil(v interface{}) *saga.TransferResult {
	if v == nil {
		return nil
	}
	return v.(*saga.TransferResult)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	return r
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CorrelationIDHeader, "corr-test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope decodes the response body keeping data raw
type envelope struct {
	Data          json.RawMessage     `json:"data"`
	Error         *response.ErrorInfo `json:"error"`
	CorrelationID string              `json:"correlation_id"`
	Meta          *response.MetaInfo  `json:"meta"`
}
