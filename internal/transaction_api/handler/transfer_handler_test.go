package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/finnova-banking-ledger/internal/platform/httpserver/response"
	"github.com/finnova-banking-ledger/internal/transaction_processor/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransferHandler(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		setupMocks   func(m *MockTransfers)
		expectedCode int
		expectedErr  string
	}{
		{
			name:   "ListCreditFailed",
			method: http.MethodGet,
			path:   "/transfers?state=CREDIT_FAILED",
			setupMocks: func(m *MockTransfers) {
				m.On("ListByState", mock.Anything, transfer.StateCreditFailed).
					Return([]*transfer.Transfer{{Token: "TRF-1", State: transfer.StateCreditFailed}}, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "ListWithoutState",
			method:       http.MethodGet,
			path:         "/transfers",
			setupMocks:   func(m *MockTransfers) {},
			expectedCode: http.StatusBadRequest,
			expectedErr:  response.CodeBadRequest,
		},
		{
			name:   "ListUnknownState",
			method: http.MethodGet,
			path:   "/transfers?state=LOST",
			setupMocks: func(m *MockTransfers) {
				m.On("ListByState", mock.Anything, transfer.State("LOST")).
					Return(nil, shared.Invalid("Invalid transfer state: LOST")).Once()
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  response.CodeInvalidTransaction,
		},
		{
			name:   "GetFound",
			method: http.MethodGet,
			path:   "/transfers/TRF-1",
			setupMocks: func(m *MockTransfers) {
				m.On("Get", mock.Anything, "TRF-1").Return(&saga.TransferResult{
					Transfer: &transfer.Transfer{Token: "TRF-1", State: transfer.StateCompleted},
					Debit:    &transaction.Transaction{TransactionNumber: "TRF-1-OUT"},
					Credit:   &transaction.Transaction{TransactionNumber: "TRF-1-IN"},
				}, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "GetMissing",
			method: http.MethodGet,
			path:   "/transfers/TRF-404",
			setupMocks: func(m *MockTransfers) {
				m.On("Get", mock.Anything, "TRF-404").Return(nil, transfer.ErrTransferNotFound{Token: "TRF-404"}).Once()
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  response.CodeTransferNotFound,
		},
		{
			name:   "ReverseCreated",
			method: http.MethodPost,
			path:   "/transfers/TRF-1/reverse",
			setupMocks: func(m *MockTransfers) {
				m.On("Reverse", mock.Anything, "TRF-1").Return(&saga.TransferResult{
					Transfer: &transfer.Transfer{Token: "TRF-1", State: transfer.StateReversed},
					Reversal: &transaction.Transaction{TransactionNumber: "TRF-1-REV"},
				}, nil).Once()
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:   "ReverseWrongState",
			method: http.MethodPost,
			path:   "/transfers/TRF-1/reverse",
			setupMocks: func(m *MockTransfers) {
				m.On("Reverse", mock.Anything, "TRF-1").Return(nil, transfer.ErrInvalidStateTransition{
					Token: "TRF-1",
					From:  transfer.StateCompleted,
					To:    transfer.StateReversed,
				}).Once()
			},
			expectedCode: http.StatusConflict,
			expectedErr:  response.CodeConflict,
		},
		{
			name:   "ReverseAlreadyRunning",
			method: http.MethodPost,
			path:   "/transfers/TRF-1/reverse",
			setupMocks: func(m *MockTransfers) {
				m.On("Reverse", mock.Anything, "TRF-1").Return(nil, transfer.ErrReversalInProgress{
					Token:             "TRF-1",
					TransactionNumber: "TRF-1-REV",
				}).Once()
			},
			expectedCode: http.StatusConflict,
			expectedErr:  response.CodeConflict,
		},
		{
			name:   "ReverseLegFailed",
			method: http.MethodPost,
			path:   "/transfers/TRF-1/reverse",
			setupMocks: func(m *MockTransfers) {
				m.On("Reverse", mock.Anything, "TRF-1").Return(nil, transfer.ErrLegFailed{
					Token: "TRF-1",
					Leg:   "reversal",
					Err:   fmt.Errorf("remote: %w", shared.ErrProductNotFound{}),
				}).Once()
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  response.CodeProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockTransfers)
			tt.setupMocks(m)
			h := NewTransferHandler(testLogger(), m)

			r := newTestRouter()
			r.GET("/transfers", h.List)
			r.GET("/transfers/:token", h.Get)
			r.POST("/transfers/:token/reverse", h.Reverse)
			w := perform(r, tt.method, tt.path, "")

			assert.Equal(t, tt.expectedCode, w.Code)
			var body envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.expectedErr != "" {
				require.NotNil(t, body.Error)
				assert.Equal(t, tt.expectedErr, body.Error.Code)
			} else {
				assert.Nil(t, body.Error)
			}
			m.AssertExpectations(t)
		})
	}
}
