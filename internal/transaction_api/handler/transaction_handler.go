package handler

import (
	"context"
	"log/slog"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/finnova-banking-ledger/internal/platform/httpserver/middleware"
	"github.com/finnova-banking-ledger/internal/platform/httpserver/response"
	"github.com/finnova-banking-ledger/internal/transaction_processor/saga"
	"github.com/finnova-banking-ledger/internal/transaction_processor/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerQueries is the read and administrative side of the ledger
type LedgerQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	GetByProduct(ctx context.Context, productID uuid.UUID) ([]*transaction.Transaction, error)
	GetByCustomer(ctx context.Context, customerID string) ([]*transaction.Transaction, error)
	GetLast10(ctx context.Context, productID uuid.UUID) ([]*transaction.Transaction, error)
	GetBalance(ctx context.Context, productID uuid.UUID) (*service.Balance, error)
	GetAll(ctx context.Context, limit, offset int) ([]*transaction.Transaction, int64, error)
	Correct(ctx context.Context, id uuid.UUID, c service.Correction) (*transaction.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Transfers starts, inspects and compensates two-leg transfers
type Transfers interface {
	TransferOwnAccounts(ctx context.Context, req saga.TransferRequest) (*saga.TransferResult, error)
	TransferThirdParty(ctx context.Context, req saga.TransferRequest) (*saga.TransferResult, error)
	Get(ctx context.Context, token string) (*saga.TransferResult, error)
	ListByState(ctx context.Context, state transfer.State) ([]*transfer.Transfer, error)
	Reverse(ctx context.Context, token string) (*saga.TransferResult, error)
}

// TransactionHandler handles HTTP requests for ledger operations
type TransactionHandler struct {
	processor service.TransactionProcessor
	queries   LedgerQueries
	transfers Transfers
	logger    *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, processor service.TransactionProcessor, queries LedgerQueries, transfers Transfers) *TransactionHandler {
	return &TransactionHandler{
		processor: processor,
		queries:   queries,
		transfers: transfers,
		logger:    logger,
	}
}

func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if !h.bind(c, &req) {
		return
	}

	tx, err := h.processor.Deposit(c.Request.Context(), service.DepositRequest{
		ProductID:     uuid.MustParse(req.ProductID),
		Amount:        req.Amount,
		Description:   req.Description,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		respondError(c, h.logger, "Deposit failed", err)
		return
	}
	response.RespondCreated(c, tx)
}

func (h *TransactionHandler) Withdrawal(c *gin.Context) {
	var req WithdrawalRequest
	if !h.bind(c, &req) {
		return
	}

	tx, err := h.processor.Withdrawal(c.Request.Context(), service.WithdrawalRequest{
		ProductID:     uuid.MustParse(req.ProductID),
		Amount:        req.Amount,
		Description:   req.Description,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		respondError(c, h.logger, "Withdrawal failed", err)
		return
	}
	response.RespondCreated(c, tx)
}

func (h *TransactionHandler) Payment(c *gin.Context) {
	var req PaymentRequest
	if !h.bind(c, &req) {
		return
	}

	tx, err := h.processor.Payment(c.Request.Context(), service.PaymentRequest{
		ProductID:       uuid.MustParse(req.ProductID),
		Amount:          req.Amount,
		PayerCustomerID: req.PayerCustomerID,
		Description:     req.Description,
		CorrelationID:   middleware.GetCorrelationID(c),
	})
	if err != nil {
		respondError(c, h.logger, "Payment failed", err)
		return
	}
	response.RespondCreated(c, tx)
}

func (h *TransactionHandler) CreditCharge(c *gin.Context) {
	var req CreditChargeRequest
	if !h.bind(c, &req) {
		return
	}

	tx, err := h.processor.CreditCharge(c.Request.Context(), service.CreditChargeRequest{
		CreditCardID:  uuid.MustParse(req.CreditCardID),
		Amount:        req.Amount,
		MerchantName:  req.MerchantName,
		Description:   req.Description,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		respondError(c, h.logger, "Credit charge failed", err)
		return
	}
	response.RespondCreated(c, tx)
}

func (h *TransactionHandler) TransferOwn(c *gin.Context) {
	h.transfer(c, h.transfers.TransferOwnAccounts)
}

func (h *TransactionHandler) TransferThirdParty(c *gin.Context) {
	h.transfer(c, h.transfers.TransferThirdParty)
}

func (h *TransactionHandler) transfer(c *gin.Context, run func(context.Context, saga.TransferRequest) (*saga.TransferResult, error)) {
	var req TransferRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := run(c.Request.Context(), saga.TransferRequest{
		SourceProductID:      uuid.MustParse(req.SourceProductID),
		DestinationProductID: uuid.MustParse(req.DestinationProductID),
		Amount:               req.Amount,
		Description:          req.Description,
		CorrelationID:        middleware.GetCorrelationID(c),
	})
	if err != nil {
		respondError(c, h.logger, "Transfer failed", err)
		return
	}
	response.RespondCreated(c, result)
}

// List returns one page of the whole ledger
func (h *TransactionHandler) List(c *gin.Context) {
	var page PaginationParams
	if err := c.ShouldBindQuery(&page); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		response.RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	items, total, err := h.queries.GetAll(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		respondError(c, h.logger, "Failed to list transactions", err)
		return
	}
	response.RespondWithPage(c, nonNil(items), page.Limit, page.Offset, total)
}

func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "Invalid transaction ID")
	if !ok {
		return
	}

	tx, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to get transaction", err)
		return
	}
	response.RespondOK(c, tx)
}

// Correct applies an administrative description or status change
func (h *TransactionHandler) Correct(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "Invalid transaction ID")
	if !ok {
		return
	}
	var req CorrectionRequest
	if !h.bind(c, &req) {
		return
	}

	correction := service.Correction{Description: req.Description}
	if req.Status != nil {
		status := shared.TransactionStatus(*req.Status)
		correction.Status = &status
	}

	tx, err := h.queries.Correct(c.Request.Context(), id, correction)
	if err != nil {
		respondError(c, h.logger, "Failed to correct transaction", err)
		return
	}
	response.RespondOK(c, tx)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "Invalid transaction ID")
	if !ok {
		return
	}

	if err := h.queries.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "Failed to delete transaction", err)
		return
	}
	response.RespondNoContent(c)
}

func (h *TransactionHandler) GetByProduct(c *gin.Context) {
	productID, ok := h.pathUUID(c, "productId", "Invalid product ID")
	if !ok {
		return
	}

	items, err := h.queries.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, h.logger, "Failed to get product transactions", err)
		return
	}
	response.RespondOK(c, nonNil(items))
}

func (h *TransactionHandler) GetLast10(c *gin.Context) {
	productID, ok := h.pathUUID(c, "productId", "Invalid product ID")
	if !ok {
		return
	}

	items, err := h.queries.GetLast10(c.Request.Context(), productID)
	if err != nil {
		respondError(c, h.logger, "Failed to get latest transactions", err)
		return
	}
	response.RespondOK(c, nonNil(items))
}

// GetBalance proxies the live balance held by the product service
func (h *TransactionHandler) GetBalance(c *gin.Context) {
	productID, ok := h.pathUUID(c, "productId", "Invalid product ID")
	if !ok {
		return
	}

	balance, err := h.queries.GetBalance(c.Request.Context(), productID)
	if err != nil {
		respondError(c, h.logger, "Failed to get balance", err)
		return
	}
	response.RespondOK(c, balance)
}

func (h *TransactionHandler) GetByCustomer(c *gin.Context) {
	customerID := c.Param("customerId")
	items, err := h.queries.GetByCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, h.logger, "Failed to get customer transactions", err)
		return
	}
	response.RespondOK(c, nonNil(items))
}

func (h *TransactionHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		response.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *TransactionHandler) pathUUID(c *gin.Context, name, message string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Error(message, name, raw, "error", err)
		response.RespondBadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}

// nonNil keeps empty lists rendered as [] rather than null
func nonNil(items []*transaction.Transaction) []*transaction.Transaction {
	if items == nil {
		return []*transaction.Transaction{}
	}
	return items
}
