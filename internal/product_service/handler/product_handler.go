package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/finnova-banking-ledger/internal/domain/product"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/platform/httpserver/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService is the balance-owning store behind the handler
type ProductService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error)
	CreateProduct(ctx context.Context, params product.CreateParams) (*product.Product, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*product.Product, error)
	ApplyBalance(ctx context.Context, id uuid.UUID, update product.BalanceUpdate) (*product.Product, error)
}

// CreateProductRequest opens a passive account or an active credit line
type CreateProductRequest struct {
	CustomerID                string          `json:"customer_id" binding:"required"`
	ProductType               string          `json:"product_type" binding:"required"`
	Currency                  string          `json:"currency" binding:"omitempty,len=3"`
	InitialBalance            decimal.Decimal `json:"initial_balance"`
	CreditLimit               decimal.Decimal `json:"credit_limit"`
	MaxTransactionsWithoutFee *int            `json:"max_transactions_without_fee" binding:"omitempty,min=0"`
	MovementDay               *int            `json:"movement_day"`
}

type ListParams struct {
	CustomerID string `form:"customer_id" binding:"required"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	service ProductService
	logger  *slog.Logger
}

func NewProductHandler(logger *slog.Logger, service ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	p, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get product", err)
		return
	}
	response.RespondOK(c, p)
}

// UpdateBalance applies a balance change computed by the ledger
func (h *ProductHandler) UpdateBalance(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	var req product.BalanceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		response.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.service.ApplyBalance(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, "Failed to update balance", err)
		return
	}
	response.RespondOK(c, p)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		response.RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.service.CreateProduct(c.Request.Context(), product.CreateParams{
		CustomerID:                req.CustomerID,
		ProductType:               shared.ProductType(req.ProductType),
		Currency:                  req.Currency,
		InitialBalance:            req.InitialBalance,
		CreditLimit:               req.CreditLimit,
		MaxTransactionsWithoutFee: req.MaxTransactionsWithoutFee,
		MovementDay:               req.MovementDay,
	})
	if err != nil {
		h.respondError(c, "Failed to create product", err)
		return
	}
	response.RespondCreated(c, p)
}

func (h *ProductHandler) ListByCustomer(c *gin.Context) {
	var params ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.RespondBadRequest(c, "Query parameter customer_id is required")
		return
	}

	items, err := h.service.ListByCustomer(c.Request.Context(), params.CustomerID)
	if err != nil {
		h.respondError(c, "Failed to list products", err)
		return
	}
	if items == nil {
		items = []*product.Product{}
	}
	response.RespondOK(c, items)
}

func (h *ProductHandler) productID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Error("Invalid product ID", "id", raw, "error", err)
		response.RespondBadRequest(c, "Invalid product ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProductHandler) respondError(c *gin.Context, msg string, err error) {
	var (
		insufficient shared.ErrInsufficientBalance
		invalidOp    product.ErrInvalidOperation
	)
	switch {
	case errors.Is(err, shared.ErrProductNotFound{}):
		response.RespondWithError(c, http.StatusNotFound, response.CodeProductNotFound, err.Error())
	case errors.As(err, &insufficient):
		response.RespondWithError(c, http.StatusBadRequest, response.CodeInsufficientBalance, insufficient.Error())
	case errors.As(err, &invalidOp):
		response.RespondWithError(c, http.StatusBadRequest, response.CodeInvalidOperation, invalidOp.Error())
	case errors.Is(err, shared.ErrOverdueDebt{}):
		response.RespondWithError(c, http.StatusForbidden, response.CodeOverdueDebt, err.Error())
	case errors.Is(err, product.ErrConcurrentModification{}):
		h.logger.Warn(msg, "error", err)
		response.RespondWithError(c, http.StatusConflict, response.CodeConflict, err.Error())
	default:
		h.logger.Error(msg, "error", err)
		response.RespondInternalError(c)
		return
	}
	h.logger.Warn(msg, "error", err)
}
