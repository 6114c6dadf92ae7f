package handler

import (
	"github.com/shopspring/decimal"
)

// DepositRequest credits a passive product
type DepositRequest struct {
	ProductID   string          `json:"product_id" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type WithdrawalRequest struct {
	ProductID   string          `json:"product_id" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// PaymentRequest pays down an active product, optionally on behalf of another customer
type PaymentRequest struct {
	ProductID       string          `json:"product_id" binding:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"`
	PayerCustomerID string          `json:"payer_customer_id"`
	Description     string          `json:"description"`
}

type CreditChargeRequest struct {
	CreditCardID string          `json:"credit_card_id" binding:"required,uuid"`
	Amount       decimal.Decimal `json:"amount"`
	MerchantName string          `json:"merchant_name" binding:"required"`
	Description  string          `json:"description"`
}

// TransferRequest moves funds between two products
type TransferRequest struct {
	SourceProductID      string          `json:"source_product_id" binding:"required,uuid"`
	DestinationProductID string          `json:"destination_product_id" binding:"required,uuid"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
}

// CorrectionRequest changes the description or status of a record.
// Omitted fields are left untouched.
type CorrectionRequest struct {
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// PaginationParams represents offset pagination for list endpoints
type PaginationParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

type TransferListParams struct {
	State string `form:"state" binding:"required"`
}
