package mongo

import (
	"fmt"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type transactionDocument struct {
	ID                    string               `bson:"_id"`
	TransactionNumber     string               `bson:"transaction_number"`
	CustomerID            string               `bson:"customer_id"`
	ProductID             string               `bson:"product_id"`
	ProductType           string               `bson:"product_type"`
	TransactionType       string               `bson:"transaction_type"`
	Amount                primitive.Decimal128 `bson:"amount"`
	BalanceBefore         primitive.Decimal128 `bson:"balance_before"`
	BalanceAfter          primitive.Decimal128 `bson:"balance_after"`
	Commission            primitive.Decimal128 `bson:"commission"`
	DestinationProductID  string               `bson:"destination_product_id,omitempty"`
	DestinationCustomerID string               `bson:"destination_customer_id,omitempty"`
	TransferToken         string               `bson:"transfer_token,omitempty"`
	Description           string               `bson:"description"`
	Status                string               `bson:"status"`
	CorrelationID         string               `bson:"correlation_id,omitempty"`
	TransactionDate       time.Time            `bson:"transaction_date"`
	CreatedAt             time.Time            `bson:"created_at"`
	UpdatedAt             time.Time            `bson:"updated_at"`
}

func toTransactionDocument(tx *transaction.Transaction) (*transactionDocument, error) {
	doc := &transactionDocument{
		ID:                    tx.ID.String(),
		TransactionNumber:     tx.TransactionNumber,
		CustomerID:            tx.CustomerID,
		ProductID:             tx.ProductID.String(),
		ProductType:           string(tx.ProductType),
		TransactionType:       string(tx.TransactionType),
		DestinationCustomerID: tx.DestinationCustomerID,
		TransferToken:         tx.TransferToken,
		Description:           tx.Description,
		Status:                string(tx.Status),
		CorrelationID:         tx.CorrelationID,
		TransactionDate:       tx.TransactionDate.UTC(),
		CreatedAt:             tx.CreatedAt.UTC(),
		UpdatedAt:             tx.UpdatedAt.UTC(),
	}
	if tx.DestinationProductID != nil {
		doc.DestinationProductID = tx.DestinationProductID.String()
	}

	var err error
	if doc.Amount, err = toDecimal128(tx.Amount); err != nil {
		return nil, err
	}
	if doc.BalanceBefore, err = toDecimal128(tx.BalanceBefore); err != nil {
		return nil, err
	}
	if doc.BalanceAfter, err = toDecimal128(tx.BalanceAfter); err != nil {
		return nil, err
	}
	if doc.Commission, err = toDecimal128(tx.Commission); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *transactionDocument) toDomain() (*transaction.Transaction, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q: %w", d.ID, err)
	}
	productID, err := uuid.Parse(d.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", d.ProductID, err)
	}

	tx := &transaction.Transaction{
		ID:                    id,
		TransactionNumber:     d.TransactionNumber,
		CustomerID:            d.CustomerID,
		ProductID:             productID,
		ProductType:           shared.ProductType(d.ProductType),
		TransactionType:       shared.TransactionType(d.TransactionType),
		DestinationCustomerID: d.DestinationCustomerID,
		TransferToken:         d.TransferToken,
		Description:           d.Description,
		Status:                shared.TransactionStatus(d.Status),
		CorrelationID:         d.CorrelationID,
		TransactionDate:       d.TransactionDate,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
	if d.DestinationProductID != "" {
		dest, err := uuid.Parse(d.DestinationProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid destination product id %q: %w", d.DestinationProductID, err)
		}
		tx.DestinationProductID = &dest
	}

	if tx.Amount, err = fromDecimal128(d.Amount); err != nil {
		return nil, err
	}
	if tx.BalanceBefore, err = fromDecimal128(d.BalanceBefore); err != nil {
		return nil, err
	}
	if tx.BalanceAfter, err = fromDecimal128(d.BalanceAfter); err != nil {
		return nil, err
	}
	if tx.Commission, err = fromDecimal128(d.Commission); err != nil {
		return nil, err
	}
	return tx, nil
}
