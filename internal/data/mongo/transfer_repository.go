package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransferCollectionName holds one document per transfer saga, keyed by token
const TransferCollectionName = "transfers"

type transferDocument struct {
	Token                 string               `bson:"_id"`
	Type                  string               `bson:"transfer_type"`
	SourceProductID       string               `bson:"source_product_id"`
	SourceCustomerID      string               `bson:"source_customer_id"`
	DestinationProductID  string               `bson:"destination_product_id"`
	DestinationCustomerID string               `bson:"destination_customer_id"`
	Amount                primitive.Decimal128 `bson:"amount"`
	Description           string               `bson:"description"`
	State                 string               `bson:"state"`
	DebitTransactionID    string               `bson:"debit_transaction_id,omitempty"`
	CreditTransactionID   string               `bson:"credit_transaction_id,omitempty"`
	ReversalTransactionID string               `bson:"reversal_transaction_id,omitempty"`
	FailureReason         string               `bson:"failure_reason,omitempty"`
	CorrelationID         string               `bson:"correlation_id,omitempty"`
	CreatedAt             time.Time            `bson:"created_at"`
	UpdatedAt             time.Time            `bson:"updated_at"`
}

func toTransferDocument(t *transfer.Transfer) (*transferDocument, error) {
	amount, err := toDecimal128(t.Amount)
	if err != nil {
		return nil, err
	}
	return &transferDocument{
		Token:                 t.Token,
		Type:                  string(t.Type),
		SourceProductID:       t.SourceProductID.String(),
		SourceCustomerID:      t.SourceCustomerID,
		DestinationProductID:  t.DestinationProductID.String(),
		DestinationCustomerID: t.DestinationCustomerID,
		Amount:                amount,
		Description:           t.Description,
		State:                 string(t.State),
		DebitTransactionID:    optionalID(t.DebitTransactionID),
		CreditTransactionID:   optionalID(t.CreditTransactionID),
		ReversalTransactionID: optionalID(t.ReversalTransactionID),
		FailureReason:         t.FailureReason,
		CorrelationID:         t.CorrelationID,
		CreatedAt:             t.CreatedAt.UTC(),
		UpdatedAt:             t.UpdatedAt.UTC(),
	}, nil
}

func (d *transferDocument) toDomain() (*transfer.Transfer, error) {
	source, err := uuid.Parse(d.SourceProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid source product id %q: %w", d.SourceProductID, err)
	}
	dest, err := uuid.Parse(d.DestinationProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid destination product id %q: %w", d.DestinationProductID, err)
	}
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}

	t := &transfer.Transfer{
		Token:                 d.Token,
		Type:                  transfer.Type(d.Type),
		SourceProductID:       source,
		SourceCustomerID:      d.SourceCustomerID,
		DestinationProductID:  dest,
		DestinationCustomerID: d.DestinationCustomerID,
		Amount:                amount,
		Description:           d.Description,
		State:                 transfer.State(d.State),
		FailureReason:         d.FailureReason,
		CorrelationID:         d.CorrelationID,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
	if t.DebitTransactionID, err = parseOptionalID(d.DebitTransactionID); err != nil {
		return nil, err
	}
	if t.CreditTransactionID, err = parseOptionalID(d.CreditTransactionID); err != nil {
		return nil, err
	}
	if t.ReversalTransactionID, err = parseOptionalID(d.ReversalTransactionID); err != nil {
		return nil, err
	}
	return t, nil
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func parseOptionalID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q: %w", s, err)
	}
	return &id, nil
}

// TransferRepository implements transfer.Repository on MongoDB
type TransferRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewTransferRepository(logger *slog.Logger, db *mongo.Database) *TransferRepository {
	return &TransferRepository{db: db, logger: logger}
}

var _ transfer.Repository = (*TransferRepository)(nil)

func (r *TransferRepository) collection() *mongo.Collection {
	return r.db.Collection(TransferCollectionName)
}

func (r *TransferRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "state", Value: 1}, {Key: "updated_at", Value: 1}},
		Options: options.Index().SetName("idx_state_updated"),
	})
	if err != nil {
		return fmt.Errorf("failed to create transfer indexes: %w", err)
	}
	return nil
}

func (r *TransferRepository) Create(ctx context.Context, t *transfer.Transfer) error {
	doc, err := toTransferDocument(t)
	if err != nil {
		return err
	}
	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to create transfer", "transfer_token", t.Token, "error", err)
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (r *TransferRepository) Update(ctx context.Context, t *transfer.Transfer) error {
	doc, err := toTransferDocument(t)
	if err != nil {
		return err
	}
	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": t.Token}, doc)
	if err != nil {
		r.logger.Error("Failed to update transfer",
			"transfer_token", t.Token,
			"state", t.State,
			"error", err)
		return fmt.Errorf("failed to update transfer: %w", err)
	}
	if result.MatchedCount == 0 {
		return transfer.ErrTransferNotFound{Token: t.Token}
	}
	return nil
}

func (r *TransferRepository) GetByToken(ctx context.Context, token string) (*transfer.Transfer, error) {
	var doc transferDocument
	if err := r.collection().FindOne(ctx, bson.M{"_id": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transfer.ErrTransferNotFound{Token: token}
		}
		r.logger.Error("Failed to get transfer", "transfer_token", token, "error", err)
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return doc.toDomain()
}

// ListByState returns the oldest sagas in the given state first
func (r *TransferRepository) ListByState(ctx context.Context, state transfer.State, limit int) ([]*transfer.Transfer, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection().Find(ctx, bson.M{"state": string(state)}, opts)
	if err != nil {
		r.logger.Error("Failed to list transfers", "state", state, "error", err)
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []transferDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode transfers: %w", err)
	}

	transfers := make([]*transfer.Transfer, 0, len(docs))
	for i := range docs {
		t, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, nil
}
