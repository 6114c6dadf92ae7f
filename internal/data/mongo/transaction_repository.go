// Package mongo implements the ledger store and the transfer saga store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransactionCollectionName holds one document per ledger record
const TransactionCollectionName = "transactions"

// TransactionRepository implements transaction.Repository on MongoDB
type TransactionRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger, db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

var _ transaction.Repository = (*TransactionRepository)(nil)

func (r *TransactionRepository) collection() *mongo.Collection {
	return r.db.Collection(TransactionCollectionName)
}

// EnsureIndexes creates the unique number index and the lookup indexes
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_transaction_number"),
		},
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "transaction_date", Value: -1}},
			Options: options.Index().SetName("idx_product_date"),
		},
		{
			Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "transaction_date", Value: -1}},
			Options: options.Index().SetName("idx_customer_date"),
		},
		{
			Keys:    bson.D{{Key: "transfer_token", Value: 1}},
			Options: options.Index().SetName("idx_transfer_token").SetSparse(true),
		},
	}
	if _, err := r.collection().Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}
	return nil
}

// Create inserts a new record. A transaction number collision is reported as
// ErrDuplicateTransactionNumber so the caller can retry with a fresh number.
func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	doc, err := toTransactionDocument(tx)
	if err != nil {
		return err
	}

	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return transaction.ErrDuplicateTransactionNumber{Number: tx.TransactionNumber}
		}
		r.logger.Error("Failed to create transaction",
			"transaction_number", tx.TransactionNumber,
			"error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *transaction.Transaction) error {
	doc, err := toTransactionDocument(tx)
	if err != nil {
		return err
	}

	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		r.logger.Error("Failed to update transaction",
			"transaction_number", tx.TransactionNumber,
			"status", tx.Status,
			"error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if result.MatchedCount == 0 {
		return transaction.ErrTransactionNotFound{ID: tx.ID}
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		r.logger.Error("Failed to delete transaction", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if result.DeletedCount == 0 {
		return transaction.ErrTransactionNotFound{ID: id}
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	tx, err := r.findOne(ctx, bson.M{"_id": id.String()})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, transaction.ErrTransactionNotFound{ID: id}
	}
	return tx, err
}

func (r *TransactionRepository) GetByNumber(ctx context.Context, number string) (*transaction.Transaction, error) {
	tx, err := r.findOne(ctx, bson.M{"transaction_number": number})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, transaction.ErrTransactionNotFound{Number: number}
	}
	return tx, err
}

func (r *TransactionRepository) GetAll(ctx context.Context, limit, offset int) ([]*transaction.Transaction, error) {
	opts := options.Find().
		SetSort(newestFirst()).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *TransactionRepository) CountAll(ctx context.Context) (int64, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to count transactions", "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *TransactionRepository) GetByProductID(ctx context.Context, productID uuid.UUID) ([]*transaction.Transaction, error) {
	return r.find(ctx, bson.M{"product_id": productID.String()}, options.Find().SetSort(newestFirst()))
}

func (r *TransactionRepository) GetByCustomerID(ctx context.Context, customerID string) ([]*transaction.Transaction, error) {
	return r.find(ctx, bson.M{"customer_id": customerID}, options.Find().SetSort(newestFirst()))
}

func (r *TransactionRepository) GetLatestByProductID(ctx context.Context, productID uuid.UUID, limit int) ([]*transaction.Transaction, error) {
	opts := options.Find().SetSort(newestFirst()).SetLimit(int64(limit))
	return r.find(ctx, bson.M{"product_id": productID.String()}, opts)
}

// GetByTransferToken returns the legs of a transfer in creation order
func (r *TransactionRepository) GetByTransferToken(ctx context.Context, token string) ([]*transaction.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, bson.M{"transfer_token": token}, opts)
}

func (r *TransactionRepository) CountCompletedInRange(ctx context.Context, productID uuid.UUID, types []shared.TransactionType, from, to time.Time) (int64, error) {
	count, err := r.collection().CountDocuments(ctx, completedInRangeFilter(productID, types, from, to))
	if err != nil {
		r.logger.Error("Failed to count monthly transactions",
			"product_id", productID.String(),
			"from", from,
			"to", to,
			"error", err)
		return 0, fmt.Errorf("failed to count transactions in range: %w", err)
	}
	return count, nil
}

func (r *TransactionRepository) findOne(ctx context.Context, filter bson.M) (*transaction.Transaction, error) {
	var doc transactionDocument
	if err := r.collection().FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		r.logger.Error("Failed to get transaction", "filter", filter, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return doc.toDomain()
}

func (r *TransactionRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*transaction.Transaction, error) {
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query transactions", "filter", filter, "error", err)
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []transactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode transactions", "error", err)
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	txs := make([]*transaction.Transaction, 0, len(docs))
	for i := range docs {
		tx, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func newestFirst() bson.D {
	return bson.D{{Key: "transaction_date", Value: -1}, {Key: "created_at", Value: -1}}
}

// completedInRangeFilter matches COMPLETED records of the given types for a
// product with an inclusive transaction date range.
func completedInRangeFilter(productID uuid.UUID, types []shared.TransactionType, from, to time.Time) bson.M {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return bson.M{
		"product_id":       productID.String(),
		"status":           string(shared.TransactionStatusCompleted),
		"transaction_type": bson.M{"$in": names},
		"transaction_date": bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
	}
}
