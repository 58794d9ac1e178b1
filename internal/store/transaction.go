package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/datastore4gh/datastore-gobackend/internal/models"
)

var (
	// ErrNotFound means no transaction exists for the given reference or id.
	ErrNotFound = errors.New("transaction not found")
	// ErrStatusConflict means an update tried to move a terminal transaction
	// to a different terminal status. The stored record is left untouched.
	ErrStatusConflict = errors.New("transaction already finalized with a different status")
)

// TransactionStore persists transactions in the payments collection.
type TransactionStore struct {
	collection *mongo.Collection
}

func NewTransactionStore(db *mongo.Database) *TransactionStore {
	return &TransactionStore{collection: db.Collection("payments")}
}

// EnsureIndexes creates the indexes the store queries by. Run once at startup.
func (s *TransactionStore) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "gateway_reference", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := s.collection.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create appends a new transaction record and returns its id.
func (s *TransactionStore) Create(ctx context.Context, tx *models.Transaction) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	tx.ID = primitive.NewObjectID()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, tx); err != nil {
		return "", fmt.Errorf("failed to save transaction: %w", err)
	}
	return tx.ID.Hex(), nil
}

// FindByReference returns the transaction for a gateway reference. At most one
// match is expected; duplicates are a data-integrity fault, logged, and the
// earliest record wins deterministically.
func (s *TransactionStore) FindByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := s.collection.Find(ctx, bson.M{"gateway_reference": reference},
		options.Find().SetSort(bson.M{"created_at": 1}).SetLimit(2))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	defer cur.Close(ctx)

	var txs []models.Transaction
	if err := cur.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	if len(txs) == 0 {
		return nil, ErrNotFound
	}
	if len(txs) > 1 {
		log.Printf("Duplicate transactions for reference %s, using earliest", reference)
	}
	return &txs[0], nil
}

// UpdateStatus moves a pending transaction to a terminal status and stores the
// raw gateway payload. Repeating the same terminal status is a no-op, so
// concurrent verifies converge; moving between terminal statuses is rejected.
func (s *TransactionStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, raw map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":       status,
		"gateway_data": raw,
		"updated_at":   time.Now(),
	}}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": id, "status": models.StatusPending}, update)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing pending matched: either the record is gone or it already went
	// terminal, possibly through a concurrent verify.
	var existing models.Transaction
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch transaction: %w", err)
	}
	if existing.Status == status {
		return nil
	}
	log.Printf("Refusing to overwrite transaction %s status %s with %s", id.Hex(), existing.Status, status)
	return ErrStatusConflict
}

// List returns transactions newest first, optionally filtered by status.
func (s *TransactionStore) List(ctx context.Context, status string) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if status != "" {
		query["status"] = status
	}

	cur, err := s.collection.Find(ctx, query, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer cur.Close(ctx)

	var txs []models.Transaction
	if err := cur.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txs, nil
}
