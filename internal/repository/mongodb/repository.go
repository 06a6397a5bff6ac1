package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kisanpay/milkledger/internal/domain/models"
)

const (
	customersCollection = "users"
	entriesCollection   = "milk_entries"
	paymentsCollection  = "payments"
	digestsCollection   = "collection_digests"
)

// Store owns the MongoDB connection shared by the concrete repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// EnsureIndexes creates the indexes the ledger invariants depend on. The
// compound unique index on milk_entries is the atomic guard behind
// DuplicateSlot; it must exist before any entry write is accepted.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	entryIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "customer_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "shift", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_customer_date_shift"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "shift", Value: 1}},
			Options: options.Index().SetName("session_lookup"),
		},
	}
	if _, err := s.db.Collection(entriesCollection).Indexes().CreateMany(ctx, entryIndexes); err != nil {
		return fmt.Errorf("create milk_entries indexes: %w", err)
	}

	customerIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "customer_code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_customer_code"),
		},
	}
	if _, err := s.db.Collection(customersCollection).Indexes().CreateMany(ctx, customerIndexes); err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}

	paymentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("payment_window"),
		},
	}
	if _, err := s.db.Collection(paymentsCollection).Indexes().CreateMany(ctx, paymentIndexes); err != nil {
		return fmt.Errorf("create payments indexes: %w", err)
	}

	return nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// storeErr maps a raw driver failure onto the StoreUnavailable error kind,
// keeping the operation name for logs.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrStoreUnavailable, op, err)
}
