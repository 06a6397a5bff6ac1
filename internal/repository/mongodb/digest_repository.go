package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kisanpay/milkledger/internal/domain/models"
)

// DigestRepository archives nightly collection digests. Write-only from the
// application's point of view; summaries are always recomputed from the
// ledgers, never read back from here.
type DigestRepository struct {
	coll *mongo.Collection
}

// NewDigestRepository builds the collection_digests repository.
func NewDigestRepository(store *Store) *DigestRepository {
	return &DigestRepository{coll: store.db.Collection(digestsCollection)}
}

// Save stores one digest document.
func (r *DigestRepository) Save(ctx context.Context, digest models.CollectionDigest) error {
	if _, err := r.coll.InsertOne(ctx, digest); err != nil {
		return storeErr("insert collection digest", err)
	}
	return nil
}
