package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kisanpay/milkledger/internal/domain/models"
)

// PaymentRepository persists the append-only payment ledger.
type PaymentRepository struct {
	coll *mongo.Collection
}

// NewPaymentRepository builds the payments repository.
func NewPaymentRepository(store *Store) *PaymentRepository {
	return &PaymentRepository{coll: store.db.Collection(paymentsCollection)}
}

// Insert appends one payment. There is no uniqueness constraint; several
// payments per customer per day are valid.
func (r *PaymentRepository) Insert(ctx context.Context, payment models.Payment) (models.Payment, error) {
	res, err := r.coll.InsertOne(ctx, payment)
	if err != nil {
		return models.Payment{}, storeErr("insert payment", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		payment.ID = id
	}
	return payment, nil
}

type paymentTotalsDoc struct {
	TotalPaid float64 `bson:"total_paid"`
}

// SumForCustomer aggregates payment amounts for one customer over an
// inclusive date window.
func (r *PaymentRepository) SumForCustomer(ctx context.Context, customerID primitive.ObjectID, start, end time.Time) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"customer_id": customerID,
			"date":        bson.M{"$gte": start, "$lte": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"total_paid": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, storeErr("sum payments", err)
	}
	defer cursor.Close(ctx)

	var docs []paymentTotalsDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return 0, storeErr("decode payment totals", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	return docs[0].TotalPaid, nil
}
