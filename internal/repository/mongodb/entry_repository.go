package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kisanpay/milkledger/internal/domain/models"
)

// EntryRepository persists milk-collection entries.
type EntryRepository struct {
	coll *mongo.Collection
}

// NewEntryRepository builds the milk_entries repository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{coll: store.db.Collection(entriesCollection)}
}

// Insert writes one entry. The unique (customer_id, date, shift) index rejects
// a second entry for the same slot atomically, so two concurrent writers can
// never both succeed.
func (r *EntryRepository) Insert(ctx context.Context, entry models.MilkEntry) (models.MilkEntry, error) {
	res, err := r.coll.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.MilkEntry{}, models.ErrDuplicateSlot
		}
		return models.MilkEntry{}, storeErr("insert milk entry", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return entry, nil
}

// FindByID resolves a single entry.
func (r *EntryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.MilkEntry, error) {
	var entry models.MilkEntry
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.MilkEntry{}, models.ErrNotFound
		}
		return models.MilkEntry{}, storeErr("find milk entry", err)
	}
	return entry, nil
}

// Update applies a partial update and returns the new document. Moving an
// entry onto an occupied slot trips the unique index and surfaces as
// DuplicateSlot, same as on insert.
func (r *EntryRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.MilkEntryPatch) (models.MilkEntry, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.Shift != nil {
		set["shift"] = *patch.Shift
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.Fat != nil {
		set["fat"] = *patch.Fat
	}
	if patch.SNF != nil {
		set["snf"] = *patch.SNF
	}
	if patch.Rate != nil {
		set["rate"] = *patch.Rate
	}
	if patch.Amount != nil {
		set["amount"] = *patch.Amount
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.MilkEntry{}, models.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return models.MilkEntry{}, models.ErrDuplicateSlot
		}
		return models.MilkEntry{}, storeErr("update milk entry", err)
	}

	var entry models.MilkEntry
	if err := res.Decode(&entry); err != nil {
		return models.MilkEntry{}, storeErr("decode updated milk entry", err)
	}
	return entry, nil
}

// ListByCustomer returns all entries for one customer, newest first.
func (r *EntryRepository) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.MilkEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, storeErr("list milk entries", err)
	}
	defer cursor.Close(ctx)

	entries := make([]models.MilkEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, storeErr("decode milk entries", err)
	}
	return entries, nil
}

type entryTotalsDoc struct {
	TotalMilk   float64 `bson:"total_milk"`
	TotalAmount float64 `bson:"total_amount"`
}

// SumForCustomer aggregates quantity and amount for one customer over an
// inclusive date window, grouped and summed at the store.
func (r *EntryRepository) SumForCustomer(ctx context.Context, customerID primitive.ObjectID, start, end time.Time) (totalMilk, totalAmount float64, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"customer_id": customerID,
			"date":        bson.M{"$gte": start, "$lte": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"total_milk":   bson.M{"$sum": "$quantity"},
			"total_amount": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, storeErr("sum milk entries", err)
	}
	defer cursor.Close(ctx)

	var docs []entryTotalsDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return 0, 0, storeErr("decode milk entry totals", err)
	}
	if len(docs) == 0 {
		return 0, 0, nil
	}
	return docs[0].TotalMilk, docs[0].TotalAmount, nil
}

// SessionRows returns the flattened per-customer rows of one collection
// session, joined with the customer's display details and sorted by customer
// code for a stable output order.
func (r *EntryRepository) SessionRows(ctx context.Context, dayStart, dayEnd time.Time, shift models.Shift) ([]models.SessionEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"shift": shift,
			"date":  bson.M{"$gte": dayStart, "$lte": dayEnd},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         customersCollection,
			"localField":   "customer_id",
			"foreignField": "_id",
			"as":           "customer",
		}}},
		{{Key: "$unwind", Value: "$customer"}},
		{{Key: "$project", Value: bson.M{
			"customer_name": "$customer.name",
			"customer_code": "$customer.customer_code",
			"quantity":      1,
			"fat":           1,
			"rate":          1,
			"amount":        1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "customer_code", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr("aggregate session rows", err)
	}
	defer cursor.Close(ctx)

	rows := make([]models.SessionEntry, 0)
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr("decode session rows", err)
	}
	return rows, nil
}
