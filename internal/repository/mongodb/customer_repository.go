package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kisanpay/milkledger/internal/domain/models"
)

// CustomerRepository persists customer accounts. The ledger only reads from
// it; writes come from the auth/registration surface.
type CustomerRepository struct {
	coll *mongo.Collection
}

// NewCustomerRepository builds the users repository.
func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{coll: store.db.Collection(customersCollection)}
}

// Insert creates a customer account. Duplicate email or customer code trips
// the unique indexes and is reported as invalid input, like the original
// registration conflict.
func (r *CustomerRepository) Insert(ctx context.Context, customer models.Customer) (models.Customer, error) {
	res, err := r.coll.InsertOne(ctx, customer)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Customer{}, fmt.Errorf("%w: customer with this email or code already exists", models.ErrInvalidInput)
		}
		return models.Customer{}, storeErr("insert customer", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		customer.ID = id
	}
	return customer, nil
}

// FindByID resolves a customer account.
func (r *CustomerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Customer, error) {
	var customer models.Customer
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Customer{}, models.ErrNotFound
		}
		return models.Customer{}, storeErr("find customer", err)
	}
	return customer, nil
}

// FindByEmail resolves a customer account by login email.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (models.Customer, error) {
	var customer models.Customer
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Customer{}, models.ErrNotFound
		}
		return models.Customer{}, storeErr("find customer by email", err)
	}
	return customer, nil
}

// ListCustomers returns every account with the customer role, sorted by
// customer code.
func (r *CustomerRepository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "customer_code", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"role": models.RoleCustomer}, opts)
	if err != nil {
		return nil, storeErr("list customers", err)
	}
	defer cursor.Close(ctx)

	customers := make([]models.Customer, 0)
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, storeErr("decode customers", err)
	}
	return customers, nil
}

// CountAdmins reports how many admin accounts exist. Used to keep the
// one-time admin bootstrap endpoint one-time.
func (r *CustomerRepository) CountAdmins(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"role": models.RoleAdmin})
	if err != nil {
		return 0, storeErr("count admins", err)
	}
	return count, nil
}
