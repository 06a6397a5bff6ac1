package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is a cash settlement made to a customer. The payment ledger is
// append-only; several payments on the same day are valid.
type Payment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID primitive.ObjectID `bson:"customer_id" json:"customerId"`
	Date       time.Time          `bson:"date" json:"date"`
	Amount     float64            `bson:"amount" json:"amount"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
