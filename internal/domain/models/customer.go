package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role enumerates the caller roles recognised by the API.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Address holds a customer's postal details.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// BankDetails holds payout coordinates for a customer.
type BankDetails struct {
	UpiID             string `bson:"upi_id,omitempty" json:"upiId,omitempty"`
	AccountHolderName string `bson:"account_holder_name,omitempty" json:"accountHolderName,omitempty"`
	AccountNumber     string `bson:"account_number,omitempty" json:"accountNumber,omitempty"`
	IfscCode          string `bson:"ifsc_code,omitempty" json:"ifscCode,omitempty"`
}

// Customer is a dairy-farmer account. The ledger references customers by ID
// and never mutates them.
type Customer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerCode string             `bson:"customer_code" json:"customerCode"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Address      Address            `bson:"address,omitempty" json:"address,omitempty"`
	BankDetails  BankDetails        `bson:"bank_details,omitempty" json:"bankDetails,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}
