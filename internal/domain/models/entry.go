package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shift is one of the two daily collection windows.
type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftEvening Shift = "evening"
)

// ParseShift validates a raw shift value.
func ParseShift(value string) (Shift, error) {
	switch Shift(value) {
	case ShiftMorning, ShiftEvening:
		return Shift(value), nil
	default:
		return "", fmt.Errorf("%w: shift must be %q or %q", ErrInvalidInput, ShiftMorning, ShiftEvening)
	}
}

// MilkEntry is one collection record. At most one entry exists per
// (customer, date, shift) slot; Amount is always Quantity * Rate and is
// recomputed by the ledger, never taken from the caller.
type MilkEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID primitive.ObjectID `bson:"customer_id" json:"customerId"`
	Date       time.Time          `bson:"date" json:"date"`
	Shift      Shift              `bson:"shift" json:"shift"`
	Quantity   float64            `bson:"quantity" json:"quantity"`
	Fat        float64            `bson:"fat" json:"fat"`
	SNF        float64            `bson:"snf" json:"snf"`
	Rate       float64            `bson:"rate" json:"rate"`
	Amount     float64            `bson:"amount" json:"amount"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

// MilkEntryPatch carries the fields of a partial entry update. Nil means
// "leave unchanged". Amount is set by the ledger when Quantity or Rate is
// present, using the effective value of each factor.
type MilkEntryPatch struct {
	Date     *time.Time
	Shift    *Shift
	Quantity *float64
	Fat      *float64
	SNF      *float64
	Rate     *float64
	Amount   *float64
}

// Empty reports whether the patch carries no changes at all.
func (p MilkEntryPatch) Empty() bool {
	return p.Date == nil && p.Shift == nil && p.Quantity == nil &&
		p.Fat == nil && p.SNF == nil && p.Rate == nil && p.Amount == nil
}
