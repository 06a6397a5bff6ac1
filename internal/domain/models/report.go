package models

import "time"

// SettlementSummary is the balance between milk delivered and cash paid for
// one customer over a time window. Values are full precision; callers format
// to two decimals at the presentation boundary.
type SettlementSummary struct {
	TotalMilk   float64 `json:"totalMilk"`
	TotalAmount float64 `json:"totalAmount"`
	TotalPaid   float64 `json:"totalPaid"`
	Balance     float64 `json:"balance"`
}

// SessionEntry is one flattened row of a collection session, joined with the
// customer's display details.
type SessionEntry struct {
	CustomerName string  `bson:"customer_name" json:"customerName"`
	CustomerCode string  `bson:"customer_code" json:"customerCode"`
	Quantity     float64 `bson:"quantity" json:"quantity"`
	Fat          float64 `bson:"fat" json:"fat"`
	Rate         float64 `bson:"rate" json:"rate"`
	Amount       float64 `bson:"amount" json:"amount"`
}

// SessionReport aggregates one (date, shift) collection session across all
// customers. A session without entries is a well-formed report with zero totals.
type SessionReport struct {
	Date              time.Time      `json:"date"`
	Shift             Shift          `json:"shift"`
	Entries           []SessionEntry `json:"entries"`
	TotalEntries      int            `json:"totalEntries"`
	TotalMilkQuantity float64        `json:"totalMilkQuantity"`
	TotalAmount       float64        `json:"totalAmount"`
}

// CollectionDigest is the nightly archive of both sessions of one day. It is
// written by the scheduler for export only; the read path never consults it.
type CollectionDigest struct {
	Date      time.Time     `bson:"date" json:"date"`
	Morning   SessionReport `bson:"morning" json:"morning"`
	Evening   SessionReport `bson:"evening" json:"evening"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}
