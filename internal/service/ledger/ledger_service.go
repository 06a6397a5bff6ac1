package ledger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kisanpay/milkledger/internal/domain/models"
)

// EntryStore defines the entry-ledger persistence required by the service.
// The store enforces slot uniqueness atomically and reports it as
// models.ErrDuplicateSlot.
type EntryStore interface {
	Insert(ctx context.Context, entry models.MilkEntry) (models.MilkEntry, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.MilkEntry, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.MilkEntryPatch) (models.MilkEntry, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.MilkEntry, error)
}

// PaymentStore defines the payment-ledger persistence required by the service.
type PaymentStore interface {
	Insert(ctx context.Context, payment models.Payment) (models.Payment, error)
}

// CustomerStore resolves customer references before a write is accepted.
type CustomerStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
}

// RecordEntryInput carries the caller-supplied fields of a new milk entry.
// Amount is deliberately absent: it is derived, never accepted as input.
type RecordEntryInput struct {
	CustomerID string
	Date       time.Time
	Shift      string
	Quantity   float64
	Fat        float64
	SNF        float64
	Rate       float64
}

// UpdateEntryInput carries a partial entry update. Nil fields stay unchanged.
type UpdateEntryInput struct {
	Date     *time.Time
	Shift    *string
	Quantity *float64
	Fat      *float64
	SNF      *float64
	Rate     *float64
}

// RecordPaymentInput carries the caller-supplied fields of a new payment.
type RecordPaymentInput struct {
	CustomerID string
	Date       *time.Time
	Amount     float64
	Notes      string
}

// Service implements the entry and payment ledgers: validation, derived
// amount computation and customer resolution. Slot uniqueness itself lives in
// the store so concurrent writers cannot race past an application pre-check.
type Service struct {
	entries   EntryStore
	payments  PaymentStore
	customers CustomerStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new ledger service instance.
func NewService(entries EntryStore, payments PaymentStore, customers CustomerStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		entries:   entries,
		payments:  payments,
		customers: customers,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordEntry validates and persists one collection entry, computing
// amount = quantity * rate before the write.
func (s *Service) RecordEntry(ctx context.Context, input RecordEntryInput) (models.MilkEntry, error) {
	customerID, err := parseObjectID("customerId", input.CustomerID)
	if err != nil {
		return models.MilkEntry{}, err
	}

	shift, err := models.ParseShift(input.Shift)
	if err != nil {
		return models.MilkEntry{}, err
	}

	if input.Date.IsZero() {
		return models.MilkEntry{}, models.InvalidFieldError("date", "is required")
	}
	if err := requireNonNegative("quantity", input.Quantity); err != nil {
		return models.MilkEntry{}, err
	}
	if err := requireNonNegative("fat", input.Fat); err != nil {
		return models.MilkEntry{}, err
	}
	if err := requireNonNegative("snf", input.SNF); err != nil {
		return models.MilkEntry{}, err
	}
	if err := requireNonNegative("rate", input.Rate); err != nil {
		return models.MilkEntry{}, err
	}

	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return models.MilkEntry{}, err
	}

	now := s.now().UTC()
	entry := models.MilkEntry{
		CustomerID: customerID,
		Date:       startOfDay(input.Date),
		Shift:      shift,
		Quantity:   input.Quantity,
		Fat:        input.Fat,
		SNF:        input.SNF,
		Rate:       input.Rate,
		Amount:     input.Quantity * input.Rate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	saved, err := s.entries.Insert(ctx, entry)
	if err != nil {
		return models.MilkEntry{}, err
	}

	s.logger.Info("milk entry recorded",
		zap.String("entry_id", saved.ID.Hex()),
		zap.String("customer_id", saved.CustomerID.Hex()),
		zap.Time("date", saved.Date),
		zap.String("shift", string(saved.Shift)),
		zap.Float64("quantity", saved.Quantity),
		zap.Float64("amount", saved.Amount))

	return saved, nil
}

// UpdateEntry applies a partial update to an existing entry. When quantity or
// rate changes, amount is recomputed from the effective value of both
// factors: the incoming value when present, the stored one otherwise.
func (s *Service) UpdateEntry(ctx context.Context, entryID string, input UpdateEntryInput) (models.MilkEntry, error) {
	id, err := parseObjectID("entryId", entryID)
	if err != nil {
		return models.MilkEntry{}, err
	}

	current, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return models.MilkEntry{}, err
	}

	patch := models.MilkEntryPatch{
		Quantity: input.Quantity,
		Fat:      input.Fat,
		SNF:      input.SNF,
		Rate:     input.Rate,
	}

	if input.Shift != nil {
		shift, err := models.ParseShift(*input.Shift)
		if err != nil {
			return models.MilkEntry{}, err
		}
		patch.Shift = &shift
	}
	if input.Date != nil {
		day := startOfDay(*input.Date)
		patch.Date = &day
	}
	for _, field := range []struct {
		name  string
		value *float64
	}{
		{"quantity", input.Quantity},
		{"fat", input.Fat},
		{"snf", input.SNF},
		{"rate", input.Rate},
	} {
		if field.value == nil {
			continue
		}
		if err := requireNonNegative(field.name, *field.value); err != nil {
			return models.MilkEntry{}, err
		}
	}

	if input.Quantity != nil || input.Rate != nil {
		quantity := current.Quantity
		if input.Quantity != nil {
			quantity = *input.Quantity
		}
		rate := current.Rate
		if input.Rate != nil {
			rate = *input.Rate
		}
		amount := quantity * rate
		patch.Amount = &amount
	}

	if patch.Empty() {
		return current, nil
	}

	updated, err := s.entries.Update(ctx, id, patch)
	if err != nil {
		return models.MilkEntry{}, err
	}

	s.logger.Info("milk entry updated",
		zap.String("entry_id", updated.ID.Hex()),
		zap.Float64("quantity", updated.Quantity),
		zap.Float64("rate", updated.Rate),
		zap.Float64("amount", updated.Amount))

	return updated, nil
}

// RecordPayment validates and appends one payment. The payment date defaults
// to the moment of recording.
func (s *Service) RecordPayment(ctx context.Context, input RecordPaymentInput) (models.Payment, error) {
	customerID, err := parseObjectID("customerId", input.CustomerID)
	if err != nil {
		return models.Payment{}, err
	}
	if err := requireNonNegative("amount", input.Amount); err != nil {
		return models.Payment{}, err
	}

	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return models.Payment{}, err
	}

	now := s.now().UTC()
	date := now
	if input.Date != nil && !input.Date.IsZero() {
		date = input.Date.UTC()
	}

	payment := models.Payment{
		CustomerID: customerID,
		Date:       date,
		Amount:     input.Amount,
		Notes:      input.Notes,
		CreatedAt:  now,
	}

	saved, err := s.payments.Insert(ctx, payment)
	if err != nil {
		return models.Payment{}, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", saved.ID.Hex()),
		zap.String("customer_id", saved.CustomerID.Hex()),
		zap.Float64("amount", saved.Amount))

	return saved, nil
}

// ListEntriesForCustomer is a pass-through read of one customer's entries,
// newest first.
func (s *Service) ListEntriesForCustomer(ctx context.Context, customerID string) ([]models.MilkEntry, error) {
	id, err := parseObjectID("customerId", customerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.entries.ListByCustomer(ctx, id)
}

// ListCustomers is a pass-through read of all customer accounts.
func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.customers.ListCustomers(ctx)
}

func parseObjectID(field, value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, models.InvalidFieldError(field, "is not a valid id")
	}
	return id, nil
}

func requireNonNegative(field string, value float64) error {
	if value < 0 {
		return models.InvalidFieldError(field, "must not be negative")
	}
	return nil
}

// startOfDay normalizes an instant to midnight UTC so the slot identity is
// per calendar day regardless of the time-of-day the caller sent.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
