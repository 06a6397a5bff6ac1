package reporting

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kisanpay/milkledger/internal/domain/models"
)

// EntryReader exposes the read-side entry aggregations the projections need.
type EntryReader interface {
	SumForCustomer(ctx context.Context, customerID primitive.ObjectID, start, end time.Time) (totalMilk, totalAmount float64, err error)
	SessionRows(ctx context.Context, dayStart, dayEnd time.Time, shift models.Shift) ([]models.SessionEntry, error)
}

// PaymentReader exposes the read-side payment aggregation.
type PaymentReader interface {
	SumForCustomer(ctx context.Context, customerID primitive.ObjectID, start, end time.Time) (float64, error)
}

// CustomerReader resolves the customer a summary is asked for.
type CustomerReader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Customer, error)
}

// Service holds the two read-side projections over the ledgers: the
// settlement calculator and the session aggregator. Both are pure reads
// recomputed on every call; nothing is cached or materialized.
type Service struct {
	entries   EntryReader
	payments  PaymentReader
	customers CustomerReader
	logger    *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(entries EntryReader, payments PaymentReader, customers CustomerReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		entries:   entries,
		payments:  payments,
		customers: customers,
		logger:    logger,
	}
}

// ComputeSummary derives a customer's settlement over an inclusive date
// window: total milk, total amount owed, total paid and the balance between
// them. An empty window yields all zeros, never an error.
func (s *Service) ComputeSummary(ctx context.Context, customerID string, windowStart, windowEnd time.Time) (models.SettlementSummary, error) {
	id, err := primitive.ObjectIDFromHex(customerID)
	if err != nil {
		return models.SettlementSummary{}, models.InvalidFieldError("customerId", "is not a valid id")
	}

	if windowEnd.Before(windowStart) {
		return models.SettlementSummary{}, models.InvalidFieldError("window", "end precedes start")
	}

	if _, err := s.customers.FindByID(ctx, id); err != nil {
		return models.SettlementSummary{}, err
	}

	totalMilk, totalAmount, err := s.entries.SumForCustomer(ctx, id, windowStart, windowEnd)
	if err != nil {
		return models.SettlementSummary{}, fmt.Errorf("sum entries: %w", err)
	}

	totalPaid, err := s.payments.SumForCustomer(ctx, id, windowStart, windowEnd)
	if err != nil {
		return models.SettlementSummary{}, fmt.Errorf("sum payments: %w", err)
	}

	return models.SettlementSummary{
		TotalMilk:   totalMilk,
		TotalAmount: totalAmount,
		TotalPaid:   totalPaid,
		Balance:     totalAmount - totalPaid,
	}, nil
}

// ComputeSessionReport derives the collection report of one (date, shift)
// session across all customers. A session with no entries is a well-formed
// report with empty rows and zero totals.
func (s *Service) ComputeSessionReport(ctx context.Context, date time.Time, shift models.Shift) (models.SessionReport, error) {
	dayStart, dayEnd := dayBounds(date)

	rows, err := s.entries.SessionRows(ctx, dayStart, dayEnd, shift)
	if err != nil {
		return models.SessionReport{}, fmt.Errorf("load session rows: %w", err)
	}

	report := models.SessionReport{
		Date:         dayStart,
		Shift:        shift,
		Entries:      rows,
		TotalEntries: len(rows),
	}
	for _, row := range rows {
		report.TotalMilkQuantity += row.Quantity
		report.TotalAmount += row.Amount
	}

	s.logger.Debug("session report computed",
		zap.Time("date", dayStart),
		zap.String("shift", string(shift)),
		zap.Int("entries", report.TotalEntries))

	return report, nil
}

// BuildDailyDigest bundles both sessions of one day for the nightly archive
// and export.
func (s *Service) BuildDailyDigest(ctx context.Context, day time.Time) (models.CollectionDigest, error) {
	morning, err := s.ComputeSessionReport(ctx, day, models.ShiftMorning)
	if err != nil {
		return models.CollectionDigest{}, fmt.Errorf("morning session: %w", err)
	}

	evening, err := s.ComputeSessionReport(ctx, day, models.ShiftEvening)
	if err != nil {
		return models.CollectionDigest{}, fmt.Errorf("evening session: %w", err)
	}

	return models.CollectionDigest{
		Date:      morning.Date,
		Morning:   morning,
		Evening:   evening,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// dayBounds normalizes a date to its inclusive [startOfDay, endOfDay] range
// in UTC.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_999_999, time.UTC)
	return start, end
}
