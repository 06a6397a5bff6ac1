package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kisanpay/milkledger/internal/domain/models"
)

type fakeEntryStore struct {
	entries map[primitive.ObjectID]models.MilkEntry
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[primitive.ObjectID]models.MilkEntry)}
}

func (f *fakeEntryStore) slotTaken(exclude primitive.ObjectID, customerID primitive.ObjectID, date time.Time, shift models.Shift) bool {
	for id, e := range f.entries {
		if id != exclude && e.CustomerID == customerID && e.Date.Equal(date) && e.Shift == shift {
			return true
		}
	}
	return false
}

func (f *fakeEntryStore) Insert(_ context.Context, entry models.MilkEntry) (models.MilkEntry, error) {
	if f.slotTaken(primitive.NilObjectID, entry.CustomerID, entry.Date, entry.Shift) {
		return models.MilkEntry{}, models.ErrDuplicateSlot
	}
	entry.ID = primitive.NewObjectID()
	f.entries[entry.ID] = entry
	return entry, nil
}

func (f *fakeEntryStore) FindByID(_ context.Context, id primitive.ObjectID) (models.MilkEntry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return models.MilkEntry{}, models.ErrNotFound
	}
	return entry, nil
}

func (f *fakeEntryStore) Update(_ context.Context, id primitive.ObjectID, patch models.MilkEntryPatch) (models.MilkEntry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return models.MilkEntry{}, models.ErrNotFound
	}
	if patch.Date != nil {
		entry.Date = *patch.Date
	}
	if patch.Shift != nil {
		entry.Shift = *patch.Shift
	}
	if patch.Quantity != nil {
		entry.Quantity = *patch.Quantity
	}
	if patch.Fat != nil {
		entry.Fat = *patch.Fat
	}
	if patch.SNF != nil {
		entry.SNF = *patch.SNF
	}
	if patch.Rate != nil {
		entry.Rate = *patch.Rate
	}
	if patch.Amount != nil {
		entry.Amount = *patch.Amount
	}
	if f.slotTaken(id, entry.CustomerID, entry.Date, entry.Shift) {
		return models.MilkEntry{}, models.ErrDuplicateSlot
	}
	f.entries[id] = entry
	return entry, nil
}

func (f *fakeEntryStore) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.MilkEntry, error) {
	var out []models.MilkEntry
	for _, e := range f.entries {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

type fakePaymentStore struct {
	payments []models.Payment
}

func (f *fakePaymentStore) Insert(_ context.Context, payment models.Payment) (models.Payment, error) {
	payment.ID = primitive.NewObjectID()
	f.payments = append(f.payments, payment)
	return payment, nil
}

type fakeCustomerStore struct {
	customers map[primitive.ObjectID]models.Customer
}

func newFakeCustomerStore(customers ...models.Customer) *fakeCustomerStore {
	store := &fakeCustomerStore{customers: make(map[primitive.ObjectID]models.Customer)}
	for _, c := range customers {
		store.customers[c.ID] = c
	}
	return store
}

func (f *fakeCustomerStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return models.Customer{}, models.ErrNotFound
	}
	return customer, nil
}

func (f *fakeCustomerStore) ListCustomers(_ context.Context) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range f.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerCode < out[j].CustomerCode })
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeEntryStore, *fakePaymentStore, models.Customer) {
	t.Helper()

	customer := models.Customer{
		ID:           primitive.NewObjectID(),
		CustomerCode: "C001",
		Name:         "Ramesh",
		Role:         models.RoleCustomer,
	}
	entries := newFakeEntryStore()
	payments := &fakePaymentStore{}
	svc := NewService(entries, payments, newFakeCustomerStore(customer), nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) }
	return svc, entries, payments, customer
}

func TestRecordEntry(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("computes amount from quantity and rate", func(t *testing.T) {
		svc, _, _, customer := newTestService(t)

		entry, err := svc.RecordEntry(context.Background(), RecordEntryInput{
			CustomerID: customer.ID.Hex(),
			Date:       date,
			Shift:      "morning",
			Quantity:   10,
			Fat:        4.2,
			SNF:        8.6,
			Rate:       50,
		})
		require.NoError(t, err)
		assert.Equal(t, 500.0, entry.Amount)
		assert.Equal(t, models.ShiftMorning, entry.Shift)
		assert.False(t, entry.ID.IsZero())
	})

	t.Run("normalizes date to the calendar day", func(t *testing.T) {
		svc, _, _, customer := newTestService(t)

		entry, err := svc.RecordEntry(context.Background(), RecordEntryInput{
			CustomerID: customer.ID.Hex(),
			Date:       time.Date(2024, 1, 1, 17, 45, 3, 0, time.UTC),
			Shift:      "evening",
			Quantity:   5,
			Rate:       40,
		})
		require.NoError(t, err)
		assert.Equal(t, date, entry.Date)
	})

	t.Run("second entry for the same slot fails with DuplicateSlot", func(t *testing.T) {
		svc, entries, _, customer := newTestService(t)

		input := RecordEntryInput{
			CustomerID: customer.ID.Hex(),
			Date:       date,
			Shift:      "morning",
			Quantity:   10,
			Rate:       50,
		}
		_, err := svc.RecordEntry(context.Background(), input)
		require.NoError(t, err)

		input.Quantity = 12
		_, err = svc.RecordEntry(context.Background(), input)
		assert.ErrorIs(t, err, models.ErrDuplicateSlot)

		// The original record is unchanged.
		stored, err := entries.ListByCustomer(context.Background(), customer.ID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, 10.0, stored[0].Quantity)
	})

	t.Run("same day different shift is a different slot", func(t *testing.T) {
		svc, _, _, customer := newTestService(t)

		for _, shift := range []string{"morning", "evening"} {
			_, err := svc.RecordEntry(context.Background(), RecordEntryInput{
				CustomerID: customer.ID.Hex(),
				Date:       date,
				Shift:      shift,
				Quantity:   10,
				Rate:       50,
			})
			require.NoError(t, err)
		}
	})

	t.Run("unknown customer fails with NotFound", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.RecordEntry(context.Background(), RecordEntryInput{
			CustomerID: primitive.NewObjectID().Hex(),
			Date:       date,
			Shift:      "morning",
			Quantity:   10,
			Rate:       50,
		})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("rejects unknown shift", func(t *testing.T) {
		svc, _, _, customer := newTestService(t)

		_, err := svc.RecordEntry(context.Background(), RecordEntryInput{
			CustomerID: customer.ID.Hex(),
			Date:       date,
			Shift:      "noon",
			Quantity:   10,
			Rate:       50,
		})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		svc, _, _, customer := newTestService(t)

		_, err := svc.RecordEntry(context.Background(), RecordEntryInput{
			CustomerID: customer.ID.Hex(),
			Date:       date,
			Shift:      "morning",
			Quantity:   -1,
			Rate:       50,
		})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("zero quantity is valid and yields zero amount", func(t *testing.T) {
		svc, _, _, customer := newTestService(t)

		entry, err := svc.RecordEntry(context.Background(), RecordEntryInput{
			CustomerID: customer.ID.Hex(),
			Date:       date,
			Shift:      "morning",
			Quantity:   0,
			Rate:       50,
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, entry.Amount)
	})
}

func TestUpdateEntry(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seed := func(t *testing.T) (*Service, *fakeEntryStore, models.MilkEntry, models.Customer) {
		t.Helper()
		svc, entries, _, customer := newTestService(t)
		entry, err := svc.RecordEntry(context.Background(), RecordEntryInput{
			CustomerID: customer.ID.Hex(),
			Date:       date,
			Shift:      "morning",
			Quantity:   10,
			Fat:        4.0,
			SNF:        8.5,
			Rate:       50,
		})
		require.NoError(t, err)
		return svc, entries, entry, customer
	}

	t.Run("rate change recomputes amount with stored quantity", func(t *testing.T) {
		svc, _, entry, _ := seed(t)

		rate := 55.0
		updated, err := svc.UpdateEntry(context.Background(), entry.ID.Hex(), UpdateEntryInput{Rate: &rate})
		require.NoError(t, err)
		assert.Equal(t, 10.0, updated.Quantity)
		assert.Equal(t, 550.0, updated.Amount)
	})

	t.Run("quantity change recomputes amount with stored rate", func(t *testing.T) {
		svc, _, entry, _ := seed(t)

		quantity := 8.0
		updated, err := svc.UpdateEntry(context.Background(), entry.ID.Hex(), UpdateEntryInput{Quantity: &quantity})
		require.NoError(t, err)
		assert.Equal(t, 400.0, updated.Amount)
	})

	t.Run("both factors change together", func(t *testing.T) {
		svc, _, entry, _ := seed(t)

		quantity, rate := 12.0, 48.0
		updated, err := svc.UpdateEntry(context.Background(), entry.ID.Hex(), UpdateEntryInput{Quantity: &quantity, Rate: &rate})
		require.NoError(t, err)
		assert.Equal(t, 576.0, updated.Amount)
	})

	t.Run("fat and snf edits leave amount alone", func(t *testing.T) {
		svc, _, entry, _ := seed(t)

		fat := 4.5
		updated, err := svc.UpdateEntry(context.Background(), entry.ID.Hex(), UpdateEntryInput{Fat: &fat})
		require.NoError(t, err)
		assert.Equal(t, 4.5, updated.Fat)
		assert.Equal(t, 500.0, updated.Amount)
	})

	t.Run("moving onto an occupied slot fails with DuplicateSlot", func(t *testing.T) {
		svc, _, entry, customer := seed(t)

		_, err := svc.RecordEntry(context.Background(), RecordEntryInput{
			CustomerID: customer.ID.Hex(),
			Date:       date,
			Shift:      "evening",
			Quantity:   6,
			Rate:       50,
		})
		require.NoError(t, err)

		shift := "evening"
		_, err = svc.UpdateEntry(context.Background(), entry.ID.Hex(), UpdateEntryInput{Shift: &shift})
		assert.ErrorIs(t, err, models.ErrDuplicateSlot)
	})

	t.Run("unknown entry fails with NotFound", func(t *testing.T) {
		svc, _, _, _ := seed(t)

		rate := 55.0
		_, err := svc.UpdateEntry(context.Background(), primitive.NewObjectID().Hex(), UpdateEntryInput{Rate: &rate})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		svc, _, entry, _ := seed(t)

		rate := -5.0
		_, err := svc.UpdateEntry(context.Background(), entry.ID.Hex(), UpdateEntryInput{Rate: &rate})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("empty patch returns the current record", func(t *testing.T) {
		svc, _, entry, _ := seed(t)

		updated, err := svc.UpdateEntry(context.Background(), entry.ID.Hex(), UpdateEntryInput{})
		require.NoError(t, err)
		assert.Equal(t, entry.Amount, updated.Amount)
	})
}

func TestRecordPayment(t *testing.T) {
	t.Run("defaults date to the moment of recording", func(t *testing.T) {
		svc, _, payments, customer := newTestService(t)

		payment, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
			CustomerID: customer.ID.Hex(),
			Amount:     300,
			Notes:      "weekly settlement",
		})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), payment.Date)
		assert.Len(t, payments.payments, 1)
	})

	t.Run("multiple payments on the same day are allowed", func(t *testing.T) {
		svc, _, payments, customer := newTestService(t)

		for i := 0; i < 3; i++ {
			_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
				CustomerID: customer.ID.Hex(),
				Amount:     100,
			})
			require.NoError(t, err)
		}
		assert.Len(t, payments.payments, 3)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		svc, _, _, customer := newTestService(t)

		_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
			CustomerID: customer.ID.Hex(),
			Amount:     -20,
		})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("unknown customer fails with NotFound", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
			CustomerID: primitive.NewObjectID().Hex(),
			Amount:     50,
		})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestListEntriesForCustomer(t *testing.T) {
	svc, _, _, customer := newTestService(t)

	for day := 1; day <= 3; day++ {
		_, err := svc.RecordEntry(context.Background(), RecordEntryInput{
			CustomerID: customer.ID.Hex(),
			Date:       time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
			Shift:      "morning",
			Quantity:   10,
			Rate:       50,
		})
		require.NoError(t, err)
	}

	entries, err := svc.ListEntriesForCustomer(context.Background(), customer.ID.Hex())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Date.After(entries[2].Date), "entries should come back newest first")
}
