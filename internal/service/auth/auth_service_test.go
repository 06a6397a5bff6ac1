package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/kisanpay/milkledger/internal/config"
	"github.com/kisanpay/milkledger/internal/domain/models"
)

type fakeAccountStore struct {
	byID    map[primitive.ObjectID]models.Customer
	byEmail map[string]models.Customer
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		byID:    make(map[primitive.ObjectID]models.Customer),
		byEmail: make(map[string]models.Customer),
	}
}

func (f *fakeAccountStore) Insert(_ context.Context, customer models.Customer) (models.Customer, error) {
	if _, exists := f.byEmail[customer.Email]; exists {
		return models.Customer{}, fmt.Errorf("%w: customer with this email or code already exists", models.ErrInvalidInput)
	}
	customer.ID = primitive.NewObjectID()
	f.byID[customer.ID] = customer
	f.byEmail[customer.Email] = customer
	return customer, nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Customer, error) {
	customer, ok := f.byID[id]
	if !ok {
		return models.Customer{}, models.ErrNotFound
	}
	return customer, nil
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (models.Customer, error) {
	customer, ok := f.byEmail[email]
	if !ok {
		return models.Customer{}, models.ErrNotFound
	}
	return customer, nil
}

func (f *fakeAccountStore) CountAdmins(_ context.Context) (int64, error) {
	var count int64
	for _, c := range f.byID {
		if c.Role == models.RoleAdmin {
			count++
		}
	}
	return count, nil
}

func newTestService() (*Service, *fakeAccountStore) {
	store := newFakeAccountStore()
	svc := NewService(store, config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}, nil)
	return svc, store
}

func registerInput() RegisterInput {
	return RegisterInput{
		CustomerCode: "C001",
		Name:         "Ramesh",
		Email:        "Ramesh@Example.com",
		Phone:        "9876543210",
		Password:     "secret123",
	}
}

func TestRegister(t *testing.T) {
	t.Run("stores a bcrypt hash, never the password", func(t *testing.T) {
		svc, _ := newTestService()

		customer, err := svc.Register(context.Background(), registerInput())
		require.NoError(t, err)
		assert.NotEqual(t, "secret123", customer.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte("secret123")))
		assert.Equal(t, models.RoleCustomer, customer.Role)
	})

	t.Run("lowercases the email", func(t *testing.T) {
		svc, _ := newTestService()

		customer, err := svc.Register(context.Background(), registerInput())
		require.NoError(t, err)
		assert.Equal(t, "ramesh@example.com", customer.Email)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		svc, _ := newTestService()

		input := registerInput()
		input.Password = "abc"
		_, err := svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("duplicate email surfaces as invalid input", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Register(context.Background(), registerInput())
		require.NoError(t, err)
		_, err = svc.Register(context.Background(), registerInput())
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestRegisterAdmin(t *testing.T) {
	svc, _ := newTestService()

	admin, err := svc.RegisterAdmin(context.Background(), registerInput())
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	input := registerInput()
	input.Email = "second@example.com"
	input.CustomerCode = "C002"
	_, err = svc.RegisterAdmin(context.Background(), input)
	assert.ErrorIs(t, err, ErrAdminExists)
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials yield a verifiable token", func(t *testing.T) {
		svc, _ := newTestService()
		registered, err := svc.Register(context.Background(), registerInput())
		require.NoError(t, err)

		token, customer, err := svc.Login(context.Background(), "ramesh@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, customer.ID)

		claims, err := svc.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID.Hex(), claims.Subject)
		assert.Equal(t, models.RoleCustomer, claims.Role)
	})

	t.Run("wrong password fails with invalid credentials", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(context.Background(), registerInput())
		require.NoError(t, err)

		_, _, err = svc.Login(context.Background(), "ramesh@example.com", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email fails with invalid credentials", func(t *testing.T) {
		svc, _ := newTestService()

		_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		svc, _ := newTestService()
		registered, err := svc.Register(context.Background(), registerInput())
		require.NoError(t, err)

		svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := svc.Login(context.Background(), registered.Email, "secret123")
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assert.Error(t, err)
	})
}
