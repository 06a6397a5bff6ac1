package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kisanpay/milkledger/internal/config"
	"github.com/kisanpay/milkledger/internal/domain/models"
)

// ErrInvalidCredentials indicates a failed login attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAdminExists indicates the one-time admin bootstrap was already done.
var ErrAdminExists = errors.New("an admin account already exists")

// CustomerStore defines the account persistence required by the service.
type CustomerStore interface {
	Insert(ctx context.Context, customer models.Customer) (models.Customer, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Customer, error)
	FindByEmail(ctx context.Context, email string) (models.Customer, error)
	CountAdmins(ctx context.Context) (int64, error)
}

// Claims is the JWT payload issued on login.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	CustomerCode string
	Name         string
	Email        string
	Phone        string
	Password     string
	Address      models.Address
	BankDetails  models.BankDetails
}

// Service implements registration, login and token verification.
type Service struct {
	customers CustomerStore
	cfg       config.AuthConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new auth service instance.
func NewService(customers CustomerStore, cfg config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		customers: customers,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a customer account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (models.Customer, error) {
	return s.register(ctx, input, models.RoleCustomer)
}

// RegisterAdmin creates the first admin account. It refuses to run once an
// admin exists.
func (s *Service) RegisterAdmin(ctx context.Context, input RegisterInput) (models.Customer, error) {
	count, err := s.customers.CountAdmins(ctx)
	if err != nil {
		return models.Customer{}, err
	}
	if count > 0 {
		return models.Customer{}, ErrAdminExists
	}
	return s.register(ctx, input, models.RoleAdmin)
}

func (s *Service) register(ctx context.Context, input RegisterInput, role models.Role) (models.Customer, error) {
	switch {
	case strings.TrimSpace(input.CustomerCode) == "":
		return models.Customer{}, models.InvalidFieldError("customerCode", "is required")
	case strings.TrimSpace(input.Name) == "":
		return models.Customer{}, models.InvalidFieldError("name", "is required")
	case strings.TrimSpace(input.Email) == "":
		return models.Customer{}, models.InvalidFieldError("email", "is required")
	case len(input.Password) < 6:
		return models.Customer{}, models.InvalidFieldError("password", "must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Customer{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	customer := models.Customer{
		CustomerCode: strings.TrimSpace(input.CustomerCode),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: string(hash),
		Role:         role,
		Address:      input.Address,
		BankDetails:  input.BankDetails,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := s.customers.Insert(ctx, customer)
	if err != nil {
		return models.Customer{}, err
	}

	s.logger.Info("account registered",
		zap.String("customer_id", saved.ID.Hex()),
		zap.String("customer_code", saved.CustomerCode),
		zap.String("role", string(saved.Role)))

	return saved, nil
}

// Login verifies the credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, models.Customer, error) {
	customer, err := s.customers.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.Customer{}, ErrInvalidCredentials
		}
		return "", models.Customer{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return "", models.Customer{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(customer)
	if err != nil {
		return "", models.Customer{}, err
	}

	return token, customer, nil
}

// VerifyToken parses and validates a token, returning its claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *Service) issueToken(customer models.Customer) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		Role: customer.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customer.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
