package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kisanpay/milkledger/internal/domain/models"
	"github.com/kisanpay/milkledger/internal/service/auth"
)

// AuthService defines the account operations the auth surface needs.
type AuthService interface {
	Register(ctx context.Context, input auth.RegisterInput) (models.Customer, error)
	RegisterAdmin(ctx context.Context, input auth.RegisterInput) (models.Customer, error)
	Login(ctx context.Context, email, password string) (string, models.Customer, error)
}

// AuthHandler serves login and registration.
type AuthHandler struct {
	svc    AuthService
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter for auth routes.
func NewAuthHandler(svc AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

type registerRequest struct {
	CustomerCode string             `json:"customerCode" binding:"required"`
	Name         string             `json:"name" binding:"required"`
	Email        string             `json:"email" binding:"required,email"`
	Phone        string             `json:"phone"`
	Password     string             `json:"password" binding:"required,min=6"`
	Address      models.Address     `json:"address"`
	BankDetails  models.BankDetails `json:"bankDetails"`
}

func (r registerRequest) toInput() auth.RegisterInput {
	return auth.RegisterInput{
		CustomerCode: r.CustomerCode,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Password:     r.Password,
		Address:      r.Address,
		BankDetails:  r.BankDetails,
	}
}

// Register handles POST /api/auth/register (admin only).
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
		return
	}

	customer, err := h.svc.Register(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "customer registered successfully",
		"data": gin.H{
			"id":           customer.ID.Hex(),
			"customerCode": customer.CustomerCode,
			"name":         customer.Name,
			"email":        customer.Email,
		},
	})
}

// RegisterAdmin handles POST /api/auth/register-admin (one-time bootstrap).
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
		return
	}

	if _, err := h.svc.RegisterAdmin(c.Request.Context(), req.toInput()); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "admin account created successfully"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "please provide an email and password"})
		return
	}

	token, customer, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"role":    customer.Role,
		"user": gin.H{
			"id":           customer.ID.Hex(),
			"name":         customer.Name,
			"email":        customer.Email,
			"customerCode": customer.CustomerCode,
			"role":         customer.Role,
		},
	})
}
