package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kisanpay/milkledger/internal/domain/models"
	"github.com/kisanpay/milkledger/internal/service/ledger"
)

// defaultSummaryWindow is the trailing window applied when the caller gives
// no explicit bounds.
const defaultSummaryWindow = 30 * 24 * time.Hour

// LedgerService defines the write-side ledger operations the admin surface needs.
type LedgerService interface {
	RecordEntry(ctx context.Context, input ledger.RecordEntryInput) (models.MilkEntry, error)
	UpdateEntry(ctx context.Context, entryID string, input ledger.UpdateEntryInput) (models.MilkEntry, error)
	RecordPayment(ctx context.Context, input ledger.RecordPaymentInput) (models.Payment, error)
	ListEntriesForCustomer(ctx context.Context, customerID string) ([]models.MilkEntry, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
}

// ReportingService defines the read-side projections the HTTP surface needs.
type ReportingService interface {
	ComputeSummary(ctx context.Context, customerID string, windowStart, windowEnd time.Time) (models.SettlementSummary, error)
	ComputeSessionReport(ctx context.Context, date time.Time, shift models.Shift) (models.SessionReport, error)
}

// AdminHandler serves the admin-only ledger and reporting endpoints.
type AdminHandler struct {
	ledger    LedgerService
	reporting ReportingService
	logger    *zap.Logger
	now       func() time.Time
}

// NewAdminHandler constructs the HTTP handler adapter for admin routes.
func NewAdminHandler(ledgerSvc LedgerService, reportingSvc ReportingService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{ledger: ledgerSvc, reporting: reportingSvc, logger: logger, now: time.Now}
}

type recordEntryRequest struct {
	CustomerID string   `json:"customerId" binding:"required"`
	Date       string   `json:"date" binding:"required"`
	Shift      string   `json:"shift" binding:"required"`
	Quantity   *float64 `json:"quantity" binding:"required"`
	Fat        *float64 `json:"fat" binding:"required"`
	SNF        *float64 `json:"snf" binding:"required"`
	Rate       *float64 `json:"rate" binding:"required"`
}

// RecordEntry handles POST /api/admin/milk-entries.
func (h *AdminHandler) RecordEntry(c *gin.Context) {
	var req recordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
		return
	}

	date, err := parseDateParam(req.Date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	entry, err := h.ledger.RecordEntry(c.Request.Context(), ledger.RecordEntryInput{
		CustomerID: req.CustomerID,
		Date:       date,
		Shift:      req.Shift,
		Quantity:   *req.Quantity,
		Fat:        *req.Fat,
		SNF:        *req.SNF,
		Rate:       *req.Rate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": entry})
}

type updateEntryRequest struct {
	Date     *string  `json:"date"`
	Shift    *string  `json:"shift"`
	Quantity *float64 `json:"quantity"`
	Fat      *float64 `json:"fat"`
	SNF      *float64 `json:"snf"`
	Rate     *float64 `json:"rate"`
}

// UpdateEntry handles PUT /api/admin/milk-entries/:id.
func (h *AdminHandler) UpdateEntry(c *gin.Context) {
	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
		return
	}

	input := ledger.UpdateEntryInput{
		Shift:    req.Shift,
		Quantity: req.Quantity,
		Fat:      req.Fat,
		SNF:      req.SNF,
		Rate:     req.Rate,
	}
	if req.Date != nil {
		date, err := parseDateParam(*req.Date)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		input.Date = &date
	}

	entry, err := h.ledger.UpdateEntry(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": entry})
}

type recordPaymentRequest struct {
	CustomerID string   `json:"customerId" binding:"required"`
	Amount     *float64 `json:"amount" binding:"required"`
	Date       *string  `json:"date"`
	Notes      string   `json:"notes"`
}

// RecordPayment handles POST /api/admin/payments.
func (h *AdminHandler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
		return
	}

	input := ledger.RecordPaymentInput{
		CustomerID: req.CustomerID,
		Amount:     *req.Amount,
		Notes:      req.Notes,
	}
	if req.Date != nil {
		date, err := parseDateParam(*req.Date)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		input.Date = &date
	}

	payment, err := h.ledger.RecordPayment(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": payment})
}

// ListCustomers handles GET /api/admin/customers.
func (h *AdminHandler) ListCustomers(c *gin.Context) {
	customers, err := h.ledger.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(customers), "data": customers})
}

// CustomerSummary handles GET /api/admin/customers/:customerId/summary. The
// window defaults to the trailing 30 days; explicit from/to query params
// override it.
func (h *AdminHandler) CustomerSummary(c *gin.Context) {
	windowStart, windowEnd, err := h.summaryWindow(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	summary, err := h.reporting.ComputeSummary(c.Request.Context(), c.Param("customerId"), windowStart, windowEnd)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": formatSummary(summary)})
}

// CustomerEntries handles GET /api/admin/customers/:customerId/entries.
func (h *AdminHandler) CustomerEntries(c *gin.Context) {
	entries, err := h.ledger.ListEntriesForCustomer(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(entries), "data": entries})
}

// SessionSummary handles GET /api/admin/session-summary?date=&shift=.
func (h *AdminHandler) SessionSummary(c *gin.Context) {
	dateParam := c.Query("date")
	shiftParam := c.Query("shift")
	if dateParam == "" || shiftParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "please provide both a date and a shift"})
		return
	}

	date, err := parseDateParam(dateParam)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	shift, err := models.ParseShift(shiftParam)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	report, err := h.reporting.ComputeSessionReport(c.Request.Context(), date, shift)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

func (h *AdminHandler) summaryWindow(c *gin.Context) (time.Time, time.Time, error) {
	now := h.now().UTC()
	windowStart := now.Add(-defaultSummaryWindow)
	windowEnd := now

	if from := c.Query("from"); from != "" {
		t, err := parseDateParam(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		windowStart = t
	}
	if to := c.Query("to"); to != "" {
		t, err := parseDateParam(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// A bare calendar date means the whole day is included.
		windowEnd = t.Add(24*time.Hour - time.Nanosecond)
	}

	return windowStart, windowEnd, nil
}
