package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kisanpay/milkledger/internal/server/middleware"
)

// CustomerHandler serves the self-service endpoints for logged-in customers.
// The caller identity comes from the auth middleware, never from the request.
type CustomerHandler struct {
	ledger    LedgerService
	reporting ReportingService
	logger    *zap.Logger
	now       func() time.Time
}

// NewCustomerHandler constructs the HTTP handler adapter for customer routes.
func NewCustomerHandler(ledgerSvc LedgerService, reportingSvc ReportingService, logger *zap.Logger) *CustomerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerHandler{ledger: ledgerSvc, reporting: reportingSvc, logger: logger, now: time.Now}
}

// MyEntries handles GET /api/customer/my-entries.
func (h *CustomerHandler) MyEntries(c *gin.Context) {
	entries, err := h.ledger.ListEntriesForCustomer(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(entries), "data": entries})
}

// MySummary handles GET /api/customer/my-summary over the trailing 30 days.
func (h *CustomerHandler) MySummary(c *gin.Context) {
	now := h.now().UTC()
	summary, err := h.reporting.ComputeSummary(c.Request.Context(), middleware.CallerID(c), now.Add(-defaultSummaryWindow), now)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": formatSummary(summary)})
}
