package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopledger/internal/domain/models"
	"github.com/mamadbah2/shopledger/internal/server/middleware"
	"github.com/mamadbah2/shopledger/internal/service/ledger"
)

// CustomerHandler exposes the bill/customer ledger over HTTP.
type CustomerHandler struct {
	svc    *ledger.Service
	logger *zap.Logger
}

// NewCustomerHandler constructs the HTTP handler adapter.
func NewCustomerHandler(svc *ledger.Service, logger *zap.Logger) *CustomerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerHandler{svc: svc, logger: logger}
}

// Add records a new customer purchase: POST /customers/add.
func (h *CustomerHandler) Add(c *gin.Context) {
	var req models.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "All fields are required")
		return
	}

	bill, err := h.svc.CreateBill(c.Request.Context(), middleware.OwnerID(c), req)
	if err != nil {
		// A missing product is a bad line item reference, not a missing route
		// resource, so it reports as 400 rather than 404.
		if errors.Is(err, models.ErrNotFound) {
			badRequest(c, err.Error())
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Customer added successfully",
		"success":  true,
		"customer": bill,
	})
}

// List returns all bills for the authenticated owner: GET /customers.
func (h *CustomerHandler) List(c *gin.Context) {
	bills, err := h.svc.ListBills(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customers fetched successfully",
		"success": true,
		"data":    bills,
	})
}

// UpdatePayment sets the cumulative paid amount: PUT /customers/:customerId.
func (h *CustomerHandler) UpdatePayment(c *gin.Context) {
	var req models.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "paidAmount is required")
		return
	}

	summary, err := h.svc.RecordPayment(c.Request.Context(), middleware.OwnerID(c), c.Param("customerId"), *req.PaidAmount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Customer updated successfully",
		"success":  true,
		"customer": summary,
	})
}

// Delete removes a bill: DELETE /customers/:customerId.
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteBill(c.Request.Context(), middleware.OwnerID(c), c.Param("customerId")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer deleted successfully",
		"success": true,
	})
}
