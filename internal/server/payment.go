package server

import (
	"net/http"
	"time"

	billingdomain "github.com/HollandRoad/mls/internal/billing/domain"
	"github.com/HollandRoad/mls/internal/month"
	"github.com/HollandRoad/mls/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type recordPaymentRequest struct {
	UnitID          string          `json:"unit_id"`
	TenantID        string          `json:"tenant_id"`
	BillingMonth    string          `json:"billing_month"`
	RentAmount      decimal.Decimal `json:"rent_amount"`
	UtilitiesAmount decimal.Decimal `json:"utilities_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	PaymentDate     string          `json:"payment_date"`
}

// @Summary      Record Payment
// @Description  Record the settlement for one unit and billing month
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body recordPaymentRequest true "Record Payment Request"
// @Success      200  {object}  billingdomain.Payment
// @Router       /payments [post]
func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	unitID, err := parseID(req.UnitID)
	if err != nil {
		AbortWithError(c, newValidationError("unit_id", "invalid_id", "invalid unit id"))
		return
	}
	tenantID, err := parseID(req.TenantID)
	if err != nil {
		AbortWithError(c, newValidationError("tenant_id", "invalid_id", "invalid tenant id"))
		return
	}
	billingMonth, err := month.Parse(req.BillingMonth)
	if err != nil {
		AbortWithError(c, newValidationError("billing_month", "invalid_month", "billing_month must be YYYY-MM"))
		return
	}
	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		AbortWithError(c, newValidationError("payment_date", "invalid_date", "payment_date must be YYYY-MM-DD"))
		return
	}

	resp, err := s.billingSvc.RecordPayment(c.Request.Context(), billingdomain.RecordPaymentRequest{
		UnitID:          unitID,
		TenantID:        tenantID,
		BillingMonth:    billingMonth,
		RentAmount:      req.RentAmount,
		UtilitiesAmount: req.UtilitiesAmount,
		AmountPaid:      req.AmountPaid,
		PaymentDate:     paymentDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "payment.record", "payment", &targetID, map[string]any{
			"unit_id":       resp.UnitID.String(),
			"tenant_id":     resp.TenantID.String(),
			"billing_month": billingMonth.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Payments
// @Tags         payments
// @Produce      json
// @Param        unit_id    query  string  false  "Unit ID"
// @Param        tenant_id  query  string  false  "Tenant ID"
// @Param        page_token query  string  false  "Page Token"
// @Param        page_size  query  int     false  "Page Size"
// @Success      200  {object}  []billingdomain.Payment
// @Router       /payments [get]
func (s *Server) ListPayments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		UnitID   string `form:"unit_id"`
		TenantID string `form:"tenant_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var unitID, tenantID snowflake.ID
	var err error
	if query.UnitID != "" {
		unitID, err = parseID(query.UnitID)
		if err != nil {
			AbortWithError(c, newValidationError("unit_id", "invalid_id", "invalid unit id"))
			return
		}
	}
	if query.TenantID != "" {
		tenantID, err = parseID(query.TenantID)
		if err != nil {
			AbortWithError(c, newValidationError("tenant_id", "invalid_id", "invalid tenant id"))
			return
		}
	}

	resp, pageInfo, err := s.billingSvc.ListPayments(c.Request.Context(), billingdomain.ListPaymentsRequest{
		UnitID:     unitID,
		TenantID:   tenantID,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp, "page_info": pageInfo})
}

// @Summary      Get Payment
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  billingdomain.Payment
// @Router       /payments/{id} [get]
func (s *Server) GetPaymentByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid payment id"))
		return
	}

	resp, err := s.billingSvc.GetPayment(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePaymentRequest struct {
	RentAmount      *decimal.Decimal `json:"rent_amount"`
	UtilitiesAmount *decimal.Decimal `json:"utilities_amount"`
	AmountPaid      *decimal.Decimal `json:"amount_paid"`
	PaymentDate     *string          `json:"payment_date"`
}

// @Summary      Update Payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id      path  string               true  "Payment ID"
// @Param        request body  updatePaymentRequest true  "Update Payment Request"
// @Success      200  {object}  billingdomain.Payment
// @Router       /payments/{id} [patch]
func (s *Server) UpdatePayment(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid payment id"))
		return
	}

	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := billingdomain.UpdatePaymentRequest{
		RentAmount:      req.RentAmount,
		UtilitiesAmount: req.UtilitiesAmount,
		AmountPaid:      req.AmountPaid,
	}
	if req.PaymentDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			AbortWithError(c, newValidationError("payment_date", "invalid_date", "payment_date must be YYYY-MM-DD"))
			return
		}
		update.PaymentDate = &parsed
	}

	resp, err := s.billingSvc.UpdatePayment(c.Request.Context(), id, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "payment.update", "payment", &targetID, map[string]any{
			"payment_id": targetID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Payment
// @Tags         payments
// @Produce      json
// @Param        id   path  string  true  "Payment ID"
// @Success      200  {object}  map[string]string
// @Router       /payments/{id} [delete]
func (s *Server) DeletePayment(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid payment id"))
		return
	}

	if err := s.billingSvc.DeletePayment(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := id.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "payment.delete", "payment", &targetID, nil)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
