package server

import (
	"net/http"
	"strings"

	billingdomain "github.com/HollandRoad/mls/internal/billing/domain"
	"github.com/HollandRoad/mls/internal/month"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createExtraChargeRequest struct {
	UnitID       string          `json:"unit_id"`
	TenantID     string          `json:"tenant_id"`
	BillingMonth string          `json:"billing_month"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
}

// @Summary      Create Extra Charge
// @Description  Add a one-off charge on top of a month's base amount
// @Tags         charges
// @Accept       json
// @Produce      json
// @Param        request body createExtraChargeRequest true "Create Extra Charge Request"
// @Success      200  {object}  billingdomain.ExtraCharge
// @Router       /extra-charges [post]
func (s *Server) CreateExtraCharge(c *gin.Context) {
	var req createExtraChargeRequest
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

	resp, err := s.billingSvc.CreateExtraCharge(c.Request.Context(), billingdomain.CreateExtraChargeRequest{
		UnitID:       unitID,
		TenantID:     tenantID,
		BillingMonth: billingMonth,
		Amount:       req.Amount,
		Category:     billingdomain.ChargeCategory(strings.TrimSpace(req.Category)),
		Description:  strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Extra Charges
// @Tags         charges
// @Produce      json
// @Param        unit_id query  string  true   "Unit ID"
// @Param        month   query  string  false  "Billing month (YYYY-MM)"
// @Success      200  {object}  []billingdomain.ExtraCharge
// @Router       /extra-charges [get]
func (s *Server) ListExtraCharges(c *gin.Context) {
	unitID, err := parseID(c.Query("unit_id"))
	if err != nil {
		AbortWithError(c, newValidationError("unit_id", "invalid_id", "invalid unit id"))
		return
	}

	m, err := parseOptionalMonth(c.Query("month"))
	if err != nil {
		AbortWithError(c, newValidationError("month", "invalid_month", "month must be YYYY-MM"))
		return
	}

	resp, err := s.billingSvc.ListExtraCharges(c.Request.Context(), unitID, m)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Extra Charge
// @Tags         charges
// @Produce      json
// @Param        id   path  string  true  "Extra Charge ID"
// @Success      200  {object}  map[string]string
// @Router       /extra-charges/{id} [delete]
func (s *Server) DeleteExtraCharge(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid charge id"))
		return
	}

	if err := s.billingSvc.DeleteExtraCharge(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
