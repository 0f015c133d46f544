package server

import (
	"net/http"

	adjustmentdomain "github.com/HollandRoad/mls/internal/adjustment/domain"
	"github.com/HollandRoad/mls/internal/month"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createAdjustmentRequest struct {
	UnitID              string          `json:"unit_id"`
	TenantID            string          `json:"tenant_id"`
	ReferenceYear       int             `json:"reference_year"`
	LiftAmount          decimal.Decimal `json:"lift_amount"`
	HeatingAmount       decimal.Decimal `json:"heating_amount"`
	OtherAmount         decimal.Decimal `json:"other_amount"`
	YearlyUtilitiesPaid decimal.Decimal `json:"yearly_utilities_paid"`
}

// @Summary      Create Utility Adjustment
// @Description  Register the annual regularization for a unit and tenant
// @Tags         adjustments
// @Accept       json
// @Produce      json
// @Param        request body createAdjustmentRequest true "Create Adjustment Request"
// @Success      200  {object}  adjustmentdomain.UtilityAdjustment
// @Router       /adjustments [post]
func (s *Server) CreateAdjustment(c *gin.Context) {
	var req createAdjustmentRequest
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

	resp, err := s.adjustmentSvc.Create(c.Request.Context(), adjustmentdomain.CreateRequest{
		UnitID:              unitID,
		TenantID:            tenantID,
		ReferenceYear:       req.ReferenceYear,
		LiftAmount:          req.LiftAmount,
		HeatingAmount:       req.HeatingAmount,
		OtherAmount:         req.OtherAmount,
		YearlyUtilitiesPaid: req.YearlyUtilitiesPaid,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "adjustment.create", "utility_adjustment", &targetID, map[string]any{
			"unit_id":        resp.UnitID.String(),
			"tenant_id":      resp.TenantID.String(),
			"reference_year": resp.ReferenceYear,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Utility Adjustments
// @Tags         adjustments
// @Produce      json
// @Param        unit_id   query  string  false  "Unit ID"
// @Param        tenant_id query  string  false  "Tenant ID"
// @Success      200  {object}  []adjustmentdomain.UtilityAdjustment
// @Router       /adjustments [get]
func (s *Server) ListAdjustments(c *gin.Context) {
	var unitID, tenantID snowflake.ID
	var err error
	if raw := c.Query("unit_id"); raw != "" {
		unitID, err = parseID(raw)
		if err != nil {
			AbortWithError(c, newValidationError("unit_id", "invalid_id", "invalid unit id"))
			return
		}
	}
	if raw := c.Query("tenant_id"); raw != "" {
		tenantID, err = parseID(raw)
		if err != nil {
			AbortWithError(c, newValidationError("tenant_id", "invalid_id", "invalid tenant id"))
			return
		}
	}

	resp, err := s.adjustmentSvc.List(c.Request.Context(), unitID, tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Utility Adjustment
// @Tags         adjustments
// @Produce      json
// @Param        id   path      string  true  "Adjustment ID"
// @Success      200  {object}  adjustmentdomain.UtilityAdjustment
// @Router       /adjustments/{id} [get]
func (s *Server) GetAdjustmentByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid adjustment id"))
		return
	}

	resp, err := s.adjustmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Utility Adjustment
// @Tags         adjustments
// @Accept       json
// @Produce      json
// @Param        id      path  string                        true  "Adjustment ID"
// @Param        request body  adjustmentdomain.UpdateRequest true "Update Adjustment Request"
// @Success      200  {object}  adjustmentdomain.UtilityAdjustment
// @Router       /adjustments/{id} [patch]
func (s *Server) UpdateAdjustment(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid adjustment id"))
		return
	}

	var req adjustmentdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.adjustmentSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "adjustment.update", "utility_adjustment", &targetID, nil)
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type bindAdjustmentRequest struct {
	ReferenceMonth *string `json:"reference_month"`
}

// @Summary      Bind Utility Adjustment
// @Description  Bind the adjustment's net balance into a billing month.
// @Description  A null reference_month unbinds it.
// @Tags         adjustments
// @Accept       json
// @Produce      json
// @Param        id      path  string                true  "Adjustment ID"
// @Param        request body  bindAdjustmentRequest true  "Bind Adjustment Request"
// @Success      200  {object}  adjustmentdomain.UtilityAdjustment
// @Router       /adjustments/{id}/bind [post]
func (s *Server) BindAdjustment(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid adjustment id"))
		return
	}

	var req bindAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var target *month.Month
	if req.ReferenceMonth != nil {
		parsed, err := month.Parse(*req.ReferenceMonth)
		if err != nil {
			AbortWithError(c, newValidationError("reference_month", "invalid_month", "reference_month must be YYYY-MM"))
			return
		}
		target = &parsed
	}

	resp, err := s.adjustmentSvc.Bind(c.Request.Context(), id, target)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		metadata := map[string]any{"adjustment_id": targetID}
		if target != nil {
			metadata["reference_month"] = target.String()
		}
		_ = s.auditSvc.AuditLog(c.Request.Context(), "adjustment.bind", "utility_adjustment", &targetID, metadata)
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Utility Adjustment
// @Tags         adjustments
// @Produce      json
// @Param        id   path  string  true  "Adjustment ID"
// @Success      200  {object}  map[string]string
// @Router       /adjustments/{id} [delete]
func (s *Server) DeleteAdjustment(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid adjustment id"))
		return
	}

	if err := s.adjustmentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := id.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "adjustment.delete", "utility_adjustment", &targetID, nil)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
