package server

import (
	"net/http"
	"time"

	tenancydomain "github.com/HollandRoad/mls/internal/tenancy/domain"
	"github.com/gin-gonic/gin"
)

type assignTenancyRequest struct {
	UnitID    string `json:"unit_id"`
	TenantID  string `json:"tenant_id"`
	StartDate string `json:"start_date"`
}

type endTenancyRequest struct {
	UnitID   string `json:"unit_id"`
	TenantID string `json:"tenant_id"`
	EndDate  string `json:"end_date"`
}

// @Summary      Assign Tenancy
// @Description  Open a tenancy period for a vacant unit
// @Tags         tenancies
// @Accept       json
// @Produce      json
// @Param        request body assignTenancyRequest true "Assign Tenancy Request"
// @Success      200  {object}  tenancydomain.TenancyPeriod
// @Router       /tenancies [post]
func (s *Server) AssignTenancy(c *gin.Context) {
	var req assignTenancyRequest
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
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_date", "start_date must be YYYY-MM-DD"))
		return
	}

	resp, err := s.tenancySvc.Assign(c.Request.Context(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  tenantID,
		StartDate: startDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "tenancy.assign", "tenancy_period", &targetID, map[string]any{
			"unit_id":   resp.UnitID.String(),
			"tenant_id": resp.TenantID.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      End Tenancy
// @Description  Close the open tenancy period for a unit
// @Tags         tenancies
// @Accept       json
// @Produce      json
// @Param        request body endTenancyRequest true "End Tenancy Request"
// @Success      200  {object}  tenancydomain.TenancyPeriod
// @Router       /tenancies/end [post]
func (s *Server) EndTenancy(c *gin.Context) {
	var req endTenancyRequest
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
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_date", "end_date must be YYYY-MM-DD"))
		return
	}

	resp, err := s.tenancySvc.EndTenancy(c.Request.Context(), tenancydomain.EndTenancyRequest{
		UnitID:   unitID,
		TenantID: tenantID,
		EndDate:  endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "tenancy.end", "tenancy_period", &targetID, map[string]any{
			"unit_id":   resp.UnitID.String(),
			"tenant_id": resp.TenantID.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Unit Tenancies
// @Tags         tenancies
// @Produce      json
// @Param        id   path      string  true  "Unit ID"
// @Success      200  {object}  []tenancydomain.TenancyPeriod
// @Router       /units/{id}/tenancies [get]
func (s *Server) ListUnitTenancies(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid unit id"))
		return
	}

	resp, err := s.tenancySvc.ListByUnit(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Tenant Tenancies
// @Tags         tenancies
// @Produce      json
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  []tenancydomain.TenancyPeriod
// @Router       /tenants/{id}/tenancies [get]
func (s *Server) ListTenantTenancies(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid tenant id"))
		return
	}

	resp, err := s.tenancySvc.ListByTenant(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
