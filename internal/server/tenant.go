package server

import (
	"net/http"

	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Create Tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        request body tenantdomain.CreateTenantRequest true "Create Tenant Request"
// @Success      200  {object}  tenantdomain.Tenant
// @Router       /tenants [post]
func (s *Server) CreateTenant(c *gin.Context) {
	var req tenantdomain.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenantSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Tenants
// @Tags         tenants
// @Produce      json
// @Success      200  {object}  []tenantdomain.Tenant
// @Router       /tenants [get]
func (s *Server) ListTenants(c *gin.Context) {
	resp, err := s.tenantSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Tenant
// @Tags         tenants
// @Produce      json
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  tenantdomain.Tenant
// @Router       /tenants/{id} [get]
func (s *Server) GetTenantByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid tenant id"))
		return
	}

	resp, err := s.tenantSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id      path  string                           true  "Tenant ID"
// @Param        request body  tenantdomain.UpdateTenantRequest true  "Update Tenant Request"
// @Success      200  {object}  tenantdomain.Tenant
// @Router       /tenants/{id} [patch]
func (s *Server) UpdateTenant(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid tenant id"))
		return
	}

	var req tenantdomain.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenantSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
