package server

import (
	"net/http"
	"strings"

	unitdomain "github.com/HollandRoad/mls/internal/unit/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Create Unit
// @Description  Register a rentable unit
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        request body unitdomain.CreateUnitRequest true "Create Unit Request"
// @Success      200  {object}  unitdomain.Unit
// @Router       /units [post]
func (s *Server) CreateUnit(c *gin.Context) {
	var req unitdomain.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Units
// @Tags         units
// @Produce      json
// @Success      200  {object}  []unitdomain.Unit
// @Router       /units [get]
func (s *Server) ListUnits(c *gin.Context) {
	resp, err := s.unitSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Unit
// @Tags         units
// @Produce      json
// @Param        id   path      string  true  "Unit ID"
// @Success      200  {object}  unitdomain.Unit
// @Router       /units/{id} [get]
func (s *Server) GetUnitByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid unit id"))
		return
	}

	resp, err := s.unitSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Unit
// @Description  Update base rates or contact bindings. Base-rate changes only
// @Description  affect months without a recorded payment.
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id      path  string                       true  "Unit ID"
// @Param        request body  unitdomain.UpdateUnitRequest true  "Update Unit Request"
// @Success      200  {object}  unitdomain.Unit
// @Router       /units/{id} [patch]
func (s *Server) UpdateUnit(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid unit id"))
		return
	}

	var req unitdomain.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "unit.update", "unit", &targetID, map[string]any{
			"unit_id": targetID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createContactRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	PostCode    string `json:"post_code"`
	City        string `json:"city"`
}

// @Summary      Create Landlord
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Success      200  {object}  unitdomain.Landlord
// @Router       /landlords [post]
func (s *Server) CreateLandlord(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.CreateLandlord(c.Request.Context(), unitdomain.Landlord{
		Name:        strings.TrimSpace(req.Name),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Email:       strings.TrimSpace(req.Email),
		Address:     strings.TrimSpace(req.Address),
		PostCode:    strings.TrimSpace(req.PostCode),
		City:        strings.TrimSpace(req.City),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Landlords
// @Tags         contacts
// @Produce      json
// @Success      200  {object}  []unitdomain.Landlord
// @Router       /landlords [get]
func (s *Server) ListLandlords(c *gin.Context) {
	resp, err := s.unitSvc.ListLandlords(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Create Building Manager
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Success      200  {object}  unitdomain.BuildingManager
// @Router       /managers [post]
func (s *Server) CreateManager(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.CreateManager(c.Request.Context(), unitdomain.BuildingManager{
		Name:        strings.TrimSpace(req.Name),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Email:       strings.TrimSpace(req.Email),
		Address:     strings.TrimSpace(req.Address),
		PostCode:    strings.TrimSpace(req.PostCode),
		City:        strings.TrimSpace(req.City),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Building Managers
// @Tags         contacts
// @Produce      json
// @Success      200  {object}  []unitdomain.BuildingManager
// @Router       /managers [get]
func (s *Server) ListManagers(c *gin.Context) {
	resp, err := s.unitSvc.ListManagers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
