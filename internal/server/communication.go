package server

import (
	"net/http"
	"strings"
	"time"

	communicationdomain "github.com/HollandRoad/mls/internal/communication/domain"
	"github.com/HollandRoad/mls/internal/month"
	"github.com/gin-gonic/gin"
)

type recordCommunicationRequest struct {
	TenantID       string  `json:"tenant_id"`
	Type           string  `json:"type"`
	SentAt         string  `json:"sent_at"`
	ReferenceMonth *string `json:"reference_month"`
	Notes          string  `json:"notes"`
}

// @Summary      Record Communication
// @Description  Log a dispatched receipt or notice for duplicate suppression
// @Tags         communications
// @Accept       json
// @Produce      json
// @Param        request body recordCommunicationRequest true "Record Communication Request"
// @Success      200  {object}  communicationdomain.Communication
// @Router       /communications [post]
func (s *Server) RecordCommunication(c *gin.Context) {
	var req recordCommunicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenantID, err := parseID(req.TenantID)
	if err != nil {
		AbortWithError(c, newValidationError("tenant_id", "invalid_id", "invalid tenant id"))
		return
	}

	sentAt := time.Now().UTC()
	if strings.TrimSpace(req.SentAt) != "" {
		sentAt, err = time.Parse("2006-01-02", req.SentAt)
		if err != nil {
			AbortWithError(c, newValidationError("sent_at", "invalid_date", "sent_at must be YYYY-MM-DD"))
			return
		}
	}

	var reference *month.Month
	if req.ReferenceMonth != nil {
		parsed, err := month.Parse(*req.ReferenceMonth)
		if err != nil {
			AbortWithError(c, newValidationError("reference_month", "invalid_month", "reference_month must be YYYY-MM"))
			return
		}
		reference = &parsed
	}

	resp, err := s.communicationSvc.Record(c.Request.Context(), communicationdomain.RecordRequest{
		TenantID:       tenantID,
		Type:           communicationdomain.CommunicationType(strings.TrimSpace(req.Type)),
		SentAt:         sentAt,
		ReferenceMonth: reference,
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Communications
// @Tags         communications
// @Produce      json
// @Param        tenant_id query  string  true  "Tenant ID"
// @Success      200  {object}  []communicationdomain.Communication
// @Router       /communications [get]
func (s *Server) ListCommunications(c *gin.Context) {
	tenantID, err := parseID(c.Query("tenant_id"))
	if err != nil {
		AbortWithError(c, newValidationError("tenant_id", "invalid_id", "invalid tenant id"))
		return
	}

	resp, err := s.communicationSvc.List(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
