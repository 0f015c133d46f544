package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/HollandRoad/mls/internal/audit/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      List Audit Logs
// @Tags         audit
// @Produce      json
// @Param        action      query  string  false  "Action filter"
// @Param        target_type query  string  false  "Target type filter"
// @Param        target_id   query  string  false  "Target id filter"
// @Success      200  {object}  []auditdomain.AuditLog
// @Router       /audit-logs [get]
func (s *Server) ListAuditLogs(c *gin.Context) {
	if s.auditSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListFilter{
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("target_type")),
		TargetID:   strings.TrimSpace(c.Query("target_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
