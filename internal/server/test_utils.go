package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type testCleanupRequest struct {
	Prefix string `json:"prefix"`
}

// TestCleanup deletes records created by integration suites, matched by a
// name prefix. Disabled entirely in production.
func (s *Server) TestCleanup(c *gin.Context) {
	if s.cfg.IsProduction() {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req testCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		AbortWithError(c, newValidationError("prefix", "required", "prefix is required"))
		return
	}

	ctx := c.Request.Context()
	unitIDs, err := s.loadUnitIDsByPrefix(ctx, prefix)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.deleteUnitData(ctx, unitIDs); err != nil {
		AbortWithError(c, err)
		return
	}

	tenantIDs, err := s.loadTenantIDsByPrefix(ctx, prefix)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.deleteTenantData(ctx, tenantIDs); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) loadUnitIDsByPrefix(ctx context.Context, prefix string) ([]int64, error) {
	like := strings.TrimSpace(prefix) + "%"
	var unitIDs []int64
	if err := s.db.WithContext(ctx).
		Table("units").
		Select("id").
		Where("name LIKE ?", like).
		Scan(&unitIDs).Error; err != nil {
		return nil, err
	}
	return unitIDs, nil
}

func (s *Server) deleteUnitData(ctx context.Context, unitIDs []int64) error {
	if len(unitIDs) == 0 {
		return nil
	}
	queries := []string{
		`DELETE FROM extra_charges WHERE unit_id IN ?`,
		`DELETE FROM payments WHERE unit_id IN ?`,
		`DELETE FROM utility_adjustments WHERE unit_id IN ?`,
		`DELETE FROM landlord_expenses WHERE unit_id IN ?`,
		`DELETE FROM tenancy_periods WHERE unit_id IN ?`,
		`DELETE FROM units WHERE id IN ?`,
	}
	for _, query := range queries {
		if err := s.db.WithContext(ctx).Exec(query, unitIDs).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) loadTenantIDsByPrefix(ctx context.Context, prefix string) ([]int64, error) {
	like := strings.TrimSpace(prefix) + "%"
	var tenantIDs []int64
	if err := s.db.WithContext(ctx).
		Table("tenants").
		Select("id").
		Where("name LIKE ?", like).
		Scan(&tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}

func (s *Server) deleteTenantData(ctx context.Context, tenantIDs []int64) error {
	if len(tenantIDs) == 0 {
		return nil
	}
	queries := []string{
		`DELETE FROM notification_events WHERE tenant_id IN ?`,
		`DELETE FROM communications WHERE tenant_id IN ?`,
		`DELETE FROM extra_charges WHERE tenant_id IN ?`,
		`DELETE FROM payments WHERE tenant_id IN ?`,
		`DELETE FROM utility_adjustments WHERE tenant_id IN ?`,
		`DELETE FROM tenancy_periods WHERE tenant_id IN ?`,
		`DELETE FROM tenants WHERE id IN ?`,
	}
	for _, query := range queries {
		if err := s.db.WithContext(ctx).Exec(query, tenantIDs).Error; err != nil {
			return err
		}
	}
	return nil
}
