package server

import (
	"encoding/csv"
	"net/http"
	"strconv"

	overviewdomain "github.com/HollandRoad/mls/internal/overview/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary      Unpaid Tenants
// @Description  Tenants with missed months before the reference month
// @Tags         overview
// @Produce      json
// @Param        reference_month query  string  false  "Reference month (YYYY-MM)"
// @Param        format          query  string  false  "Set to csv for a CSV export"
// @Success      200  {object}  []overviewdomain.UnpaidTenant
// @Router       /overview/unpaid [get]
func (s *Server) ListUnpaidTenants(c *gin.Context) {
	reference, err := parseOptionalMonth(c.Query("reference_month"))
	if err != nil {
		AbortWithError(c, newValidationError("reference_month", "invalid_month", "reference_month must be YYYY-MM"))
		return
	}

	resp, err := s.overviewSvc.UnpaidTenants(c.Request.Context(), reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		s.writeUnpaidCSV(c, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) writeUnpaidCSV(c *gin.Context, rows []overviewdomain.UnpaidTenant) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="unpaid.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"tenant_id",
		"tenant_name",
		"unit_id",
		"unit_name",
		"missed_months",
		"arrears",
		"notice_sent_at",
	})
	for _, row := range rows {
		notice := ""
		if row.NoticeSentAt != nil {
			notice = row.NoticeSentAt.Format("2006-01-02")
		}
		_ = w.Write([]string{
			row.TenantID.String(),
			row.TenantName,
			row.UnitID.String(),
			row.UnitName,
			strconv.Itoa(row.MissedMonths),
			row.Arrears.StringFixed(2),
			notice,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.log.Warn("csv write failed", zap.Error(err))
	}
}

// @Summary      Payment Status Board
// @Description  Per occupied unit, the reconciliation outcome for one month
// @Tags         overview
// @Produce      json
// @Param        month  query  string  false  "Month (YYYY-MM)"
// @Param        format query  string  false  "Set to csv for a CSV export"
// @Success      200  {object}  []overviewdomain.UnitPaymentStatus
// @Router       /overview/payment-status [get]
func (s *Server) ListPaymentStatus(c *gin.Context) {
	m, err := parseOptionalMonth(c.Query("month"))
	if err != nil {
		AbortWithError(c, newValidationError("month", "invalid_month", "month must be YYYY-MM"))
		return
	}

	resp, err := s.overviewSvc.PaymentStatus(c.Request.Context(), m)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		s.writePaymentStatusCSV(c, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) writePaymentStatusCSV(c *gin.Context, rows []overviewdomain.UnitPaymentStatus) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="payment-status.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"unit_id",
		"unit_name",
		"tenant_id",
		"tenant_name",
		"month",
		"status",
		"expected_total",
		"amount_due",
	})
	for _, row := range rows {
		_ = w.Write([]string{
			row.UnitID.String(),
			row.UnitName,
			row.TenantID.String(),
			row.TenantName,
			row.Month.String(),
			string(row.Status),
			row.Expected.StringFixed(2),
			row.AmountDue.StringFixed(2),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.log.Warn("csv write failed", zap.Error(err))
	}
}

// @Summary      Vacant Units
// @Tags         overview
// @Produce      json
// @Success      200  {object}  []overviewdomain.VacantUnit
// @Router       /overview/vacant [get]
func (s *Server) ListVacantUnits(c *gin.Context) {
	resp, err := s.overviewSvc.VacantUnits(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
