package server

import (
	"encoding/csv"
	"net/http"
	"time"

	ledgerdomain "github.com/HollandRoad/mls/internal/ledger/domain"
	"github.com/HollandRoad/mls/internal/month"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ledgerEntryResponse struct {
	ledgerdomain.LedgerEntry
	ExpectedTotal decimal.Decimal                   `json:"expected_total"`
	Result        ledgerdomain.ReconciliationResult `json:"result"`
}

func (s *Server) buildLedger(c *gin.Context) ([]ledgerEntryResponse, bool) {
	unitID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid unit id"))
		return nil, false
	}

	var tenantID snowflake.ID
	if raw := c.Query("tenant_id"); raw != "" {
		tenantID, err = parseID(raw)
		if err != nil {
			AbortWithError(c, newValidationError("tenant_id", "invalid_id", "invalid tenant id"))
			return nil, false
		}
	}

	from, ok := requireMonth(c, "from")
	if !ok {
		return nil, false
	}
	to, ok := requireMonth(c, "to")
	if !ok {
		return nil, false
	}
	reference, err := parseOptionalMonth(c.Query("reference_month"))
	if err != nil {
		AbortWithError(c, newValidationError("reference_month", "invalid_month", "reference_month must be YYYY-MM"))
		return nil, false
	}

	entries, err := s.ledgerSvc.ListLedger(c.Request.Context(), ledgerdomain.ListLedgerRequest{
		UnitID:         unitID,
		TenantID:       tenantID,
		From:           from,
		To:             to,
		ReferenceMonth: reference,
	})
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}

	resp := make([]ledgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, ledgerEntryResponse{
			LedgerEntry:   entry,
			ExpectedTotal: s.ledgerSvc.ExpectedTotal(entry),
			Result:        s.ledgerSvc.Reconcile(entry),
		})
	}
	return resp, true
}

// @Summary      Unit Ledger
// @Description  One reconciled entry per calendar month in the range
// @Tags         ledger
// @Produce      json
// @Param        id              path   string  true   "Unit ID"
// @Param        tenant_id       query  string  false  "Tenant ID"
// @Param        from            query  string  true   "From month (YYYY-MM)"
// @Param        to              query  string  true   "To month (YYYY-MM)"
// @Param        reference_month query  string  false  "Reference month (YYYY-MM)"
// @Success      200  {object}  []ledgerEntryResponse
// @Router       /units/{id}/ledger [get]
func (s *Server) ListLedger(c *gin.Context) {
	resp, ok := s.buildLedger(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Unit Ledger CSV
// @Description  Same rows as the ledger endpoint, rendered as CSV
// @Tags         ledger
// @Produce      text/csv
// @Param        id   path   string  true  "Unit ID"
// @Router       /units/{id}/ledger.csv [get]
func (s *Server) ExportLedgerCSV(c *gin.Context) {
	resp, ok := s.buildLedger(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="ledger.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"month",
		"occupancy",
		"status",
		"expected_total",
		"amount_paid",
		"amount_due",
		"difference",
		"payment_date",
	})
	for _, entry := range resp {
		paid := ""
		paymentDate := ""
		if entry.Payment != nil {
			paid = entry.Payment.AmountPaid.StringFixed(2)
			paymentDate = entry.Payment.PaymentDate.Format("2006-01-02")
		}
		_ = w.Write([]string{
			entry.Month.String(),
			string(entry.Occupancy),
			string(entry.Result.Status),
			entry.ExpectedTotal.StringFixed(2),
			paid,
			entry.Result.AmountDue.StringFixed(2),
			entry.Result.Difference.StringFixed(2),
			paymentDate,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.log.Warn("csv write failed", zap.Error(err))
	}
}

// @Summary      Unit Arrears
// @Description  Outstanding balance accumulated before the given month
// @Tags         ledger
// @Produce      json
// @Param        id        path   string  true   "Unit ID"
// @Param        tenant_id query  string  false  "Tenant ID"
// @Param        before    query  string  true   "Exclusive upper bound (YYYY-MM)"
// @Success      200  {object}  map[string]string
// @Router       /units/{id}/arrears [get]
func (s *Server) GetArrears(c *gin.Context) {
	unitID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid unit id"))
		return
	}

	var tenantID snowflake.ID
	if raw := c.Query("tenant_id"); raw != "" {
		tenantID, err = parseID(raw)
		if err != nil {
			AbortWithError(c, newValidationError("tenant_id", "invalid_id", "invalid tenant id"))
			return
		}
	}

	before, ok := requireMonth(c, "before")
	if !ok {
		return
	}

	total, err := s.ledgerSvc.Arrears(c.Request.Context(), unitID, tenantID, before)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"unit_id": unitID.String(),
		"before":  formatMonth(before),
		"arrears": total,
	}})
}

// @Summary      Unit Summary
// @Description  Unit record, active tenancy, current month status and arrears
// @Tags         ledger
// @Produce      json
// @Param        id              path   string  true   "Unit ID"
// @Param        reference_month query  string  false  "Reference month (YYYY-MM), defaults to the current month"
// @Success      200  {object}  map[string]string
// @Router       /units/{id}/summary [get]
func (s *Server) GetUnitSummary(c *gin.Context) {
	unitID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid unit id"))
		return
	}

	reference, err := parseOptionalMonth(c.Query("reference_month"))
	if err != nil {
		AbortWithError(c, newValidationError("reference_month", "invalid_month", "reference_month must be YYYY-MM"))
		return
	}
	if reference.IsZero() {
		reference = month.FromTime(time.Now().UTC())
	}

	unit, err := s.unitSvc.GetByID(c.Request.Context(), unitID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary := gin.H{
		"unit":            unit,
		"reference_month": reference,
	}

	period, err := s.tenancySvc.ActivePeriod(c.Request.Context(), unitID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if period != nil {
		summary["tenancy"] = period
		tenant, err := s.tenantSvc.GetByID(c.Request.Context(), period.TenantID)
		if err == nil {
			summary["tenant"] = tenant
		}

		entries, err := s.ledgerSvc.ListLedger(c.Request.Context(), ledgerdomain.ListLedgerRequest{
			UnitID:         unitID,
			TenantID:       period.TenantID,
			From:           reference,
			To:             reference,
			ReferenceMonth: reference,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if len(entries) == 1 {
			summary["current_month"] = ledgerEntryResponse{
				LedgerEntry:   entries[0],
				ExpectedTotal: s.ledgerSvc.ExpectedTotal(entries[0]),
				Result:        s.ledgerSvc.Reconcile(entries[0]),
			}
		}

		arrears, err := s.ledgerSvc.Arrears(c.Request.Context(), unitID, period.TenantID, reference)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		summary["arrears"] = arrears
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func formatMonth(m month.Month) string {
	if m.IsZero() {
		return ""
	}
	return m.String()
}
