package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	expensedomain "github.com/HollandRoad/mls/internal/expense/domain"
	"github.com/HollandRoad/mls/internal/month"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createExpenseRequest struct {
	UnitID         string          `json:"unit_id"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentDate    string          `json:"payment_date"`
	ReferenceYear  int             `json:"reference_year"`
	ReferenceMonth *string         `json:"reference_month"`
	Description    string          `json:"description"`
}

// @Summary      Create Landlord Expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body createExpenseRequest true "Create Expense Request"
// @Success      200  {object}  expensedomain.LandlordExpense
// @Router       /expenses [post]
func (s *Server) CreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	unitID, err := parseID(req.UnitID)
	if err != nil {
		AbortWithError(c, newValidationError("unit_id", "invalid_id", "invalid unit id"))
		return
	}
	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		AbortWithError(c, newValidationError("payment_date", "invalid_date", "payment_date must be YYYY-MM-DD"))
		return
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

	resp, err := s.expenseSvc.Create(c.Request.Context(), expensedomain.CreateExpenseRequest{
		UnitID:         unitID,
		Category:       expensedomain.ExpenseCategory(strings.TrimSpace(req.Category)),
		Amount:         req.Amount,
		PaymentDate:    paymentDate,
		ReferenceYear:  req.ReferenceYear,
		ReferenceMonth: reference,
		Description:    strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Landlord Expenses
// @Tags         expenses
// @Produce      json
// @Param        unit_id query  string  false  "Unit ID"
// @Param        year    query  int     false  "Reference year"
// @Success      200  {object}  []expensedomain.LandlordExpense
// @Router       /expenses [get]
func (s *Server) ListExpenses(c *gin.Context) {
	unitID, year, ok := s.expenseFilter(c)
	if !ok {
		return
	}

	resp, err := s.expenseSvc.List(c.Request.Context(), unitID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Yearly Expense Report
// @Description  Per-category totals for a unit and year
// @Tags         expenses
// @Produce      json
// @Param        unit_id query  string  true  "Unit ID"
// @Param        year    query  int     true  "Reference year"
// @Success      200  {object}  expensedomain.YearlyReport
// @Router       /expenses/report [get]
func (s *Server) ExpenseYearlyReport(c *gin.Context) {
	unitID, year, ok := s.expenseFilter(c)
	if !ok {
		return
	}

	resp, err := s.expenseSvc.YearlyReport(c.Request.Context(), unitID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Landlord Expense
// @Tags         expenses
// @Produce      json
// @Param        id   path  string  true  "Expense ID"
// @Success      200  {object}  map[string]string
// @Router       /expenses/{id} [delete]
func (s *Server) DeleteExpense(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid expense id"))
		return
	}

	if err := s.expenseSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) expenseFilter(c *gin.Context) (snowflake.ID, int, bool) {
	var unitID snowflake.ID
	var err error
	if raw := c.Query("unit_id"); raw != "" {
		unitID, err = parseID(raw)
		if err != nil {
			AbortWithError(c, newValidationError("unit_id", "invalid_id", "invalid unit id"))
			return 0, 0, false
		}
	}

	year := 0
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("year", "invalid_year", "year must be an integer"))
			return 0, 0, false
		}
	}
	return unitID, year, true
}
