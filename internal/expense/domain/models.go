package domain

import (
	"context"
	"errors"
	"time"

	"github.com/HollandRoad/mls/internal/month"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies landlord-side expenses.
type ExpenseCategory string

const (
	CategoryPropertyTax ExpenseCategory = "property_tax"
	CategoryWorks       ExpenseCategory = "works"
	CategoryPlumbing    ExpenseCategory = "plumbing"
	CategoryCondoFees   ExpenseCategory = "condo_fees"
	CategoryInsurance   ExpenseCategory = "insurance"
	CategoryOther       ExpenseCategory = "other"
)

// LandlordExpense is an expense borne by the landlord for a unit; it never
// enters the tenant ledger but feeds the yearly expense report.
type LandlordExpense struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	UnitID         snowflake.ID    `gorm:"not null;index" json:"unit_id"`
	Category       ExpenseCategory `gorm:"type:text;not null;default:'other'" json:"category"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentDate    time.Time       `gorm:"type:date;not null" json:"payment_date"`
	ReferenceYear  int             `gorm:"not null;index" json:"reference_year"`
	ReferenceMonth *time.Time      `gorm:"type:date" json:"reference_month,omitempty"`
	Description    string          `gorm:"type:text" json:"description"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (LandlordExpense) TableName() string { return "landlord_expenses" }

type CreateExpenseRequest struct {
	UnitID         snowflake.ID    `json:"unit_id"`
	Category       ExpenseCategory `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentDate    time.Time       `json:"payment_date"`
	ReferenceYear  int             `json:"reference_year"`
	ReferenceMonth *month.Month    `json:"reference_month"`
	Description    string          `json:"description"`
}

// YearlyReport aggregates a landlord's expenses per category for one year.
type YearlyReport struct {
	Year       int                                 `json:"year"`
	Total      decimal.Decimal                     `json:"total"`
	ByCategory map[ExpenseCategory]decimal.Decimal `json:"by_category"`
	Expenses   []LandlordExpense                   `json:"expenses"`
}

// Service manages landlord expense records.
type Service interface {
	Create(ctx context.Context, req CreateExpenseRequest) (*LandlordExpense, error)
	Delete(ctx context.Context, id snowflake.ID) error
	List(ctx context.Context, unitID snowflake.ID, year int) ([]LandlordExpense, error)
	YearlyReport(ctx context.Context, unitID snowflake.ID, year int) (*YearlyReport, error)
}

var (
	ErrNotFound      = errors.New("expense_not_found")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidYear   = errors.New("invalid_reference_year")
)
