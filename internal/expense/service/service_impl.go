package service

import (
	"context"
	"time"

	expensedomain "github.com/HollandRoad/mls/internal/expense/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

func NewService(p ServiceParam) expensedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("expense.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req expensedomain.CreateExpenseRequest) (*expensedomain.LandlordExpense, error) {
	if req.Amount.IsNegative() {
		return nil, expensedomain.ErrInvalidAmount
	}
	if req.ReferenceYear < 1900 || req.ReferenceYear > time.Now().UTC().Year()+1 {
		return nil, expensedomain.ErrInvalidYear
	}

	category := req.Category
	if category == "" {
		category = expensedomain.CategoryOther
	}
	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}
	var reference *time.Time
	if req.ReferenceMonth != nil {
		monthStart := req.ReferenceMonth.Time()
		reference = &monthStart
	}

	now := time.Now().UTC()
	expense := expensedomain.LandlordExpense{
		ID:             s.genID.Generate(),
		UnitID:         req.UnitID,
		Category:       category,
		Amount:         req.Amount,
		PaymentDate:    paymentDate,
		ReferenceYear:  req.ReferenceYear,
		ReferenceMonth: reference,
		Description:    req.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	result := s.db.WithContext(ctx).Delete(&expensedomain.LandlordExpense{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return expensedomain.ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context, unitID snowflake.ID, year int) ([]expensedomain.LandlordExpense, error) {
	query := s.db.WithContext(ctx).Order("payment_date DESC")
	if unitID != 0 {
		query = query.Where("unit_id = ?", unitID)
	}
	if year != 0 {
		query = query.Where("reference_year = ?", year)
	}
	var expenses []expensedomain.LandlordExpense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *Service) YearlyReport(ctx context.Context, unitID snowflake.ID, year int) (*expensedomain.YearlyReport, error) {
	if year == 0 {
		return nil, expensedomain.ErrInvalidYear
	}

	expenses, err := s.List(ctx, unitID, year)
	if err != nil {
		return nil, err
	}

	report := expensedomain.YearlyReport{
		Year:       year,
		Total:      decimal.Zero,
		ByCategory: make(map[expensedomain.ExpenseCategory]decimal.Decimal),
		Expenses:   expenses,
	}
	for _, expense := range expenses {
		report.Total = report.Total.Add(expense.Amount)
		report.ByCategory[expense.Category] = report.ByCategory[expense.Category].Add(expense.Amount)
	}
	return &report, nil
}
