package service

import (
	"context"
	"fmt"
	"time"

	billingdomain "github.com/HollandRoad/mls/internal/billing/domain"
	"github.com/HollandRoad/mls/internal/events"
	"github.com/HollandRoad/mls/internal/month"
	"github.com/HollandRoad/mls/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service manages payment and extra-charge records. Charged amounts are
// frozen on the payment row; editing them afterwards is an explicit
// administrative action, never a side effect of unit edits.
type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	outbox *events.Outbox
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Outbox *events.Outbox
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("billing.service"),
		genID:  p.GenID,
		outbox: p.Outbox,
	}
}

func (s *Service) RecordPayment(ctx context.Context, req billingdomain.RecordPaymentRequest) (*billingdomain.Payment, error) {
	if req.BillingMonth.IsZero() {
		return nil, billingdomain.ErrInvalidMonth
	}
	for _, amount := range []decimal.Decimal{req.RentAmount, req.UtilitiesAmount, req.AmountPaid} {
		if amount.IsNegative() {
			return nil, billingdomain.ErrInvalidAmount
		}
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}

	var created billingdomain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&billingdomain.Payment{}).
			Where("unit_id = ? AND billing_month = ?", req.UnitID, req.BillingMonth.Time()).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return billingdomain.ErrDuplicateMonth
		}

		now := time.Now().UTC()
		created = billingdomain.Payment{
			ID:              s.genID.Generate(),
			UnitID:          req.UnitID,
			TenantID:        req.TenantID,
			BillingMonth:    req.BillingMonth.Time(),
			RentAmount:      req.RentAmount,
			UtilitiesAmount: req.UtilitiesAmount,
			AmountPaid:      req.AmountPaid,
			PaymentDate:     paymentDate,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			TenantID: req.TenantID,
			Type:     events.EventPaymentRecorded,
			Payload: events.PaymentPayload{
				PaymentID:    created.ID.String(),
				UnitID:       created.UnitID.String(),
				TenantID:     created.TenantID.String(),
				BillingMonth: req.BillingMonth.String(),
			}.ToMap(),
			DedupeKey: fmt.Sprintf("payment.recorded:%s", created.ID),
		})
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) UpdatePayment(ctx context.Context, id snowflake.ID, req billingdomain.UpdatePaymentRequest) (*billingdomain.Payment, error) {
	for _, amount := range []*decimal.Decimal{req.RentAmount, req.UtilitiesAmount, req.AmountPaid} {
		if amount != nil && amount.IsNegative() {
			return nil, billingdomain.ErrInvalidAmount
		}
	}

	var updated billingdomain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return billingdomain.ErrNotFound
		}

		if req.RentAmount != nil {
			existing.RentAmount = *req.RentAmount
		}
		if req.UtilitiesAmount != nil {
			existing.UtilitiesAmount = *req.UtilitiesAmount
		}
		if req.AmountPaid != nil {
			existing.AmountPaid = *req.AmountPaid
		}
		if req.PaymentDate != nil {
			existing.PaymentDate = *req.PaymentDate
		}
		existing.UpdatedAt = time.Now().UTC()

		if err := tx.Save(existing).Error; err != nil {
			return err
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) DeletePayment(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return billingdomain.ErrNotFound
		}
		return tx.Delete(&billingdomain.Payment{}, "id = ?", id).Error
	})
}

func (s *Service) GetPayment(ctx context.Context, id snowflake.ID) (*billingdomain.Payment, error) {
	payment, err := findPayment(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, billingdomain.ErrNotFound
	}
	return payment, nil
}

func (s *Service) ListPayments(ctx context.Context, req billingdomain.ListPaymentsRequest) ([]billingdomain.Payment, *pagination.PageInfo, error) {
	query := s.db.WithContext(ctx).Model(&billingdomain.Payment{})
	if req.UnitID != 0 {
		query = query.Where("unit_id = ?", req.UnitID)
	}
	if req.TenantID != 0 {
		query = query.Where("tenant_id = ?", req.TenantID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	limit := req.Pagination.Limit()
	offset := req.Pagination.Offset()

	var payments []billingdomain.Payment
	err := query.
		Order("billing_month DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, nil, err
	}

	info := &pagination.PageInfo{
		NextPageToken: pagination.NextToken(offset, limit, total),
		TotalSize:     total,
	}
	return payments, info, nil
}

func (s *Service) CreateExtraCharge(ctx context.Context, req billingdomain.CreateExtraChargeRequest) (*billingdomain.ExtraCharge, error) {
	if req.BillingMonth.IsZero() {
		return nil, billingdomain.ErrInvalidMonth
	}
	if req.Amount.IsNegative() {
		return nil, billingdomain.ErrInvalidAmount
	}
	category := req.Category
	if category == "" {
		category = billingdomain.ChargeCategoryOther
	}

	now := time.Now().UTC()
	created := billingdomain.ExtraCharge{
		ID:           s.genID.Generate(),
		UnitID:       req.UnitID,
		TenantID:     req.TenantID,
		BillingMonth: req.BillingMonth.Time(),
		Amount:       req.Amount,
		Category:     category,
		Description:  req.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.WithContext(ctx).Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) DeleteExtraCharge(ctx context.Context, id snowflake.ID) error {
	result := s.db.WithContext(ctx).Delete(&billingdomain.ExtraCharge{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return billingdomain.ErrNotFound
	}
	return nil
}

func (s *Service) ListExtraCharges(ctx context.Context, unitID snowflake.ID, m month.Month) ([]billingdomain.ExtraCharge, error) {
	query := s.db.WithContext(ctx).Order("billing_month DESC, created_at ASC")
	if unitID != 0 {
		query = query.Where("unit_id = ?", unitID)
	}
	if !m.IsZero() {
		query = query.Where("billing_month = ?", m.Time())
	}
	var charges []billingdomain.ExtraCharge
	if err := query.Find(&charges).Error; err != nil {
		return nil, err
	}
	return charges, nil
}

func findPayment(ctx context.Context, db *gorm.DB, id snowflake.ID) (*billingdomain.Payment, error) {
	var rows []billingdomain.Payment
	if err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
