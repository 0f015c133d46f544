package service

import (
	"context"
	"fmt"
	"time"

	adjustmentdomain "github.com/HollandRoad/mls/internal/adjustment/domain"
	"github.com/HollandRoad/mls/internal/events"
	"github.com/HollandRoad/mls/internal/month"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service manages yearly utility regularizations and the exclusive binding
// of their balances to billing months.
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

func NewService(p ServiceParam) adjustmentdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("adjustment.service"),
		genID:  p.GenID,
		outbox: p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, req adjustmentdomain.CreateRequest) (*adjustmentdomain.UtilityAdjustment, error) {
	if req.UnitID == 0 || req.TenantID == 0 {
		return nil, adjustmentdomain.ErrNotFound
	}
	if req.ReferenceYear < 1900 || req.ReferenceYear > 9999 {
		return nil, adjustmentdomain.ErrInvalidYear
	}
	for _, amount := range []decimal.Decimal{req.LiftAmount, req.HeatingAmount, req.OtherAmount, req.YearlyUtilitiesPaid} {
		if amount.IsNegative() {
			return nil, adjustmentdomain.ErrInvalidAmount
		}
	}

	var created adjustmentdomain.UtilityAdjustment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&adjustmentdomain.UtilityAdjustment{}).
			Where("unit_id = ? AND tenant_id = ? AND reference_year = ?", req.UnitID, req.TenantID, req.ReferenceYear).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return adjustmentdomain.ErrDuplicateYear
		}

		now := time.Now().UTC()
		created = adjustmentdomain.UtilityAdjustment{
			ID:                  s.genID.Generate(),
			UnitID:              req.UnitID,
			TenantID:            req.TenantID,
			ReferenceYear:       req.ReferenceYear,
			LiftAmount:          req.LiftAmount,
			HeatingAmount:       req.HeatingAmount,
			OtherAmount:         req.OtherAmount,
			YearlyUtilitiesPaid: req.YearlyUtilitiesPaid,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req adjustmentdomain.UpdateRequest) (*adjustmentdomain.UtilityAdjustment, error) {
	for _, amount := range []*decimal.Decimal{req.LiftAmount, req.HeatingAmount, req.OtherAmount, req.YearlyUtilitiesPaid} {
		if amount != nil && amount.IsNegative() {
			return nil, adjustmentdomain.ErrInvalidAmount
		}
	}

	var updated adjustmentdomain.UtilityAdjustment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return adjustmentdomain.ErrNotFound
		}

		if req.LiftAmount != nil {
			existing.LiftAmount = *req.LiftAmount
		}
		if req.HeatingAmount != nil {
			existing.HeatingAmount = *req.HeatingAmount
		}
		if req.OtherAmount != nil {
			existing.OtherAmount = *req.OtherAmount
		}
		if req.YearlyUtilitiesPaid != nil {
			existing.YearlyUtilitiesPaid = *req.YearlyUtilitiesPaid
		}
		if req.IsSettled != nil {
			existing.IsSettled = *req.IsSettled
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

// Bind sets the adjustment's reference month. Binding is exclusive per
// unit/tenant: any other adjustment already bound to the target month is
// unbound in the same transaction. A nil month clears the binding.
func (s *Service) Bind(ctx context.Context, id snowflake.ID, m *month.Month) (*adjustmentdomain.UtilityAdjustment, error) {
	var bound adjustmentdomain.UtilityAdjustment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return adjustmentdomain.ErrNotFound
		}

		var reference *time.Time
		if m != nil {
			monthStart := m.Time()
			reference = &monthStart

			if err := tx.Model(&adjustmentdomain.UtilityAdjustment{}).
				Where("unit_id = ? AND tenant_id = ? AND reference_month = ? AND id <> ?",
					existing.UnitID, existing.TenantID, monthStart, existing.ID).
				Updates(map[string]any{
					"reference_month": nil,
					"updated_at":      time.Now().UTC(),
				}).Error; err != nil {
				return err
			}
		}

		existing.ReferenceMonth = reference
		existing.UpdatedAt = time.Now().UTC()
		if err := tx.Save(existing).Error; err != nil {
			return err
		}
		bound = *existing

		eventType := events.EventAdjustmentUnbound
		payload := events.AdjustmentPayload{
			AdjustmentID:  bound.ID.String(),
			UnitID:        bound.UnitID.String(),
			TenantID:      bound.TenantID.String(),
			ReferenceYear: bound.ReferenceYear,
		}
		if m != nil {
			eventType = events.EventAdjustmentBound
			payload.ReferenceMonth = m.String()
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			TenantID:  bound.TenantID,
			Type:      eventType,
			Payload:   payload.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%s:%d", eventType, bound.ID, bound.UpdatedAt.UnixNano()),
		})
	})
	if err != nil {
		return nil, err
	}
	return &bound, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return adjustmentdomain.ErrNotFound
		}
		return tx.Delete(&adjustmentdomain.UtilityAdjustment{}, "id = ?", id).Error
	})
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*adjustmentdomain.UtilityAdjustment, error) {
	adj, err := findByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, adjustmentdomain.ErrNotFound
	}
	return adj, nil
}

func (s *Service) List(ctx context.Context, unitID, tenantID snowflake.ID) ([]adjustmentdomain.UtilityAdjustment, error) {
	query := s.db.WithContext(ctx).Order("reference_year DESC")
	if unitID != 0 {
		query = query.Where("unit_id = ?", unitID)
	}
	if tenantID != 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	var adjustments []adjustmentdomain.UtilityAdjustment
	if err := query.Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

func findByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*adjustmentdomain.UtilityAdjustment, error) {
	var rows []adjustmentdomain.UtilityAdjustment
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
