package service

import (
	"context"
	"fmt"
	"time"

	"github.com/HollandRoad/mls/internal/events"
	tenancydomain "github.com/HollandRoad/mls/internal/tenancy/domain"
	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
	unitdomain "github.com/HollandRoad/mls/internal/unit/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service enforces the unit occupancy state machine. Both mutations run in
// one transaction so the open-period invariants cannot be observed half
// applied; concurrent writers on the same unit serialize on the store.
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

func NewService(p ServiceParam) tenancydomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("tenancy.service"),
		genID:  p.GenID,
		outbox: p.Outbox,
	}
}

func (s *Service) Assign(ctx context.Context, req tenancydomain.AssignRequest) (*tenancydomain.TenancyPeriod, error) {
	if req.StartDate.IsZero() {
		return nil, tenancydomain.ErrInvalidDate
	}

	var created tenancydomain.TenancyPeriod
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkUnitExists(ctx, tx, req.UnitID); err != nil {
			return err
		}
		if err := s.checkTenantExists(ctx, tx, req.TenantID); err != nil {
			return err
		}

		open, err := openPeriodForUnit(ctx, tx, req.UnitID)
		if err != nil {
			return err
		}
		if open != nil {
			return tenancydomain.ErrUnitOccupied
		}

		elsewhere, err := openPeriodForTenant(ctx, tx, req.TenantID)
		if err != nil {
			return err
		}
		if elsewhere != nil {
			return tenancydomain.ErrTenantAlreadyActive
		}

		// Periods for the same unit must not overlap, closed ones included.
		startDate := truncateToDay(req.StartDate)
		last, err := latestClosedPeriodForUnit(ctx, tx, req.UnitID)
		if err != nil {
			return err
		}
		if last != nil && !startDate.After(*last.EndDate) {
			return tenancydomain.ErrPeriodOverlap
		}

		now := time.Now().UTC()
		created = tenancydomain.TenancyPeriod{
			ID:        s.genID.Generate(),
			UnitID:    req.UnitID,
			TenantID:  req.TenantID,
			StartDate: startDate,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			TenantID: req.TenantID,
			Type:     events.EventTenancyAssigned,
			Payload: events.TenancyPayload{
				TenancyPeriodID: created.ID.String(),
				UnitID:          req.UnitID.String(),
				TenantID:        req.TenantID.String(),
				EffectiveDate:   created.StartDate.Format("2006-01-02"),
			}.ToMap(),
			DedupeKey: fmt.Sprintf("tenancy.assigned:%s", created.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tenancy assigned",
		zap.String("unit_id", req.UnitID.String()),
		zap.String("tenant_id", req.TenantID.String()),
	)
	return &created, nil
}

func (s *Service) EndTenancy(ctx context.Context, req tenancydomain.EndTenancyRequest) (*tenancydomain.TenancyPeriod, error) {
	if req.EndDate.IsZero() {
		return nil, tenancydomain.ErrInvalidDate
	}

	var closed tenancydomain.TenancyPeriod
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		open, err := openPeriodForUnit(ctx, tx, req.UnitID)
		if err != nil {
			return err
		}
		if open == nil || open.TenantID != req.TenantID {
			return tenancydomain.ErrNoActiveTenancy
		}

		endDate := truncateToDay(req.EndDate)
		if endDate.Before(open.StartDate) {
			return tenancydomain.ErrDateBeforeStart
		}

		open.EndDate = &endDate
		open.UpdatedAt = time.Now().UTC()
		if err := tx.Model(&tenancydomain.TenancyPeriod{}).
			Where("id = ?", open.ID).
			Updates(map[string]any{
				"end_date":   open.EndDate,
				"updated_at": open.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		closed = *open

		return s.outbox.PublishTx(ctx, tx, events.Event{
			TenantID: req.TenantID,
			Type:     events.EventTenancyEnded,
			Payload: events.TenancyPayload{
				TenancyPeriodID: closed.ID.String(),
				UnitID:          closed.UnitID.String(),
				TenantID:        closed.TenantID.String(),
				EffectiveDate:   endDate.Format("2006-01-02"),
			}.ToMap(),
			DedupeKey: fmt.Sprintf("tenancy.ended:%s", closed.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tenancy ended",
		zap.String("unit_id", req.UnitID.String()),
		zap.String("tenant_id", req.TenantID.String()),
	)
	return &closed, nil
}

func (s *Service) ActivePeriod(ctx context.Context, unitID snowflake.ID) (*tenancydomain.TenancyPeriod, error) {
	return openPeriodForUnit(ctx, s.db, unitID)
}

func (s *Service) ListByUnit(ctx context.Context, unitID snowflake.ID) ([]tenancydomain.TenancyPeriod, error) {
	var periods []tenancydomain.TenancyPeriod
	if err := s.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("start_date ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (s *Service) ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]tenancydomain.TenancyPeriod, error) {
	var periods []tenancydomain.TenancyPeriod
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("start_date ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (s *Service) checkUnitExists(ctx context.Context, tx *gorm.DB, unitID snowflake.ID) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&unitdomain.Unit{}).
		Where("id = ?", unitID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return tenancydomain.ErrUnitNotFound
	}
	return nil
}

func (s *Service) checkTenantExists(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&tenantdomain.Tenant{}).
		Where("id = ?", tenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return tenancydomain.ErrTenantNotFound
	}
	return nil
}

func openPeriodForUnit(ctx context.Context, db *gorm.DB, unitID snowflake.ID) (*tenancydomain.TenancyPeriod, error) {
	var periods []tenancydomain.TenancyPeriod
	if err := db.WithContext(ctx).
		Where("unit_id = ? AND end_date IS NULL", unitID).
		Limit(1).
		Find(&periods).Error; err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, nil
	}
	return &periods[0], nil
}

func latestClosedPeriodForUnit(ctx context.Context, db *gorm.DB, unitID snowflake.ID) (*tenancydomain.TenancyPeriod, error) {
	var periods []tenancydomain.TenancyPeriod
	if err := db.WithContext(ctx).
		Where("unit_id = ? AND end_date IS NOT NULL", unitID).
		Order("end_date DESC").
		Limit(1).
		Find(&periods).Error; err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, nil
	}
	return &periods[0], nil
}

func openPeriodForTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*tenancydomain.TenancyPeriod, error) {
	var periods []tenancydomain.TenancyPeriod
	if err := db.WithContext(ctx).
		Where("tenant_id = ? AND end_date IS NULL", tenantID).
		Limit(1).
		Find(&periods).Error; err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, nil
	}
	return &periods[0], nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
