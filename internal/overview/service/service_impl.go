package service

import (
	"context"

	"github.com/HollandRoad/mls/internal/clock"
	communicationdomain "github.com/HollandRoad/mls/internal/communication/domain"
	ledgerdomain "github.com/HollandRoad/mls/internal/ledger/domain"
	"github.com/HollandRoad/mls/internal/month"
	overviewdomain "github.com/HollandRoad/mls/internal/overview/domain"
	tenancydomain "github.com/HollandRoad/mls/internal/tenancy/domain"
	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
	unitdomain "github.com/HollandRoad/mls/internal/unit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service composes the ledger engine into cross-unit reports. It never
// recomputes charge arithmetic itself; every amount comes from the ledger
// service so the numbers match what unit detail screens show.
type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	ledgerSvc ledgerdomain.Service
	commSvc   communicationdomain.Service
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	LedgerSvc ledgerdomain.Service
	CommSvc   communicationdomain.Service
}

func NewService(p ServiceParam) overviewdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("overview.service"),
		clock:     p.Clock,
		ledgerSvc: p.LedgerSvc,
		commSvc:   p.CommSvc,
	}
}

func (s *Service) UnpaidTenants(ctx context.Context, reference month.Month) ([]overviewdomain.UnpaidTenant, error) {
	if reference.IsZero() {
		reference = month.FromTime(s.clock.Now())
	}

	occupied, err := s.loadOccupied(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]overviewdomain.UnpaidTenant, 0)
	for _, occ := range occupied {
		entries, err := s.ledgerSvc.ListLedger(ctx, ledgerdomain.ListLedgerRequest{
			UnitID:         occ.period.UnitID,
			TenantID:       occ.period.TenantID,
			From:           month.FromTime(occ.period.StartDate),
			To:             reference,
			ReferenceMonth: reference,
		})
		if err != nil {
			return nil, err
		}

		missed := 0
		for _, entry := range entries {
			if s.ledgerSvc.Reconcile(entry).Status == ledgerdomain.StatusUnpaid {
				missed++
			}
		}
		if missed == 0 {
			continue
		}

		arrears, err := s.ledgerSvc.Arrears(ctx, occ.period.UnitID, occ.period.TenantID, reference.Next())
		if err != nil {
			return nil, err
		}

		notice, err := s.commSvc.AlreadySent(ctx, occ.period.TenantID, reference, communicationdomain.TypeMissingPaymentNotice)
		if err != nil {
			return nil, err
		}

		row := overviewdomain.UnpaidTenant{
			TenantID:     occ.period.TenantID,
			TenantName:   occ.tenantName,
			TenantEmail:  occ.tenantEmail,
			UnitID:       occ.period.UnitID,
			UnitName:     occ.unitName,
			MissedMonths: missed,
			Arrears:      arrears,
		}
		if notice != nil {
			sentAt := notice.SentAt
			row.NoticeSentAt = &sentAt
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) PaymentStatus(ctx context.Context, m month.Month) ([]overviewdomain.UnitPaymentStatus, error) {
	if m.IsZero() {
		return nil, overviewdomain.ErrInvalidMonth
	}

	occupied, err := s.loadOccupied(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]overviewdomain.UnitPaymentStatus, 0, len(occupied))
	for _, occ := range occupied {
		entries, err := s.ledgerSvc.ListLedger(ctx, ledgerdomain.ListLedgerRequest{
			UnitID:         occ.period.UnitID,
			TenantID:       occ.period.TenantID,
			From:           m,
			To:             m,
			ReferenceMonth: month.FromTime(s.clock.Now()),
		})
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			continue
		}

		result := s.ledgerSvc.Reconcile(entries[0])
		rows = append(rows, overviewdomain.UnitPaymentStatus{
			UnitID:     occ.period.UnitID,
			UnitName:   occ.unitName,
			TenantID:   occ.period.TenantID,
			TenantName: occ.tenantName,
			Month:      m,
			Status:     result.Status,
			Expected:   result.ExpectedTotal,
			AmountDue:  result.AmountDue,
		})
	}
	return rows, nil
}

func (s *Service) VacantUnits(ctx context.Context) ([]overviewdomain.VacantUnit, error) {
	var units []unitdomain.Unit
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&units).Error; err != nil {
		return nil, err
	}

	rows := make([]overviewdomain.VacantUnit, 0)
	for _, unit := range units {
		var open int64
		if err := s.db.WithContext(ctx).Model(&tenancydomain.TenancyPeriod{}).
			Where("unit_id = ? AND end_date IS NULL", unit.ID).
			Count(&open).Error; err != nil {
			return nil, err
		}
		if open > 0 {
			continue
		}

		row := overviewdomain.VacantUnit{
			UnitID:          unit.ID,
			UnitName:        unit.Name,
			RentAmount:      unit.RentAmount,
			UtilitiesAmount: unit.UtilitiesAmount,
		}

		var closed []tenancydomain.TenancyPeriod
		if err := s.db.WithContext(ctx).
			Where("unit_id = ? AND end_date IS NOT NULL", unit.ID).
			Order("end_date DESC").
			Limit(1).
			Find(&closed).Error; err != nil {
			return nil, err
		}
		if len(closed) > 0 {
			row.LastEndDate = closed[0].EndDate
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type occupiedUnit struct {
	period      tenancydomain.TenancyPeriod
	unitName    string
	tenantName  string
	tenantEmail string
}

func (s *Service) loadOccupied(ctx context.Context) ([]occupiedUnit, error) {
	var periods []tenancydomain.TenancyPeriod
	if err := s.db.WithContext(ctx).
		Where("end_date IS NULL").
		Find(&periods).Error; err != nil {
		return nil, err
	}

	occupied := make([]occupiedUnit, 0, len(periods))
	for _, period := range periods {
		var units []unitdomain.Unit
		if err := s.db.WithContext(ctx).Where("id = ?", period.UnitID).Limit(1).Find(&units).Error; err != nil {
			return nil, err
		}
		var tenants []tenantdomain.Tenant
		if err := s.db.WithContext(ctx).Where("id = ?", period.TenantID).Limit(1).Find(&tenants).Error; err != nil {
			return nil, err
		}

		occ := occupiedUnit{period: period}
		if len(units) > 0 {
			occ.unitName = units[0].Name
		}
		if len(tenants) > 0 {
			occ.tenantName = tenants[0].Name
			occ.tenantEmail = tenants[0].Email
		}
		occupied = append(occupied, occ)
	}
	return occupied, nil
}
