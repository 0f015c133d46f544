package service

import (
	"context"
	"time"

	adjustmentdomain "github.com/HollandRoad/mls/internal/adjustment/domain"
	billingdomain "github.com/HollandRoad/mls/internal/billing/domain"
	"github.com/HollandRoad/mls/internal/clock"
	communicationdomain "github.com/HollandRoad/mls/internal/communication/domain"
	ledgerdomain "github.com/HollandRoad/mls/internal/ledger/domain"
	"github.com/HollandRoad/mls/internal/month"
	tenancydomain "github.com/HollandRoad/mls/internal/tenancy/domain"
	unitdomain "github.com/HollandRoad/mls/internal/unit/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service derives monthly ledger entries, expected charges, reconciliation
// statuses and carried-forward arrears. All methods read the current store
// state on every call; nothing is cached between invocations.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

func NewService(p ServiceParam) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		clock: p.Clock,
	}
}

func (s *Service) ListLedger(ctx context.Context, req ledgerdomain.ListLedgerRequest) ([]ledgerdomain.LedgerEntry, error) {
	if req.UnitID == 0 {
		return nil, ledgerdomain.ErrInvalidUnit
	}
	if req.From.IsZero() || req.To.IsZero() || req.From.After(req.To) {
		return nil, ledgerdomain.ErrInvalidRange
	}

	reference := req.ReferenceMonth
	if reference.IsZero() {
		reference = month.FromTime(s.clock.Now())
	}

	unit, err := s.loadUnit(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		// Unknown units yield an empty ledger rather than an error.
		return []ledgerdomain.LedgerEntry{}, nil
	}

	periods, err := s.loadPeriods(ctx, req.UnitID, req.TenantID)
	if err != nil {
		return nil, err
	}
	payments, err := s.loadPayments(ctx, req.UnitID, req.TenantID, req.From, req.To)
	if err != nil {
		return nil, err
	}
	charges, err := s.loadExtraCharges(ctx, req.UnitID, req.TenantID, req.From, req.To)
	if err != nil {
		return nil, err
	}
	adjustments, err := s.loadBoundAdjustments(ctx, req.UnitID, req.TenantID, req.From, req.To)
	if err != nil {
		return nil, err
	}
	notices, err := s.loadNotices(ctx, req.TenantID, req.From, req.To)
	if err != nil {
		return nil, err
	}

	months := month.Range(req.From, req.To)
	entries := make([]ledgerdomain.LedgerEntry, 0, len(months))
	for _, m := range months {
		entry := ledgerdomain.LedgerEntry{
			Month:         m,
			BaseRent:      unit.RentAmount,
			BaseUtilities: unit.UtilitiesAmount,
		}

		key := m.String()
		if payment, ok := payments[key]; ok {
			entry.Payment = payment
		}
		entry.ExtraCharges = charges[key]
		if adj, ok := adjustments[key]; ok {
			entry.Adjustment = adj
		}
		if sentAt, ok := notices[key]; ok {
			entry.NoticeSentAt = &sentAt
		}

		entry.Tenancy = periodCovering(periods, m)
		switch {
		case m.After(reference):
			entry.Occupancy = ledgerdomain.OccupancyUpcoming
		case entry.Tenancy == nil:
			entry.Occupancy = ledgerdomain.OccupancyVacant
		default:
			entry.Occupancy = ledgerdomain.OccupancyBillable
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

// ExpectedTotal computes the amount due for one entry: the base charge (the
// payment's recorded rates when a payment exists, the unit's current rates
// otherwise), plus every extra charge, plus the bound adjustment's net
// balance. Non-billable entries have no expected amount.
func (s *Service) ExpectedTotal(entry ledgerdomain.LedgerEntry) decimal.Decimal {
	if !entry.Billable() {
		return decimal.Zero
	}

	base := entry.BaseRent.Add(entry.BaseUtilities)
	if entry.Payment != nil {
		base = entry.Payment.ChargedTotal()
	}

	total := base
	for _, charge := range entry.ExtraCharges {
		total = total.Add(charge.Amount)
	}
	if entry.Adjustment != nil {
		total = total.Add(entry.Adjustment.NetBalance())
	}
	return total
}

// Reconcile classifies one entry against its expected total. Pure function.
func (s *Service) Reconcile(entry ledgerdomain.LedgerEntry) ledgerdomain.ReconciliationResult {
	if !entry.Billable() {
		return ledgerdomain.ReconciliationResult{Status: ledgerdomain.StatusNotApplicable}
	}

	expected := s.ExpectedTotal(entry)
	if entry.Payment == nil {
		return ledgerdomain.ReconciliationResult{
			Status:        ledgerdomain.StatusUnpaid,
			ExpectedTotal: expected,
			AmountDue:     expected,
		}
	}

	difference := entry.Payment.AmountPaid.Sub(expected)
	result := ledgerdomain.ReconciliationResult{
		ExpectedTotal: expected,
		Difference:    difference,
	}
	switch difference.Sign() {
	case 0:
		result.Status = ledgerdomain.StatusSettled
	case -1:
		result.Status = ledgerdomain.StatusShortfall
		result.AmountDue = difference.Neg()
	default:
		result.Status = ledgerdomain.StatusOverpaid
	}
	return result
}

// Arrears sums, over every tenancy month strictly before the target, the full
// expected total of unpaid months plus the shortfall of underpaid ones.
// Overpayments are not netted against the balance; that mirrors the dunning
// behavior the product asked for.
func (s *Service) Arrears(ctx context.Context, unitID, tenantID snowflake.ID, before month.Month) (decimal.Decimal, error) {
	if unitID == 0 {
		return decimal.Zero, ledgerdomain.ErrInvalidUnit
	}
	if before.IsZero() {
		return decimal.Zero, ledgerdomain.ErrInvalidRange
	}

	periods, err := s.loadPeriods(ctx, unitID, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(periods) == 0 {
		return decimal.Zero, nil
	}

	from := month.FromTime(periods[0].StartDate)
	for _, p := range periods {
		if m := month.FromTime(p.StartDate); m.Before(from) {
			from = m
		}
	}
	to := before.Prev()
	if to.Before(from) {
		return decimal.Zero, nil
	}

	entries, err := s.ListLedger(ctx, ledgerdomain.ListLedgerRequest{
		UnitID:   unitID,
		TenantID: tenantID,
		From:     from,
		To:       to,
	})
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, entry := range entries {
		result := s.Reconcile(entry)
		switch result.Status {
		case ledgerdomain.StatusUnpaid:
			total = total.Add(result.ExpectedTotal)
		case ledgerdomain.StatusShortfall:
			total = total.Add(result.AmountDue)
		}
	}
	return total, nil
}

func periodCovering(periods []tenancydomain.TenancyPeriod, m month.Month) *tenancydomain.TenancyPeriod {
	monthStart := m.Time()
	for i := range periods {
		if periods[i].Covers(monthStart) {
			return &periods[i]
		}
	}
	return nil
}

func (s *Service) loadUnit(ctx context.Context, unitID snowflake.ID) (*unitdomain.Unit, error) {
	var units []unitdomain.Unit
	if err := s.db.WithContext(ctx).
		Where("id = ?", unitID).
		Limit(1).
		Find(&units).Error; err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, nil
	}
	return &units[0], nil
}

func (s *Service) loadPeriods(ctx context.Context, unitID, tenantID snowflake.ID) ([]tenancydomain.TenancyPeriod, error) {
	query := s.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("start_date ASC")
	if tenantID != 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	var periods []tenancydomain.TenancyPeriod
	if err := query.Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (s *Service) loadPayments(ctx context.Context, unitID, tenantID snowflake.ID, from, to month.Month) (map[string]*billingdomain.Payment, error) {
	query := s.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Where("billing_month >= ? AND billing_month <= ?", from.Time(), to.Time())
	if tenantID != 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	var rows []billingdomain.Payment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make(map[string]*billingdomain.Payment, len(rows))
	for i := range rows {
		payments[month.FromTime(rows[i].BillingMonth).String()] = &rows[i]
	}
	return payments, nil
}

func (s *Service) loadExtraCharges(ctx context.Context, unitID, tenantID snowflake.ID, from, to month.Month) (map[string][]billingdomain.ExtraCharge, error) {
	query := s.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Where("billing_month >= ? AND billing_month <= ?", from.Time(), to.Time()).
		Order("created_at ASC")
	if tenantID != 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	var rows []billingdomain.ExtraCharge
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	charges := make(map[string][]billingdomain.ExtraCharge)
	for _, row := range rows {
		key := month.FromTime(row.BillingMonth).String()
		charges[key] = append(charges[key], row)
	}
	return charges, nil
}

func (s *Service) loadBoundAdjustments(ctx context.Context, unitID, tenantID snowflake.ID, from, to month.Month) (map[string]*adjustmentdomain.UtilityAdjustment, error) {
	query := s.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Where("reference_month IS NOT NULL").
		Where("reference_month >= ? AND reference_month <= ?", from.Time(), to.Time())
	if tenantID != 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	var rows []adjustmentdomain.UtilityAdjustment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	adjustments := make(map[string]*adjustmentdomain.UtilityAdjustment, len(rows))
	for i := range rows {
		if rows[i].ReferenceMonth == nil {
			continue
		}
		adjustments[month.FromTime(*rows[i].ReferenceMonth).String()] = &rows[i]
	}
	return adjustments, nil
}

func (s *Service) loadNotices(ctx context.Context, tenantID snowflake.ID, from, to month.Month) (map[string]time.Time, error) {
	if tenantID == 0 {
		return map[string]time.Time{}, nil
	}
	var rows []communicationdomain.Communication
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("type = ?", communicationdomain.TypeMissingPaymentNotice).
		Where("reference_month >= ? AND reference_month <= ?", from.Time(), to.Time()).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	notices := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		if row.ReferenceMonth == nil {
			continue
		}
		notices[month.FromTime(*row.ReferenceMonth).String()] = row.SentAt
	}
	return notices, nil
}
