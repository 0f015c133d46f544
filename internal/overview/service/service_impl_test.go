package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	adjustmentdomain "github.com/HollandRoad/mls/internal/adjustment/domain"
	billingdomain "github.com/HollandRoad/mls/internal/billing/domain"
	"github.com/HollandRoad/mls/internal/clock"
	communicationdomain "github.com/HollandRoad/mls/internal/communication/domain"
	communicationservice "github.com/HollandRoad/mls/internal/communication/service"
	ledgerdomain "github.com/HollandRoad/mls/internal/ledger/domain"
	ledgerservice "github.com/HollandRoad/mls/internal/ledger/service"
	"github.com/HollandRoad/mls/internal/month"
	overviewdomain "github.com/HollandRoad/mls/internal/overview/domain"
	tenancydomain "github.com/HollandRoad/mls/internal/tenancy/domain"
	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
	unitdomain "github.com/HollandRoad/mls/internal/unit/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestUnpaidTenantsListsMissedMonths(t *testing.T) {
	db, svc := setupOverviewTest(t, "2024-04")
	unitID := seedOverviewUnit(t, db, 1, "Unit A")
	tenantID := seedOverviewTenant(t, db, 11, "Alice Tenant")
	seedOverviewPeriod(t, db, 21, unitID, tenantID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	// January paid in full, February and March missed.
	seedOverviewPayment(t, db, 31, unitID, tenantID, "2024-01", "1100")

	rows, err := svc.UnpaidTenants(context.Background(), month.Month{})
	if err != nil {
		t.Fatalf("unpaid tenants: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one unpaid tenant, got %d", len(rows))
	}

	row := rows[0]
	if row.TenantID != tenantID || row.UnitID != unitID {
		t.Fatalf("unexpected row %+v", row)
	}
	// February, March and the reference month April itself.
	if row.MissedMonths != 3 {
		t.Fatalf("expected 3 missed months, got %d", row.MissedMonths)
	}
	// Arrears counts every unpaid month through April: 3 x 1100.
	if !row.Arrears.Equal(decimal.RequireFromString("3300")) {
		t.Fatalf("expected arrears 3300, got %s", row.Arrears)
	}
	if row.NoticeSentAt != nil {
		t.Fatal("no notice was recorded yet")
	}
}

func TestUnpaidTenantsSkipsSettledTenancies(t *testing.T) {
	db, svc := setupOverviewTest(t, "2024-02")
	unitID := seedOverviewUnit(t, db, 1, "Unit A")
	tenantID := seedOverviewTenant(t, db, 11, "Alice Tenant")
	seedOverviewPeriod(t, db, 21, unitID, tenantID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	seedOverviewPayment(t, db, 31, unitID, tenantID, "2024-01", "1100")
	seedOverviewPayment(t, db, 32, unitID, tenantID, "2024-02", "1100")

	rows, err := svc.UnpaidTenants(context.Background(), month.Month{})
	if err != nil {
		t.Fatalf("unpaid tenants: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no unpaid tenants, got %d", len(rows))
	}
}

func TestUnpaidTenantsCarriesNoticeTimestamp(t *testing.T) {
	db, svc := setupOverviewTest(t, "2024-02")
	unitID := seedOverviewUnit(t, db, 1, "Unit A")
	tenantID := seedOverviewTenant(t, db, 11, "Alice Tenant")
	seedOverviewPeriod(t, db, 21, unitID, tenantID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	reference := month.Month{}
	target, err := month.Parse("2024-02")
	if err != nil {
		t.Fatalf("parse month: %v", err)
	}
	refDate := target.Time()
	notice := communicationdomain.Communication{
		ID:             snowflake.ID(41),
		TenantID:       tenantID,
		Type:           communicationdomain.TypeMissingPaymentNotice,
		SentAt:         time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		ReferenceMonth: &refDate,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.Create(&notice).Error; err != nil {
		t.Fatalf("insert notice: %v", err)
	}

	rows, err := svc.UnpaidTenants(context.Background(), reference)
	if err != nil {
		t.Fatalf("unpaid tenants: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one unpaid tenant, got %d", len(rows))
	}
	if rows[0].NoticeSentAt == nil {
		t.Fatal("expected notice timestamp")
	}
}

func TestPaymentStatusPerUnit(t *testing.T) {
	db, svc := setupOverviewTest(t, "2024-03")
	unitA := seedOverviewUnit(t, db, 1, "Unit A")
	unitB := seedOverviewUnit(t, db, 2, "Unit B")
	alice := seedOverviewTenant(t, db, 11, "Alice Tenant")
	bob := seedOverviewTenant(t, db, 12, "Bob Tenant")
	seedOverviewPeriod(t, db, 21, unitA, alice, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	seedOverviewPeriod(t, db, 22, unitB, bob, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	seedOverviewPayment(t, db, 31, unitA, alice, "2024-02", "1100")

	target, err := month.Parse("2024-02")
	if err != nil {
		t.Fatalf("parse month: %v", err)
	}
	rows, err := svc.PaymentStatus(context.Background(), target)
	if err != nil {
		t.Fatalf("payment status: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}

	byUnit := map[snowflake.ID]overviewdomain.UnitPaymentStatus{}
	for _, row := range rows {
		byUnit[row.UnitID] = row
	}
	if byUnit[unitA].Status != ledgerdomain.StatusSettled {
		t.Fatalf("unit A should be settled, got %s", byUnit[unitA].Status)
	}
	if byUnit[unitB].Status != ledgerdomain.StatusUnpaid {
		t.Fatalf("unit B should be unpaid, got %s", byUnit[unitB].Status)
	}
	if !byUnit[unitB].AmountDue.Equal(decimal.RequireFromString("1100")) {
		t.Fatalf("unit B should owe 1100, got %s", byUnit[unitB].AmountDue)
	}
}

func TestPaymentStatusRequiresMonth(t *testing.T) {
	_, svc := setupOverviewTest(t, "2024-03")

	if _, err := svc.PaymentStatus(context.Background(), month.Month{}); err != overviewdomain.ErrInvalidMonth {
		t.Fatalf("expected invalid month, got %v", err)
	}
}

func TestVacantUnitsReportsLastEndDate(t *testing.T) {
	db, svc := setupOverviewTest(t, "2024-03")
	occupied := seedOverviewUnit(t, db, 1, "Unit A")
	vacant := seedOverviewUnit(t, db, 2, "Unit B")
	never := seedOverviewUnit(t, db, 3, "Unit C")
	alice := seedOverviewTenant(t, db, 11, "Alice Tenant")
	bob := seedOverviewTenant(t, db, 12, "Bob Tenant")

	seedOverviewPeriod(t, db, 21, occupied, alice, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	end := time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC)
	period := tenancydomain.TenancyPeriod{
		ID:        snowflake.ID(22),
		UnitID:    vacant,
		TenantID:  bob,
		StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   &end,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := db.Create(&period).Error; err != nil {
		t.Fatalf("insert closed period: %v", err)
	}

	rows, err := svc.VacantUnits(context.Background())
	if err != nil {
		t.Fatalf("vacant units: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two vacant units, got %d", len(rows))
	}

	byUnit := map[snowflake.ID]overviewdomain.VacantUnit{}
	for _, row := range rows {
		byUnit[row.UnitID] = row
	}
	if _, ok := byUnit[occupied]; ok {
		t.Fatal("occupied unit should not appear")
	}
	if byUnit[vacant].LastEndDate == nil || !byUnit[vacant].LastEndDate.Equal(end) {
		t.Fatalf("expected last end date %s, got %v", end, byUnit[vacant].LastEndDate)
	}
	if byUnit[never].LastEndDate != nil {
		t.Fatal("never-let unit should have no end date")
	}
}

func setupOverviewTest(t *testing.T, reference string) (*gorm.DB, *Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&unitdomain.Unit{},
		&tenantdomain.Tenant{},
		&tenancydomain.TenancyPeriod{},
		&billingdomain.Payment{},
		&billingdomain.ExtraCharge{},
		&adjustmentdomain.UtilityAdjustment{},
		&communicationdomain.Communication{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	m, err := month.Parse(reference)
	if err != nil {
		t.Fatalf("parse reference: %v", err)
	}
	fixed := clock.Fixed(m.Time())

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	ledgerSvc := ledgerservice.NewService(ledgerservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fixed,
	})
	commSvc := communicationservice.NewService(communicationservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})

	svc := &Service{
		db:        db,
		log:       zap.NewNop(),
		clock:     fixed,
		ledgerSvc: ledgerSvc,
		commSvc:   commSvc,
	}
	return db, svc
}

func seedOverviewUnit(t *testing.T, db *gorm.DB, id int64, name string) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	unit := unitdomain.Unit{
		ID:              snowflake.ID(id),
		Name:            name,
		Address:         "1 Test Street",
		NumberOfRooms:   2,
		RentAmount:      decimal.RequireFromString("1000"),
		UtilitiesAmount: decimal.RequireFromString("100"),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("insert unit: %v", err)
	}
	return unit.ID
}

func seedOverviewTenant(t *testing.T, db *gorm.DB, id int64, name string) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	tenant := tenantdomain.Tenant{
		ID:        snowflake.ID(id),
		Name:      name,
		Email:     "tenant@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("insert tenant: %v", err)
	}
	return tenant.ID
}

func seedOverviewPeriod(t *testing.T, db *gorm.DB, id int64, unitID, tenantID snowflake.ID, start time.Time) {
	t.Helper()
	now := time.Now().UTC()
	period := tenancydomain.TenancyPeriod{
		ID:        snowflake.ID(id),
		UnitID:    unitID,
		TenantID:  tenantID,
		StartDate: start,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&period).Error; err != nil {
		t.Fatalf("insert period: %v", err)
	}
}

func seedOverviewPayment(t *testing.T, db *gorm.DB, id int64, unitID, tenantID snowflake.ID, billingMonth, paid string) {
	t.Helper()
	m, err := month.Parse(billingMonth)
	if err != nil {
		t.Fatalf("parse month %s: %v", billingMonth, err)
	}
	now := time.Now().UTC()
	payment := billingdomain.Payment{
		ID:              snowflake.ID(id),
		UnitID:          unitID,
		TenantID:        tenantID,
		BillingMonth:    m.Time(),
		RentAmount:      decimal.RequireFromString("1000"),
		UtilitiesAmount: decimal.RequireFromString("100"),
		AmountPaid:      decimal.RequireFromString(paid),
		PaymentDate:     m.Time().AddDate(0, 0, 3),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("insert payment: %v", err)
	}
}
