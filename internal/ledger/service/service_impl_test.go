package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
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
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testUnitID   = snowflake.ID(100)
	testTenantID = snowflake.ID(200)
)

func TestListLedgerUnknownUnitReturnsEmpty(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(db, mustMonth(t, "2024-06"))

	entries, err := svc.ListLedger(context.Background(), ledgerdomain.ListLedgerRequest{
		UnitID: snowflake.ID(999),
		From:   mustMonth(t, "2024-01"),
		To:     mustMonth(t, "2024-03"),
	})
	if err != nil {
		t.Fatalf("list ledger: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(entries))
	}
}

func TestListLedgerRejectsInvalidInput(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newLedgerService(db, mustMonth(t, "2024-06"))

	_, err := svc.ListLedger(context.Background(), ledgerdomain.ListLedgerRequest{
		From: mustMonth(t, "2024-01"),
		To:   mustMonth(t, "2024-03"),
	})
	if !errors.Is(err, ledgerdomain.ErrInvalidUnit) {
		t.Fatalf("expected invalid unit, got %v", err)
	}

	_, err = svc.ListLedger(context.Background(), ledgerdomain.ListLedgerRequest{
		UnitID: testUnitID,
		From:   mustMonth(t, "2024-03"),
		To:     mustMonth(t, "2024-01"),
	})
	if !errors.Is(err, ledgerdomain.ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
}

func TestListLedgerClassifiesOccupancy(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1000", "100")
	insertPeriod(t, db, date(2024, 1, 1), nil)

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	entries, err := svc.ListLedger(context.Background(), ledgerdomain.ListLedgerRequest{
		UnitID: testUnitID,
		From:   mustMonth(t, "2023-12"),
		To:     mustMonth(t, "2024-07"),
	})
	if err != nil {
		t.Fatalf("list ledger: %v", err)
	}
	if len(entries) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(entries))
	}

	if entries[0].Occupancy != ledgerdomain.OccupancyVacant {
		t.Fatalf("2023-12 should be vacant, got %s", entries[0].Occupancy)
	}
	for _, entry := range entries[1:7] {
		if entry.Occupancy != ledgerdomain.OccupancyBillable {
			t.Fatalf("%s should be billable, got %s", entry.Month, entry.Occupancy)
		}
	}
	if entries[7].Occupancy != ledgerdomain.OccupancyUpcoming {
		t.Fatalf("2024-07 should be upcoming, got %s", entries[7].Occupancy)
	}
}

func TestListLedgerExcludesEndedTenancyMonths(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1000", "100")
	end := date(2024, 3, 15)
	insertPeriod(t, db, date(2024, 1, 1), &end)

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	entries, err := svc.ListLedger(context.Background(), ledgerdomain.ListLedgerRequest{
		UnitID: testUnitID,
		From:   mustMonth(t, "2024-03"),
		To:     mustMonth(t, "2024-04"),
	})
	if err != nil {
		t.Fatalf("list ledger: %v", err)
	}

	// March still overlaps the tenancy through the 15th, April does not.
	if entries[0].Occupancy != ledgerdomain.OccupancyBillable {
		t.Fatalf("2024-03 should be billable, got %s", entries[0].Occupancy)
	}
	if entries[1].Occupancy != ledgerdomain.OccupancyVacant {
		t.Fatalf("2024-04 should be vacant, got %s", entries[1].Occupancy)
	}
	if result := svc.Reconcile(entries[1]); result.Status != ledgerdomain.StatusNotApplicable {
		t.Fatalf("vacant month should not reconcile, got %s", result.Status)
	}
}

func TestReconcileSettled(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1000", "100")
	insertPeriod(t, db, date(2024, 1, 1), nil)
	insertPayment(t, db, 1, "2024-01", "1000", "100", "1100")

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	entry := ledgerEntryFor(t, svc, "2024-01")

	result := svc.Reconcile(entry)
	if result.Status != ledgerdomain.StatusSettled {
		t.Fatalf("expected settled, got %s", result.Status)
	}
	if !result.ExpectedTotal.Equal(dec("1100")) {
		t.Fatalf("expected total 1100, got %s", result.ExpectedTotal)
	}
	if !result.Difference.IsZero() {
		t.Fatalf("expected zero difference, got %s", result.Difference)
	}
}

func TestReconcileUnpaidUsesCurrentRates(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1000", "100")
	insertPeriod(t, db, date(2024, 1, 1), nil)

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	entry := ledgerEntryFor(t, svc, "2024-03")

	result := svc.Reconcile(entry)
	if result.Status != ledgerdomain.StatusUnpaid {
		t.Fatalf("expected unpaid, got %s", result.Status)
	}
	if !result.ExpectedTotal.Equal(dec("1100")) {
		t.Fatalf("expected total 1100, got %s", result.ExpectedTotal)
	}
	if !result.AmountDue.Equal(dec("1100")) {
		t.Fatalf("expected amount due 1100, got %s", result.AmountDue)
	}
}

func TestReconcileOverpaid(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1000", "100")
	insertPeriod(t, db, date(2024, 1, 1), nil)
	insertPayment(t, db, 2, "2024-02", "1000", "100", "1150")

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	result := svc.Reconcile(ledgerEntryFor(t, svc, "2024-02"))

	if result.Status != ledgerdomain.StatusOverpaid {
		t.Fatalf("expected overpaid, got %s", result.Status)
	}
	if !result.Difference.Equal(dec("50")) {
		t.Fatalf("expected +50 difference, got %s", result.Difference)
	}
	if !result.AmountDue.IsZero() {
		t.Fatalf("overpaid months owe nothing, got %s", result.AmountDue)
	}
}

func TestReconcileShortfallWithExtraCharge(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1000", "100")
	insertPeriod(t, db, date(2024, 1, 1), nil)
	insertPayment(t, db, 3, "2024-04", "1000", "100", "1100")
	insertExtraCharge(t, db, "2024-04", "40")

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	result := svc.Reconcile(ledgerEntryFor(t, svc, "2024-04"))

	if result.Status != ledgerdomain.StatusShortfall {
		t.Fatalf("expected shortfall, got %s", result.Status)
	}
	if !result.ExpectedTotal.Equal(dec("1140")) {
		t.Fatalf("expected total 1140, got %s", result.ExpectedTotal)
	}
	if !result.AmountDue.Equal(dec("40")) {
		t.Fatalf("expected amount due 40, got %s", result.AmountDue)
	}
}

func TestExpectedTotalIncludesBoundAdjustment(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1000", "100")
	insertPeriod(t, db, date(2024, 1, 1), nil)
	insertBoundAdjustment(t, db, 2023, "100", "80", "2024-05")

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	entry := ledgerEntryFor(t, svc, "2024-05")
	if entry.Adjustment == nil {
		t.Fatal("expected bound adjustment on 2024-05")
	}

	// 1000 rent + 100 utilities + (100 actual - 80 provisioned) = 1120.
	if total := svc.ExpectedTotal(entry); !total.Equal(dec("1120")) {
		t.Fatalf("expected total 1120, got %s", total)
	}
}

func TestExpectedTotalFreezesPaymentRates(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1200", "150")
	insertPeriod(t, db, date(2024, 1, 1), nil)
	// Recorded before the base rates were raised to 1200/150.
	insertPayment(t, db, 4, "2024-01", "1000", "100", "1100")

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	result := svc.Reconcile(ledgerEntryFor(t, svc, "2024-01"))

	if result.Status != ledgerdomain.StatusSettled {
		t.Fatalf("expected settled against frozen rates, got %s", result.Status)
	}
	if !result.ExpectedTotal.Equal(dec("1100")) {
		t.Fatalf("expected total 1100, got %s", result.ExpectedTotal)
	}
}

func TestArrearsIgnoresOverpayments(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1000", "100")
	insertPeriod(t, db, date(2024, 1, 1), nil)
	insertPayment(t, db, 5, "2024-01", "1000", "100", "1100") // settled
	insertPayment(t, db, 6, "2024-02", "1000", "100", "1150") // overpaid
	// 2024-03 unpaid: 1100 due.
	insertPayment(t, db, 7, "2024-04", "1000", "100", "1060") // shortfall of 40
	insertBoundAdjustment(t, db, 2023, "100", "80", "2024-05")
	// 2024-05 unpaid with adjustment: 1120 due.

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	total, err := svc.Arrears(context.Background(), testUnitID, testTenantID, mustMonth(t, "2024-06"))
	if err != nil {
		t.Fatalf("arrears: %v", err)
	}
	if !total.Equal(dec("2260")) {
		t.Fatalf("expected arrears 2260, got %s", total)
	}
}

func TestArrearsWithoutTenancyIsZero(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1000", "100")

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	total, err := svc.Arrears(context.Background(), testUnitID, testTenantID, mustMonth(t, "2024-06"))
	if err != nil {
		t.Fatalf("arrears: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("expected zero arrears, got %s", total)
	}
}

func TestListLedgerCarriesNoticeTimestamp(t *testing.T) {
	db := setupLedgerTestDB(t)
	insertUnit(t, db, "1000", "100")
	insertPeriod(t, db, date(2024, 1, 1), nil)

	reference := mustMonth(t, "2024-03").Time()
	notice := communicationdomain.Communication{
		ID:             snowflake.ID(900),
		TenantID:       testTenantID,
		Type:           communicationdomain.TypeMissingPaymentNotice,
		SentAt:         date(2024, 4, 5),
		ReferenceMonth: &reference,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.Create(&notice).Error; err != nil {
		t.Fatalf("insert notice: %v", err)
	}

	svc := newLedgerService(db, mustMonth(t, "2024-06"))
	entry := ledgerEntryFor(t, svc, "2024-03")
	if entry.NoticeSentAt == nil {
		t.Fatal("expected notice timestamp on 2024-03")
	}
	if !entry.NoticeSentAt.Equal(date(2024, 4, 5)) {
		t.Fatalf("expected notice sent 2024-04-05, got %s", entry.NoticeSentAt)
	}
}

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&unitdomain.Unit{},
		&tenancydomain.TenancyPeriod{},
		&billingdomain.Payment{},
		&billingdomain.ExtraCharge{},
		&adjustmentdomain.UtilityAdjustment{},
		&communicationdomain.Communication{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newLedgerService(db *gorm.DB, reference month.Month) *Service {
	return &Service{
		db:    db,
		log:   zap.NewNop(),
		clock: clock.Fixed(reference.Time()),
	}
}

func ledgerEntryFor(t *testing.T, svc *Service, raw string) ledgerdomain.LedgerEntry {
	t.Helper()
	m := mustMonth(t, raw)
	entries, err := svc.ListLedger(context.Background(), ledgerdomain.ListLedgerRequest{
		UnitID: testUnitID,
		From:   m,
		To:     m,
	})
	if err != nil {
		t.Fatalf("list ledger for %s: %v", raw, err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry for %s, got %d", raw, len(entries))
	}
	return entries[0]
}

func insertUnit(t *testing.T, db *gorm.DB, rent, utilities string) {
	t.Helper()
	now := time.Now().UTC()
	unit := unitdomain.Unit{
		ID:              testUnitID,
		Name:            "Unit A",
		Address:         "1 Test Street",
		NumberOfRooms:   2,
		RentAmount:      dec(rent),
		UtilitiesAmount: dec(utilities),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("insert unit: %v", err)
	}
}

func insertPeriod(t *testing.T, db *gorm.DB, start time.Time, end *time.Time) {
	t.Helper()
	now := time.Now().UTC()
	period := tenancydomain.TenancyPeriod{
		ID:        snowflake.ID(300),
		UnitID:    testUnitID,
		TenantID:  testTenantID,
		StartDate: start,
		EndDate:   end,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&period).Error; err != nil {
		t.Fatalf("insert period: %v", err)
	}
}

func insertPayment(t *testing.T, db *gorm.DB, id int64, billingMonth, rent, utilities, paid string) {
	t.Helper()
	now := time.Now().UTC()
	payment := billingdomain.Payment{
		ID:              snowflake.ID(id),
		UnitID:          testUnitID,
		TenantID:        testTenantID,
		BillingMonth:    mustMonth(t, billingMonth).Time(),
		RentAmount:      dec(rent),
		UtilitiesAmount: dec(utilities),
		AmountPaid:      dec(paid),
		PaymentDate:     mustMonth(t, billingMonth).Time().AddDate(0, 0, 4),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("insert payment %s: %v", billingMonth, err)
	}
}

func insertExtraCharge(t *testing.T, db *gorm.DB, billingMonth, amount string) {
	t.Helper()
	now := time.Now().UTC()
	charge := billingdomain.ExtraCharge{
		ID:           snowflake.ID(500),
		UnitID:       testUnitID,
		TenantID:     testTenantID,
		BillingMonth: mustMonth(t, billingMonth).Time(),
		Amount:       dec(amount),
		Category:     billingdomain.ChargeCategoryHouseholdWaste,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&charge).Error; err != nil {
		t.Fatalf("insert extra charge: %v", err)
	}
}

func insertBoundAdjustment(t *testing.T, db *gorm.DB, year int, charges, provisioned, boundTo string) {
	t.Helper()
	now := time.Now().UTC()
	reference := mustMonth(t, boundTo).Time()
	adjustment := adjustmentdomain.UtilityAdjustment{
		ID:                  snowflake.ID(700),
		UnitID:              testUnitID,
		TenantID:            testTenantID,
		ReferenceYear:       year,
		HeatingAmount:       dec(charges),
		YearlyUtilitiesPaid: dec(provisioned),
		ReferenceMonth:      &reference,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := db.Create(&adjustment).Error; err != nil {
		t.Fatalf("insert adjustment: %v", err)
	}
}

func mustMonth(t *testing.T, raw string) month.Month {
	t.Helper()
	m, err := month.Parse(raw)
	if err != nil {
		t.Fatalf("parse month %s: %v", raw, err)
	}
	return m
}

func date(year int, m time.Month, day int) time.Time {
	return time.Date(year, m, day, 0, 0, 0, 0, time.UTC)
}

func dec(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}
