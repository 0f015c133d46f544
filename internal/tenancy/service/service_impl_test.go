package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HollandRoad/mls/internal/events"
	tenancydomain "github.com/HollandRoad/mls/internal/tenancy/domain"
	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
	unitdomain "github.com/HollandRoad/mls/internal/unit/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestAssignCreatesOpenPeriod(t *testing.T) {
	db, svc := setupTenancyTest(t)
	unitID := insertTestUnit(t, db, "Unit A")
	tenantID := insertTestTenant(t, db, "Alice Tenant")

	created, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  tenantID,
		StartDate: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !created.IsOpen() {
		t.Fatal("new tenancy should be open")
	}
	if got := created.StartDate; !got.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start date should truncate to day, got %s", got)
	}

	var eventCount int64
	if err := db.Model(&events.NotificationEvent{}).
		Where("event_type = ?", events.EventTenancyAssigned).
		Count(&eventCount).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("expected one assigned event, got %d", eventCount)
	}
}

func TestAssignRejectsOccupiedUnit(t *testing.T) {
	db, svc := setupTenancyTest(t)
	unitID := insertTestUnit(t, db, "Unit A")
	first := insertTestTenant(t, db, "Alice Tenant")
	second := insertTestTenant(t, db, "Bob Tenant")

	if _, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  first,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	_, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  second,
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, tenancydomain.ErrUnitOccupied) {
		t.Fatalf("expected unit occupied, got %v", err)
	}
}

func TestAssignRejectsTenantActiveElsewhere(t *testing.T) {
	db, svc := setupTenancyTest(t)
	unitA := insertTestUnit(t, db, "Unit A")
	unitB := insertTestUnit(t, db, "Unit B")
	tenantID := insertTestTenant(t, db, "Alice Tenant")

	if _, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitA,
		TenantID:  tenantID,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	_, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitB,
		TenantID:  tenantID,
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, tenancydomain.ErrTenantAlreadyActive) {
		t.Fatalf("expected tenant already active, got %v", err)
	}
}

func TestAssignRejectsUnknownUnitAndTenant(t *testing.T) {
	db, svc := setupTenancyTest(t)
	tenantID := insertTestTenant(t, db, "Alice Tenant")

	_, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    snowflake.ID(404),
		TenantID:  tenantID,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, tenancydomain.ErrUnitNotFound) {
		t.Fatalf("expected unit not found, got %v", err)
	}

	unitID := insertTestUnit(t, db, "Unit A")
	_, err = svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  snowflake.ID(404),
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, tenancydomain.ErrTenantNotFound) {
		t.Fatalf("expected tenant not found, got %v", err)
	}
}

func TestEndTenancyClosesPeriod(t *testing.T) {
	db, svc := setupTenancyTest(t)
	unitID := insertTestUnit(t, db, "Unit A")
	tenantID := insertTestTenant(t, db, "Alice Tenant")

	if _, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  tenantID,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	closed, err := svc.EndTenancy(context.Background(), tenancydomain.EndTenancyRequest{
		UnitID:   unitID,
		TenantID: tenantID,
		EndDate:  time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("end tenancy: %v", err)
	}
	if closed.IsOpen() {
		t.Fatal("ended tenancy should be closed")
	}

	active, err := svc.ActivePeriod(context.Background(), unitID)
	if err != nil {
		t.Fatalf("active period: %v", err)
	}
	if active != nil {
		t.Fatal("unit should be vacant after ending the tenancy")
	}
}

func TestEndTenancyRejectsDateBeforeStart(t *testing.T) {
	db, svc := setupTenancyTest(t)
	unitID := insertTestUnit(t, db, "Unit A")
	tenantID := insertTestTenant(t, db, "Alice Tenant")

	if _, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  tenantID,
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := svc.EndTenancy(context.Background(), tenancydomain.EndTenancyRequest{
		UnitID:   unitID,
		TenantID: tenantID,
		EndDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, tenancydomain.ErrDateBeforeStart) {
		t.Fatalf("expected date before start, got %v", err)
	}
}

func TestEndTenancyRequiresActivePeriod(t *testing.T) {
	db, svc := setupTenancyTest(t)
	unitID := insertTestUnit(t, db, "Unit A")
	tenantID := insertTestTenant(t, db, "Alice Tenant")

	_, err := svc.EndTenancy(context.Background(), tenancydomain.EndTenancyRequest{
		UnitID:   unitID,
		TenantID: tenantID,
		EndDate:  time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, tenancydomain.ErrNoActiveTenancy) {
		t.Fatalf("expected no active tenancy, got %v", err)
	}
}

func TestReassignAfterEndCreatesSecondPeriod(t *testing.T) {
	db, svc := setupTenancyTest(t)
	unitID := insertTestUnit(t, db, "Unit A")
	first := insertTestTenant(t, db, "Alice Tenant")
	second := insertTestTenant(t, db, "Bob Tenant")

	if _, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  first,
		StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if _, err := svc.EndTenancy(context.Background(), tenancydomain.EndTenancyRequest{
		UnitID:   unitID,
		TenantID: first,
		EndDate:  time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("end tenancy: %v", err)
	}
	if _, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  second,
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("second assign: %v", err)
	}

	periods, err := svc.ListByUnit(context.Background(), unitID)
	if err != nil {
		t.Fatalf("list by unit: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("expected two periods, got %d", len(periods))
	}
	if periods[0].TenantID != first || periods[0].IsOpen() {
		t.Fatal("oldest period should be the closed first tenancy")
	}
	if periods[1].TenantID != second || !periods[1].IsOpen() {
		t.Fatal("newest period should be the open second tenancy")
	}
}

func TestAssignRejectsStartInsideClosedPeriod(t *testing.T) {
	db, svc := setupTenancyTest(t)
	unitID := insertTestUnit(t, db, "Unit A")
	first := insertTestTenant(t, db, "Alice Tenant")
	second := insertTestTenant(t, db, "Bob Tenant")

	if _, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  first,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if _, err := svc.EndTenancy(context.Background(), tenancydomain.EndTenancyRequest{
		UnitID:   unitID,
		TenantID: first,
		EndDate:  time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("end tenancy: %v", err)
	}

	_, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  second,
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, tenancydomain.ErrPeriodOverlap) {
		t.Fatalf("expected period overlap, got %v", err)
	}

	// The closing day itself still belongs to the old tenancy.
	_, err = svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  second,
		StartDate: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, tenancydomain.ErrPeriodOverlap) {
		t.Fatalf("expected period overlap on end date, got %v", err)
	}

	if _, err := svc.Assign(context.Background(), tenancydomain.AssignRequest{
		UnitID:    unitID,
		TenantID:  second,
		StartDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("assign after closed period: %v", err)
	}
}

var testIDSeq int64

func nextTestID() snowflake.ID {
	return snowflake.ID(atomic.AddInt64(&testIDSeq, 1))
}

func setupTenancyTest(t *testing.T) (*gorm.DB, *Service) {
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
		&events.NotificationEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	svc := &Service{
		db:     db,
		log:    zap.NewNop(),
		genID:  node,
		outbox: events.NewOutbox(db, node),
	}
	return db, svc
}

func insertTestUnit(t *testing.T, db *gorm.DB, name string) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	unit := unitdomain.Unit{
		ID:              nextTestID(),
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

func insertTestTenant(t *testing.T, db *gorm.DB, name string) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	tenant := tenantdomain.Tenant{
		ID:        nextTestID(),
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
