package notifier

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/HollandRoad/mls/internal/cache"
	"github.com/HollandRoad/mls/internal/events"
	"github.com/HollandRoad/mls/internal/observability/metrics"
	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeMailer struct {
	sent []Message
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	if m.fail {
		return errors.New("smtp_unreachable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestRunOnceDeliversPendingEvents(t *testing.T) {
	db := setupNotifierTestDB(t)
	insertNotifierTenant(t, db, 200, "alice@example.com")
	insertPendingEvent(t, db, 1, 200, events.EventPaymentRecorded)
	insertPendingEvent(t, db, 2, 200, events.EventTenancyAssigned)

	mailer := &fakeMailer{}
	worker := newTestWorker(db, mailer)

	delivered, err := worker.RunOnce()
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if delivered != 2 {
		t.Fatalf("expected 2 delivered, got %d", delivered)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(mailer.sent))
	}
	if mailer.sent[0].To != "alice@example.com" {
		t.Fatalf("expected tenant email, got %s", mailer.sent[0].To)
	}
	if mailer.sent[0].Subject != "We received your rent payment" {
		t.Fatalf("unexpected subject %q", mailer.sent[0].Subject)
	}

	var pending int64
	if err := db.Model(&events.NotificationEvent{}).
		Where("published = ?", false).
		Count(&pending).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != 0 {
		t.Fatalf("expected empty backlog, got %d", pending)
	}
}

func TestRunOnceKeepsFailedEventsPending(t *testing.T) {
	db := setupNotifierTestDB(t)
	insertNotifierTenant(t, db, 200, "alice@example.com")
	insertPendingEvent(t, db, 1, 200, events.EventPaymentRecorded)

	mailer := &fakeMailer{fail: true}
	worker := newTestWorker(db, mailer)

	delivered, err := worker.RunOnce()
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if delivered != 0 {
		t.Fatalf("expected 0 delivered, got %d", delivered)
	}

	var pending int64
	if err := db.Model(&events.NotificationEvent{}).
		Where("published = ?", false).
		Count(&pending).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != 1 {
		t.Fatalf("failed event should stay pending, got %d", pending)
	}

	// The next poll retries and succeeds.
	mailer.fail = false
	delivered, err = worker.RunOnce()
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if delivered != 1 {
		t.Fatalf("expected retry to deliver 1, got %d", delivered)
	}
}

func TestRunOnceSkipsEventsWithoutContact(t *testing.T) {
	db := setupNotifierTestDB(t)
	insertPendingEvent(t, db, 1, 999, events.EventPaymentRecorded)

	mailer := &fakeMailer{}
	worker := newTestWorker(db, mailer)

	delivered, err := worker.RunOnce()
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if delivered != 0 {
		t.Fatalf("expected 0 delivered, got %d", delivered)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(mailer.sent))
	}
}

func TestSubjectForUnknownType(t *testing.T) {
	if got := subjectFor("something_else"); got != "Notification from your property manager" {
		t.Fatalf("unexpected subject %q", got)
	}
}

func newTestWorker(db *gorm.DB, mailer Mailer) *Worker {
	return &Worker{
		db:       db,
		log:      zap.NewNop(),
		mailer:   mailer,
		cfg:      DefaultConfig(),
		contacts: cache.NewTTLCache[snowflake.ID, string](),
		metrics:  metrics.Outbox(),
	}
}

func setupNotifierTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&tenantdomain.Tenant{},
		&events.NotificationEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func insertNotifierTenant(t *testing.T, db *gorm.DB, id int64, email string) {
	t.Helper()
	now := time.Now().UTC()
	tenant := tenantdomain.Tenant{
		ID:        snowflake.ID(id),
		Name:      "Test Tenant",
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("insert tenant: %v", err)
	}
}

func insertPendingEvent(t *testing.T, db *gorm.DB, id, tenantID int64, eventType string) {
	t.Helper()
	dedupe := fmt.Sprintf("%s:%d", eventType, id)
	event := events.NotificationEvent{
		ID:        snowflake.ID(id),
		TenantID:  snowflake.ID(tenantID),
		EventType: eventType,
		Payload:   datatypes.JSONMap{"payment_id": fmt.Sprintf("%d", id)},
		DedupeKey: &dedupe,
		CreatedAt: time.Now().UTC().Add(-time.Minute + time.Duration(id)*time.Second),
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("insert event: %v", err)
	}
}
