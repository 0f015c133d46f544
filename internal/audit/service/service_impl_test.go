package service

import (
	"context"
	"fmt"
	"testing"

	auditdomain "github.com/HollandRoad/mls/internal/audit/domain"
	"github.com/HollandRoad/mls/internal/audit/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestAuditLogMasksSensitiveMetadata(t *testing.T) {
	svc := setupAuditTest(t)

	targetID := "42"
	err := svc.AuditLog(context.Background(), auditdomain.ActionPaymentRecord, "payment", &targetID, map[string]any{
		"unit_id": "42",
		"token":   "abc12345",
	})
	if err != nil {
		t.Fatalf("audit log: %v", err)
	}

	entries, err := svc.List(context.Background(), auditdomain.ListFilter{
		Action: auditdomain.ActionPaymentRecord,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Metadata["unit_id"] != "42" {
		t.Fatalf("expected unit_id kept, got %v", entries[0].Metadata["unit_id"])
	}
	if entries[0].Metadata["token"] != "****2345" {
		t.Fatalf("expected masked token, got %v", entries[0].Metadata["token"])
	}
}

func TestAuditLogDefaultsToSystemActor(t *testing.T) {
	svc := setupAuditTest(t)

	if err := svc.AuditLog(context.Background(), auditdomain.ActionUnitUpdate, "unit", nil, nil); err != nil {
		t.Fatalf("audit log: %v", err)
	}

	entries, err := svc.List(context.Background(), auditdomain.ListFilter{
		Action: auditdomain.ActionUnitUpdate,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].ActorType != string(auditdomain.ActorTypeSystem) {
		t.Fatalf("expected system actor, got %s", entries[0].ActorType)
	}
}

func setupAuditTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&auditdomain.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return &Service{
		db:    db,
		log:   zap.NewNop(),
		genID: node,
		repo:  repository.Provide(),
	}
}
