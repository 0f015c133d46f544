package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/HollandRoad/mls/internal/audit/domain"
	"github.com/HollandRoad/mls/internal/auditcontext"
	obslogger "github.com/HollandRoad/mls/internal/observability/logger"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service writes immutable audit entries for administrative mutations. A
// failed audit write never fails the mutation it describes; it is logged and
// dropped.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// AuditLog records one action. Actor and request details are read from the
// context when present.
func (s *Service) AuditLog(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error {
	if s == nil || s.repo == nil {
		return nil
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return nil
	}

	actorType, actorID := auditcontext.ActorFromContext(ctx)
	if actorType == "" {
		actorType = string(auditdomain.ActorTypeSystem)
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  actorType,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   toJSONMap(metadata),
		CreatedAt:  time.Now().UTC(),
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if ip := auditcontext.IPAddressFromContext(ctx); ip != "" {
		entry.IPAddress = &ip
	}
	if ua := auditcontext.UserAgentFromContext(ctx); ua != "" {
		entry.UserAgent = &ua
	}
	if rid := auditcontext.RequestIDFromContext(ctx); rid != "" {
		entry.Metadata["request_id"] = rid
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

// List returns audit entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}

// Metadata is caller supplied, so sensitive keys are masked before the
// entry is persisted.
func toJSONMap(metadata map[string]any) datatypes.JSONMap {
	payload := datatypes.JSONMap{}
	for key, value := range obslogger.MaskJSON(metadata) {
		if strings.TrimSpace(key) == "" {
			continue
		}
		payload[key] = value
	}
	return payload
}
