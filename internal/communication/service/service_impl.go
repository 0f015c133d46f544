package service

import (
	"context"
	"time"

	communicationdomain "github.com/HollandRoad/mls/internal/communication/domain"
	"github.com/HollandRoad/mls/internal/month"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

func NewService(p ServiceParam) communicationdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("communication.service"),
		genID: p.GenID,
	}
}

func (s *Service) Record(ctx context.Context, req communicationdomain.RecordRequest) (*communicationdomain.Communication, error) {
	if req.TenantID == 0 {
		return nil, communicationdomain.ErrInvalidTenant
	}
	if req.Type == "" {
		return nil, communicationdomain.ErrInvalidType
	}

	sentAt := req.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}
	var reference *time.Time
	if req.ReferenceMonth != nil {
		monthStart := req.ReferenceMonth.Time()
		reference = &monthStart
	}

	record := communicationdomain.Communication{
		ID:             s.genID.Generate(),
		TenantID:       req.TenantID,
		Type:           req.Type,
		SentAt:         sentAt,
		ReferenceMonth: reference,
		Notes:          req.Notes,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Service) List(ctx context.Context, tenantID snowflake.ID) ([]communicationdomain.Communication, error) {
	query := s.db.WithContext(ctx).Order("sent_at DESC")
	if tenantID != 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	var records []communicationdomain.Communication
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) AlreadySent(ctx context.Context, tenantID snowflake.ID, m month.Month, kind communicationdomain.CommunicationType) (*communicationdomain.Communication, error) {
	var rows []communicationdomain.Communication
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ? AND reference_month = ?", tenantID, kind, m.Time()).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
