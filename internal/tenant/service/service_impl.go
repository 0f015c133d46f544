package service

import (
	"context"
	"strings"
	"time"

	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
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

func NewService(p ServiceParam) tenantdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req tenantdomain.CreateTenantRequest) (*tenantdomain.Tenant, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, tenantdomain.ErrInvalidName
	}
	if !strings.Contains(req.Email, "@") {
		return nil, tenantdomain.ErrInvalidEmail
	}
	if req.DepositAmount.IsNegative() {
		return nil, tenantdomain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	tenant := tenantdomain.Tenant{
		ID:            s.genID.Generate(),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		Address:       strings.TrimSpace(req.Address),
		PostCode:      strings.TrimSpace(req.PostCode),
		City:          strings.TrimSpace(req.City),
		DepositAmount: req.DepositAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.WithContext(ctx).Create(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req tenantdomain.UpdateTenantRequest) (*tenantdomain.Tenant, error) {
	if req.DepositAmount != nil && req.DepositAmount.IsNegative() {
		return nil, tenantdomain.ErrInvalidAmount
	}

	var updated tenantdomain.Tenant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []tenantdomain.Tenant
		if err := tx.Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return tenantdomain.ErrNotFound
		}
		tenant := rows[0]

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return tenantdomain.ErrInvalidName
			}
			tenant.Name = name
		}
		if req.Email != nil {
			email := strings.TrimSpace(*req.Email)
			if !strings.Contains(email, "@") {
				return tenantdomain.ErrInvalidEmail
			}
			tenant.Email = email
		}
		if req.PhoneNumber != nil {
			tenant.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
		}
		if req.Address != nil {
			tenant.Address = strings.TrimSpace(*req.Address)
		}
		if req.PostCode != nil {
			tenant.PostCode = strings.TrimSpace(*req.PostCode)
		}
		if req.City != nil {
			tenant.City = strings.TrimSpace(*req.City)
		}
		if req.DepositAmount != nil {
			tenant.DepositAmount = *req.DepositAmount
		}
		tenant.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&tenant).Error; err != nil {
			return err
		}
		updated = tenant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*tenantdomain.Tenant, error) {
	var rows []tenantdomain.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, tenantdomain.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Service) List(ctx context.Context) ([]tenantdomain.Tenant, error) {
	var tenants []tenantdomain.Tenant
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}
