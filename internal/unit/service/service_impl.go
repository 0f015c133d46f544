package service

import (
	"context"
	"strings"
	"time"

	unitdomain "github.com/HollandRoad/mls/internal/unit/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service manages unit and contact records. Rate edits only affect future
// ledger months; months with a recorded payment keep their historical rates.
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

func NewService(p ServiceParam) unitdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("unit.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req unitdomain.CreateUnitRequest) (*unitdomain.Unit, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, unitdomain.ErrInvalidName
	}
	if req.RentAmount.IsNegative() || req.UtilitiesAmount.IsNegative() {
		return nil, unitdomain.ErrInvalidAmount
	}

	rooms := req.NumberOfRooms
	if rooms <= 0 {
		rooms = 1
	}

	now := time.Now().UTC()
	unit := unitdomain.Unit{
		ID:              s.genID.Generate(),
		Name:            strings.TrimSpace(req.Name),
		Address:         strings.TrimSpace(req.Address),
		PostCode:        strings.TrimSpace(req.PostCode),
		City:            strings.TrimSpace(req.City),
		NumberOfRooms:   rooms,
		RentAmount:      req.RentAmount,
		UtilitiesAmount: req.UtilitiesAmount,
		LandlordID:      req.LandlordID,
		ManagerID:       req.ManagerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.db.WithContext(ctx).Create(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req unitdomain.UpdateUnitRequest) (*unitdomain.Unit, error) {
	if req.RentAmount != nil && req.RentAmount.IsNegative() {
		return nil, unitdomain.ErrInvalidAmount
	}
	if req.UtilitiesAmount != nil && req.UtilitiesAmount.IsNegative() {
		return nil, unitdomain.ErrInvalidAmount
	}

	var updated unitdomain.Unit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []unitdomain.Unit
		if err := tx.Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return unitdomain.ErrNotFound
		}
		unit := rows[0]

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return unitdomain.ErrInvalidName
			}
			unit.Name = name
		}
		if req.Address != nil {
			unit.Address = strings.TrimSpace(*req.Address)
		}
		if req.PostCode != nil {
			unit.PostCode = strings.TrimSpace(*req.PostCode)
		}
		if req.City != nil {
			unit.City = strings.TrimSpace(*req.City)
		}
		if req.NumberOfRooms != nil && *req.NumberOfRooms > 0 {
			unit.NumberOfRooms = *req.NumberOfRooms
		}
		if req.RentAmount != nil {
			unit.RentAmount = *req.RentAmount
		}
		if req.UtilitiesAmount != nil {
			unit.UtilitiesAmount = *req.UtilitiesAmount
		}
		if req.LandlordID != nil {
			unit.LandlordID = req.LandlordID
		}
		if req.ManagerID != nil {
			unit.ManagerID = req.ManagerID
		}
		unit.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&unit).Error; err != nil {
			return err
		}
		updated = unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*unitdomain.Unit, error) {
	var rows []unitdomain.Unit
	if err := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, unitdomain.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Service) List(ctx context.Context) ([]unitdomain.Unit, error) {
	var units []unitdomain.Unit
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (s *Service) CreateLandlord(ctx context.Context, landlord unitdomain.Landlord) (*unitdomain.Landlord, error) {
	if strings.TrimSpace(landlord.Name) == "" {
		return nil, unitdomain.ErrInvalidName
	}
	now := time.Now().UTC()
	landlord.ID = s.genID.Generate()
	landlord.CreatedAt = now
	landlord.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(&landlord).Error; err != nil {
		return nil, err
	}
	return &landlord, nil
}

func (s *Service) ListLandlords(ctx context.Context) ([]unitdomain.Landlord, error) {
	var landlords []unitdomain.Landlord
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&landlords).Error; err != nil {
		return nil, err
	}
	return landlords, nil
}

func (s *Service) CreateManager(ctx context.Context, manager unitdomain.BuildingManager) (*unitdomain.BuildingManager, error) {
	if strings.TrimSpace(manager.Name) == "" {
		return nil, unitdomain.ErrInvalidName
	}
	now := time.Now().UTC()
	manager.ID = s.genID.Generate()
	manager.CreatedAt = now
	manager.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(&manager).Error; err != nil {
		return nil, err
	}
	return &manager, nil
}

func (s *Service) ListManagers(ctx context.Context) ([]unitdomain.BuildingManager, error) {
	var managers []unitdomain.BuildingManager
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&managers).Error; err != nil {
		return nil, err
	}
	return managers, nil
}
