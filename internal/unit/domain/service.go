package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateUnitRequest struct {
	Name            string          `json:"name"`
	Address         string          `json:"address"`
	PostCode        string          `json:"post_code"`
	City            string          `json:"city"`
	NumberOfRooms   int             `json:"number_of_rooms"`
	RentAmount      decimal.Decimal `json:"rent_amount"`
	UtilitiesAmount decimal.Decimal `json:"utilities_amount"`
	LandlordID      *snowflake.ID   `json:"landlord_id"`
	ManagerID       *snowflake.ID   `json:"manager_id"`
}

type UpdateUnitRequest struct {
	Name            *string          `json:"name"`
	Address         *string          `json:"address"`
	PostCode        *string          `json:"post_code"`
	City            *string          `json:"city"`
	NumberOfRooms   *int             `json:"number_of_rooms"`
	RentAmount      *decimal.Decimal `json:"rent_amount"`
	UtilitiesAmount *decimal.Decimal `json:"utilities_amount"`
	LandlordID      *snowflake.ID    `json:"landlord_id"`
	ManagerID       *snowflake.ID    `json:"manager_id"`
}

// Service manages unit and contact records.
type Service interface {
	Create(ctx context.Context, req CreateUnitRequest) (*Unit, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateUnitRequest) (*Unit, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Unit, error)
	List(ctx context.Context) ([]Unit, error)

	CreateLandlord(ctx context.Context, landlord Landlord) (*Landlord, error)
	ListLandlords(ctx context.Context) ([]Landlord, error)
	CreateManager(ctx context.Context, manager BuildingManager) (*BuildingManager, error)
	ListManagers(ctx context.Context) ([]BuildingManager, error)
}

var (
	ErrNotFound      = errors.New("unit_not_found")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidName   = errors.New("invalid_name")
)
