package domain

import (
	"context"
	"errors"

	"github.com/HollandRoad/mls/internal/month"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	UnitID              snowflake.ID    `json:"unit_id"`
	TenantID            snowflake.ID    `json:"tenant_id"`
	ReferenceYear       int             `json:"reference_year"`
	LiftAmount          decimal.Decimal `json:"lift_amount"`
	HeatingAmount       decimal.Decimal `json:"heating_amount"`
	OtherAmount         decimal.Decimal `json:"other_amount"`
	YearlyUtilitiesPaid decimal.Decimal `json:"yearly_utilities_paid"`
}

type UpdateRequest struct {
	LiftAmount          *decimal.Decimal `json:"lift_amount"`
	HeatingAmount       *decimal.Decimal `json:"heating_amount"`
	OtherAmount         *decimal.Decimal `json:"other_amount"`
	YearlyUtilitiesPaid *decimal.Decimal `json:"yearly_utilities_paid"`
	IsSettled           *bool            `json:"is_settled"`
}

// Service manages utility regularizations and their month bindings. Bind with
// a nil month unbinds; binding to an occupied month moves the binding over
// (the other adjustment's reference month is cleared in the same transaction).
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*UtilityAdjustment, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*UtilityAdjustment, error)
	Bind(ctx context.Context, id snowflake.ID, m *month.Month) (*UtilityAdjustment, error)
	Delete(ctx context.Context, id snowflake.ID) error
	GetByID(ctx context.Context, id snowflake.ID) (*UtilityAdjustment, error)
	List(ctx context.Context, unitID, tenantID snowflake.ID) ([]UtilityAdjustment, error)
}

var (
	ErrNotFound      = errors.New("adjustment_not_found")
	ErrDuplicateYear = errors.New("duplicate_reference_year")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidYear   = errors.New("invalid_reference_year")
)
