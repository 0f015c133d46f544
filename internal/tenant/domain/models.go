package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Tenant is a person who rents units. Occupancy lives on TenancyPeriod, not
// on the tenant record itself.
type Tenant struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"type:text;not null" json:"name"`
	Email         string          `gorm:"type:text;not null" json:"email"`
	PhoneNumber   string          `gorm:"type:text" json:"phone_number"`
	Address       string          `gorm:"type:text" json:"address"`
	PostCode      string          `gorm:"type:text" json:"post_code"`
	City          string          `gorm:"type:text" json:"city"`
	DepositAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"deposit_amount"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

type CreateTenantRequest struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	PhoneNumber   string          `json:"phone_number"`
	Address       string          `json:"address"`
	PostCode      string          `json:"post_code"`
	City          string          `json:"city"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
}

type UpdateTenantRequest struct {
	Name          *string          `json:"name"`
	Email         *string          `json:"email"`
	PhoneNumber   *string          `json:"phone_number"`
	Address       *string          `json:"address"`
	PostCode      *string          `json:"post_code"`
	City          *string          `json:"city"`
	DepositAmount *decimal.Decimal `json:"deposit_amount"`
}

// Service manages tenant records.
type Service interface {
	Create(ctx context.Context, req CreateTenantRequest) (*Tenant, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateTenantRequest) (*Tenant, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
}

var (
	ErrNotFound      = errors.New("tenant_not_found")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidAmount = errors.New("invalid_amount")
)
