package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type AssignRequest struct {
	UnitID    snowflake.ID `json:"unit_id"`
	TenantID  snowflake.ID `json:"tenant_id"`
	StartDate time.Time    `json:"start_date"`
}

type EndTenancyRequest struct {
	UnitID   snowflake.ID `json:"unit_id"`
	TenantID snowflake.ID `json:"tenant_id"`
	EndDate  time.Time    `json:"end_date"`
}

// Service governs occupancy transitions for units. Both mutations run as a
// single transaction; concurrent mutations on the same unit serialize on the
// store.
type Service interface {
	Assign(ctx context.Context, req AssignRequest) (*TenancyPeriod, error)
	EndTenancy(ctx context.Context, req EndTenancyRequest) (*TenancyPeriod, error)
	ActivePeriod(ctx context.Context, unitID snowflake.ID) (*TenancyPeriod, error)
	ListByUnit(ctx context.Context, unitID snowflake.ID) ([]TenancyPeriod, error)
	ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]TenancyPeriod, error)
}

var (
	ErrUnitNotFound        = errors.New("unit_not_found")
	ErrTenantNotFound      = errors.New("tenant_not_found")
	ErrUnitOccupied        = errors.New("unit_occupied")
	ErrTenantAlreadyActive = errors.New("tenant_already_active")
	ErrNoActiveTenancy     = errors.New("no_active_tenancy")
	ErrPeriodOverlap       = errors.New("period_overlap")
	ErrDateBeforeStart     = errors.New("end_date_before_start")
	ErrInvalidDate         = errors.New("invalid_date")
)
