package domain

import (
	"context"
	"errors"
	"time"

	ledgerdomain "github.com/HollandRoad/mls/internal/ledger/domain"
	"github.com/HollandRoad/mls/internal/month"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// UnpaidTenant is one row of the dunning worklist: an occupied unit whose
// tenant has at least one unresolved month.
type UnpaidTenant struct {
	TenantID     snowflake.ID    `json:"tenant_id"`
	TenantName   string          `json:"tenant_name"`
	TenantEmail  string          `json:"tenant_email"`
	UnitID       snowflake.ID    `json:"unit_id"`
	UnitName     string          `json:"unit_name"`
	MissedMonths int             `json:"missed_months"`
	Arrears      decimal.Decimal `json:"arrears"`
	NoticeSentAt *time.Time      `json:"notice_sent_at,omitempty"`
}

// UnitPaymentStatus summarizes one occupied unit's reconciliation for a month.
type UnitPaymentStatus struct {
	UnitID     snowflake.ID               `json:"unit_id"`
	UnitName   string                     `json:"unit_name"`
	TenantID   snowflake.ID               `json:"tenant_id"`
	TenantName string                     `json:"tenant_name"`
	Month      month.Month                `json:"month"`
	Status     ledgerdomain.PaymentStatus `json:"status"`
	Expected   decimal.Decimal            `json:"expected"`
	AmountDue  decimal.Decimal            `json:"amount_due"`
}

// VacantUnit is a unit with no open tenancy period.
type VacantUnit struct {
	UnitID          snowflake.ID    `json:"unit_id"`
	UnitName        string          `json:"unit_name"`
	RentAmount      decimal.Decimal `json:"rent_amount"`
	UtilitiesAmount decimal.Decimal `json:"utilities_amount"`
	LastEndDate     *time.Time      `json:"last_end_date,omitempty"`
}

// Service exposes cross-unit reporting consumed by dashboard screens and
// notice tooling. All reads recompute from current data.
type Service interface {
	UnpaidTenants(ctx context.Context, reference month.Month) ([]UnpaidTenant, error)
	PaymentStatus(ctx context.Context, m month.Month) ([]UnitPaymentStatus, error)
	VacantUnits(ctx context.Context) ([]VacantUnit, error)
}

var ErrInvalidMonth = errors.New("invalid_month")
