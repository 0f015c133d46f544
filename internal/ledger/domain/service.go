package domain

import (
	"context"
	"errors"

	"github.com/HollandRoad/mls/internal/month"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ListLedgerRequest asks for one entry per calendar month in [From, To],
// oldest first. TenantID narrows payments and charges to one tenant; zero
// means the tenancy active in each month decides. ReferenceMonth marks the
// boundary between current and upcoming months; when zero the engine's clock
// supplies it.
type ListLedgerRequest struct {
	UnitID         snowflake.ID
	TenantID       snowflake.ID
	From           month.Month
	To             month.Month
	ReferenceMonth month.Month
}

// Service is the rental ledger and reconciliation engine. Reads are pure over
// the current store snapshot; nothing here mutates data.
type Service interface {
	ListLedger(ctx context.Context, req ListLedgerRequest) ([]LedgerEntry, error)
	ExpectedTotal(entry LedgerEntry) decimal.Decimal
	Reconcile(entry LedgerEntry) ReconciliationResult
	Arrears(ctx context.Context, unitID, tenantID snowflake.ID, before month.Month) (decimal.Decimal, error)
}

var (
	ErrInvalidUnit  = errors.New("invalid_unit")
	ErrInvalidRange = errors.New("invalid_month_range")
)
