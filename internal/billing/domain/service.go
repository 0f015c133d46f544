package domain

import (
	"context"
	"errors"
	"time"

	"github.com/HollandRoad/mls/internal/month"
	"github.com/HollandRoad/mls/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type RecordPaymentRequest struct {
	UnitID          snowflake.ID    `json:"unit_id"`
	TenantID        snowflake.ID    `json:"tenant_id"`
	BillingMonth    month.Month     `json:"billing_month"`
	RentAmount      decimal.Decimal `json:"rent_amount"`
	UtilitiesAmount decimal.Decimal `json:"utilities_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	PaymentDate     time.Time       `json:"payment_date"`
}

type UpdatePaymentRequest struct {
	RentAmount      *decimal.Decimal `json:"rent_amount"`
	UtilitiesAmount *decimal.Decimal `json:"utilities_amount"`
	AmountPaid      *decimal.Decimal `json:"amount_paid"`
	PaymentDate     *time.Time       `json:"payment_date"`
}

type ListPaymentsRequest struct {
	UnitID     snowflake.ID
	TenantID   snowflake.ID
	Pagination pagination.Pagination
}

type CreateExtraChargeRequest struct {
	UnitID       snowflake.ID    `json:"unit_id"`
	TenantID     snowflake.ID    `json:"tenant_id"`
	BillingMonth month.Month     `json:"billing_month"`
	Amount       decimal.Decimal `json:"amount"`
	Category     ChargeCategory  `json:"category"`
	Description  string          `json:"description"`
}

// Service manages payment and extra-charge records.
type Service interface {
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Payment, error)
	UpdatePayment(ctx context.Context, id snowflake.ID, req UpdatePaymentRequest) (*Payment, error)
	DeletePayment(ctx context.Context, id snowflake.ID) error
	GetPayment(ctx context.Context, id snowflake.ID) (*Payment, error)
	ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, *pagination.PageInfo, error)

	CreateExtraCharge(ctx context.Context, req CreateExtraChargeRequest) (*ExtraCharge, error)
	DeleteExtraCharge(ctx context.Context, id snowflake.ID) error
	ListExtraCharges(ctx context.Context, unitID snowflake.ID, m month.Month) ([]ExtraCharge, error)
}

var (
	ErrNotFound       = errors.New("payment_not_found")
	ErrDuplicateMonth = errors.New("duplicate_billing_month")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrInvalidMonth   = errors.New("invalid_month")
)
