package domain

import (
	"context"
	"errors"
	"time"

	"github.com/HollandRoad/mls/internal/month"
	"github.com/bwmarrin/snowflake"
)

// CommunicationType labels what kind of notice was dispatched.
type CommunicationType string

const (
	TypeRentReceipt          CommunicationType = "rent_receipt"
	TypeAnnualReceipt        CommunicationType = "annual_receipt"
	TypeMissingPaymentNotice CommunicationType = "missing_payment_notice"
	TypeRentNotice           CommunicationType = "rent_notice"
	TypeRentNoticeAdjustment CommunicationType = "rent_notice_with_adjustment"
	TypeChargesNotice        CommunicationType = "charges_notice"
	TypeOther                CommunicationType = "other"
)

// Communication is an immutable record that a notice or receipt was sent to a
// tenant. The engine reads it only to avoid duplicate-notice warnings; the
// actual dispatch is a caller concern.
type Communication struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID      `gorm:"not null;index" json:"tenant_id"`
	Type           CommunicationType `gorm:"type:text;not null" json:"type"`
	SentAt         time.Time         `gorm:"type:date;not null" json:"sent_at"`
	ReferenceMonth *time.Time        `gorm:"type:date;index" json:"reference_month,omitempty"`
	Notes          string            `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Communication) TableName() string { return "communications" }

type RecordRequest struct {
	TenantID       snowflake.ID      `json:"tenant_id"`
	Type           CommunicationType `json:"type"`
	SentAt         time.Time         `json:"sent_at"`
	ReferenceMonth *month.Month      `json:"reference_month"`
	Notes          string            `json:"notes"`
}

// Service records dispatched notices and answers duplicate checks.
type Service interface {
	Record(ctx context.Context, req RecordRequest) (*Communication, error)
	List(ctx context.Context, tenantID snowflake.ID) ([]Communication, error)
	AlreadySent(ctx context.Context, tenantID snowflake.ID, m month.Month, kind CommunicationType) (*Communication, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidType   = errors.New("invalid_communication_type")
)
