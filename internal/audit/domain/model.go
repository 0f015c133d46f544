package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActorType represents who triggered an action.
type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

const (
	ActionTenancyAssign    = "tenancy.assign"
	ActionTenancyEnd       = "tenancy.end"
	ActionPaymentRecord    = "payment.record"
	ActionPaymentUpdate    = "payment.update"
	ActionPaymentDelete    = "payment.delete"
	ActionAdjustmentCreate = "adjustment.create"
	ActionAdjustmentUpdate = "adjustment.update"
	ActionAdjustmentBind   = "adjustment.bind"
	ActionAdjustmentDelete = "adjustment.delete"
	ActionUnitUpdate       = "unit.update"
)

// AuditLog captures an immutable record of an administrative action.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	ActorType  string            `gorm:"type:text;not null"`
	ActorID    *string           `gorm:"type:text"`
	Action     string            `gorm:"type:text;not null;index"`
	TargetType string            `gorm:"type:text;not null"`
	TargetID   *string           `gorm:"type:text"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	IPAddress  *string           `gorm:"type:text"`
	UserAgent  *string           `gorm:"type:text"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
