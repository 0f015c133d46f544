package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TenancyPeriod is the continuous interval during which one tenant occupies
// one unit. EndDate nil means the tenancy is still open. Periods for the same
// unit never overlap and at most one may be open.
type TenancyPeriod struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UnitID    snowflake.ID `gorm:"not null;index" json:"unit_id"`
	TenantID  snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	StartDate time.Time    `gorm:"type:date;not null" json:"start_date"`
	EndDate   *time.Time   `gorm:"type:date" json:"end_date,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TenancyPeriod) TableName() string { return "tenancy_periods" }

// IsOpen reports whether the tenancy has no end date yet.
func (p TenancyPeriod) IsOpen() bool { return p.EndDate == nil }

// Covers reports whether the period includes any day of the given month,
// where monthStart is the first day of that month.
func (p TenancyPeriod) Covers(monthStart time.Time) bool {
	monthEnd := monthStart.AddDate(0, 1, -1)
	if p.StartDate.After(monthEnd) {
		return false
	}
	if p.EndDate != nil && p.EndDate.Before(monthStart) {
		return false
	}
	return true
}
