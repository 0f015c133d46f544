package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// UtilityAdjustment is the annual regularization between utility provisions
// collected during a reference year and the actual costs. ReferenceMonth, when
// set, binds the net balance into that billing month's expected total; at most
// one adjustment per unit/tenant may be bound to a given month.
type UtilityAdjustment struct {
	ID                  snowflake.ID    `gorm:"primaryKey" json:"id"`
	UnitID              snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_adjustments_unit_tenant_year,priority:1" json:"unit_id"`
	TenantID            snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_adjustments_unit_tenant_year,priority:2" json:"tenant_id"`
	ReferenceYear       int             `gorm:"not null;uniqueIndex:ux_adjustments_unit_tenant_year,priority:3" json:"reference_year"`
	LiftAmount          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"lift_amount"`
	HeatingAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"heating_amount"`
	OtherAmount         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"other_amount"`
	YearlyUtilitiesPaid decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"yearly_utilities_paid"`
	IsSettled           bool            `gorm:"not null;default:false" json:"is_settled"`
	ReferenceMonth      *time.Time      `gorm:"type:date;index" json:"reference_month,omitempty"`
	CreatedAt           time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (UtilityAdjustment) TableName() string { return "utility_adjustments" }

// TotalCharges is the actual utility cost for the year.
func (a UtilityAdjustment) TotalCharges() decimal.Decimal {
	return a.LiftAmount.Add(a.HeatingAmount).Add(a.OtherAmount)
}

// NetBalance is what the tenant still owes for the year: positive means a
// top-up is due, negative means the tenant overpaid provisions.
func (a UtilityAdjustment) NetBalance() decimal.Decimal {
	return a.TotalCharges().Sub(a.YearlyUtilitiesPaid)
}
