package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ChargeCategory classifies an extra charge.
type ChargeCategory string

const (
	ChargeCategoryHouseholdWaste ChargeCategory = "household_waste"
	ChargeCategoryMaintenance    ChargeCategory = "maintenance"
	ChargeCategoryOther          ChargeCategory = "other"
)

// Payment is the recorded settlement for one unit and billing month. The
// charged amounts are frozen at payment time so later base-rate edits never
// rewrite history. BillingMonth is stored as the first day of the month, UTC.
type Payment struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	UnitID          snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_payments_unit_month,priority:1" json:"unit_id"`
	TenantID        snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	BillingMonth    time.Time       `gorm:"type:date;not null;uniqueIndex:ux_payments_unit_month,priority:2" json:"billing_month"`
	RentAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rent_amount"`
	UtilitiesAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"utilities_amount"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	PaymentDate     time.Time       `gorm:"type:date;not null" json:"payment_date"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// ChargedTotal is the rent plus utilities recorded on the payment row.
func (p Payment) ChargedTotal() decimal.Decimal {
	return p.RentAmount.Add(p.UtilitiesAmount)
}

// ExtraCharge is an additional one-off amount billed on top of the base
// charge for a month. Always additive.
type ExtraCharge struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	UnitID       snowflake.ID    `gorm:"not null;index" json:"unit_id"`
	TenantID     snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	BillingMonth time.Time       `gorm:"type:date;not null;index" json:"billing_month"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Category     ChargeCategory  `gorm:"type:text;not null;default:'other'" json:"category"`
	Description  string          `gorm:"type:text" json:"description"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ExtraCharge) TableName() string { return "extra_charges" }
