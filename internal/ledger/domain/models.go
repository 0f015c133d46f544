package domain

import (
	"time"

	adjustmentdomain "github.com/HollandRoad/mls/internal/adjustment/domain"
	billingdomain "github.com/HollandRoad/mls/internal/billing/domain"
	"github.com/HollandRoad/mls/internal/month"
	tenancydomain "github.com/HollandRoad/mls/internal/tenancy/domain"
	"github.com/shopspring/decimal"
)

// Occupancy classifies a ledger month relative to tenancy and the reference
// date. Only billable months participate in reconciliation.
type Occupancy string

const (
	OccupancyBillable Occupancy = "billable"
	OccupancyVacant   Occupancy = "vacant"
	OccupancyUpcoming Occupancy = "upcoming"
)

// PaymentStatus is the reconciliation outcome for one ledger entry.
type PaymentStatus string

const (
	StatusSettled       PaymentStatus = "settled"
	StatusShortfall     PaymentStatus = "shortfall"
	StatusOverpaid      PaymentStatus = "overpaid"
	StatusUnpaid        PaymentStatus = "unpaid"
	StatusNotApplicable PaymentStatus = "not_applicable"
)

// LedgerEntry is one calendar month's billing record for a unit, carrying the
// raw records the charge calculator and reconciler consume.
type LedgerEntry struct {
	Month        month.Month                         `json:"month"`
	Occupancy    Occupancy                           `json:"occupancy"`
	Tenancy      *tenancydomain.TenancyPeriod        `json:"tenancy,omitempty"`
	Payment      *billingdomain.Payment              `json:"payment,omitempty"`
	ExtraCharges []billingdomain.ExtraCharge         `json:"extra_charges,omitempty"`
	Adjustment   *adjustmentdomain.UtilityAdjustment `json:"adjustment,omitempty"`

	// Current base rates at read time, used for months without a payment.
	BaseRent      decimal.Decimal `json:"base_rent"`
	BaseUtilities decimal.Decimal `json:"base_utilities"`

	// NoticeSentAt is set when a missed-payment notice was already
	// dispatched for this month.
	NoticeSentAt *time.Time `json:"notice_sent_at,omitempty"`
}

// Billable reports whether the entry has an expected amount at all.
func (e LedgerEntry) Billable() bool { return e.Occupancy == OccupancyBillable }

// ReconciliationResult classifies an entry's payment state. Difference is
// amount paid minus expected and is only meaningful when a payment exists.
type ReconciliationResult struct {
	Status        PaymentStatus   `json:"status"`
	ExpectedTotal decimal.Decimal `json:"expected_total"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	Difference    decimal.Decimal `json:"difference"`
}
