package events

// Notification event types drained by the notifier worker.
const (
	EventTenancyAssigned   = "tenancy.assigned"
	EventTenancyEnded      = "tenancy.ended"
	EventPaymentRecorded   = "payment.recorded"
	EventAdjustmentBound   = "adjustment.bound"
	EventAdjustmentUnbound = "adjustment.unbound"
)

// TenancyPayload captures the minimal data needed to notify about an
// occupancy change.
type TenancyPayload struct {
	TenancyPeriodID string `json:"tenancy_period_id"`
	UnitID          string `json:"unit_id"`
	TenantID        string `json:"tenant_id"`
	EffectiveDate   string `json:"effective_date"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p TenancyPayload) ToMap() map[string]any {
	return map[string]any{
		"tenancy_period_id": p.TenancyPeriodID,
		"unit_id":           p.UnitID,
		"tenant_id":         p.TenantID,
		"effective_date":    p.EffectiveDate,
	}
}

// PaymentPayload captures the minimal data needed to notify about a recorded
// payment (receipt generation is the caller's concern).
type PaymentPayload struct {
	PaymentID    string `json:"payment_id"`
	UnitID       string `json:"unit_id"`
	TenantID     string `json:"tenant_id"`
	BillingMonth string `json:"billing_month"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p PaymentPayload) ToMap() map[string]any {
	return map[string]any{
		"payment_id":    p.PaymentID,
		"unit_id":       p.UnitID,
		"tenant_id":     p.TenantID,
		"billing_month": p.BillingMonth,
	}
}

// AdjustmentPayload captures the minimal data needed to notify about a
// regularization binding change.
type AdjustmentPayload struct {
	AdjustmentID   string `json:"adjustment_id"`
	UnitID         string `json:"unit_id"`
	TenantID       string `json:"tenant_id"`
	ReferenceYear  int    `json:"reference_year"`
	ReferenceMonth string `json:"reference_month,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p AdjustmentPayload) ToMap() map[string]any {
	payload := map[string]any{
		"adjustment_id":  p.AdjustmentID,
		"unit_id":        p.UnitID,
		"tenant_id":      p.TenantID,
		"reference_year": p.ReferenceYear,
	}
	if p.ReferenceMonth != "" {
		payload["reference_month"] = p.ReferenceMonth
	}
	return payload
}
