package models

import "time"

// Payment buckets. Rent obligations allocate into the upfront bucket
// because they share one payment pool with move-in fees.
const (
	BucketUpfront = "upfront"
	BucketDeposit = "deposit"
)

// Payment kinds as stored. Provider-sourced "operating" is normalized to
// "upfront" before the engine ever sees it.
const (
	PaymentKindHolding    = "holding"
	PaymentKindUpfront    = "upfront"
	PaymentKindDeposit    = "deposit"
	PaymentKindRent       = "rent"
	PaymentKindFee        = "fee"
	PaymentKindRefund     = "refund"
	PaymentKindAdjustment = "adjustment"
	PaymentKindScheduled  = "scheduled"

	// Provider wire value only; normalized to upfront on intake.
	PaymentKindOperating = "operating"
)

// Payment statuses. Only succeeded and processing participate in
// allocation.
const (
	PaymentRequiresAction = "requires_action"
	PaymentScheduled      = "scheduled"
	PaymentSucceeded      = "succeeded"
	PaymentFailed         = "failed"
	PaymentRefunded       = "refunded"
	PaymentCanceled       = "canceled"
	PaymentProcessing     = "processing"
)

// Payment is one reported money movement against an application. The
// engine never decides whether a payment succeeded; the provider does.
type Payment struct {
	ID            PaymentID     `json:"id"`
	ApplicationID ApplicationID `json:"application_id"`
	Kind          string        `json:"kind"`
	Status        string        `json:"status"`
	AmountCents   Cents         `json:"amount_cents"`
	ProviderRef   string        `json:"provider_ref,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ScheduledPayment is a future dated rent draft generated alongside the
// obligation schedule.
type ScheduledPayment struct {
	ID            PaymentID     `json:"id"`
	ApplicationID ApplicationID `json:"application_id"`
	LeaseID       LeaseID       `json:"lease_id"`
	ObligationKey string        `json:"obligation_key"`
	AmountCents   Cents         `json:"amount_cents"`
	DueOn         time.Time     `json:"due_on"`
	PlanVersion   int           `json:"plan_version"`
	CreatedAt     time.Time     `json:"created_at"`
}
