package models

import (
	"fmt"
	"time"
)

// Obligation keys for the upfront items. Rent months use RentKey.
const (
	ObligationKeyFirst    = "first"
	ObligationKeyLast     = "last"
	ObligationKeyKeyFee   = "key_fee"
	ObligationKeySecurity = "security"
)

// RentKey builds the symbolic key for a month's rent, e.g. "rent:2026:02".
func RentKey(year int, month time.Month) string {
	return fmt.Sprintf("rent:%04d:%02d", year, int(month))
}

// ObligationGroup classifies what pool an obligation belongs to.
type ObligationGroup string

const (
	GroupUpfront ObligationGroup = "upfront"
	GroupDeposit ObligationGroup = "deposit"
	GroupRent    ObligationGroup = "rent"
	GroupFee     ObligationGroup = "fee"
)

// ObligationStatus is derived from PaidCents vs AmountCents, never stored
// independently.
type ObligationStatus string

const (
	ObligationDue     ObligationStatus = "due"
	ObligationPartial ObligationStatus = "partial"
	ObligationPaid    ObligationStatus = "paid"
)

// Obligation is a single dated, trackable amount owed by the tenant.
// Created once when a plan is set; never deleted. PaidCents is
// materialized from the allocator's posted results only.
type Obligation struct {
	ID            ObligationID    `json:"id"`
	ApplicationID ApplicationID   `json:"application_id"`
	LeaseID       LeaseID         `json:"lease_id"`
	Key           string          `json:"key"`
	Group         ObligationGroup `json:"group"`
	AmountCents   Cents           `json:"amount_cents"`
	DueOn         *time.Time      `json:"due_on,omitempty"`
	Priority      int             `json:"priority"`
	PreSignGate   bool            `json:"pre_sign_gate"`
	PaidCents     Cents           `json:"paid_cents"`
	PlanVersion   int             `json:"plan_version"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Status derives the payment state of the obligation.
func (o Obligation) Status() ObligationStatus {
	switch {
	case o.PaidCents <= 0:
		return ObligationDue
	case o.PaidCents < o.AmountCents:
		return ObligationPartial
	default:
		return ObligationPaid
	}
}
