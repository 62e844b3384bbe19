package models

import "time"

// Application is the rental application record. Status holds one of the
// lifecycle values owned by internal/lease/fsm; every status write is a
// compare-and-swap keyed on the previously read value.
type Application struct {
	ID             ApplicationID `json:"id"`
	LeaseID        LeaseID       `json:"lease_id"`
	TenantUserID   int           `json:"tenant_user_id"`
	LandlordUserID int           `json:"landlord_user_id"`
	Status         string        `json:"status"`
	PaymentPlan    *PaymentPlan  `json:"payment_plan,omitempty"`
	PlanVersion    int           `json:"plan_version"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      *time.Time    `json:"updated_at,omitempty"`
}

// HasTerms reports whether a countersignable terms snapshot is present.
func (a Application) HasTerms() bool {
	return a.PaymentPlan != nil
}

// TimelineEntry is one row of the append-only status log. Entries are
// never rewritten.
type TimelineEntry struct {
	ApplicationID ApplicationID `json:"application_id"`
	Status        string        `json:"status"`
	Note          string        `json:"note,omitempty"`
	At            time.Time     `json:"at"`
}
