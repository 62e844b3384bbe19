package models

import "time"

// Collection priority codes in the fixed precedence used by the plan
// builder. Last month is collected before first month on purpose: it is
// the obligation considered highest-risk to waive.
const (
	PriorityLastMonth       = "last_month"
	PriorityFirstMonth      = "first_month"
	PriorityKeyFee          = "key_fee"
	PrioritySecurityDeposit = "security_deposit"
)

// LeaseTerms is the raw landlord-entered input to the plan builder.
// Amounts are integer cents; StartDate is a YYYY-MM-DD calendar date.
type LeaseTerms struct {
	MonthlyRentCents                 Cents  `json:"monthly_rent_cents"`
	TermMonths                       *int   `json:"term_months,omitempty"`
	StartDate                        string `json:"start_date"`
	SecurityCents                    Cents  `json:"security_cents"`
	KeyFeeCents                      Cents  `json:"key_fee_cents"`
	RequireFirstBeforeMoveIn         bool   `json:"require_first_before_move_in"`
	RequireLastBeforeMoveIn          bool   `json:"require_last_before_move_in"`
	CountersignUpfrontThresholdCents Cents  `json:"countersign_upfront_threshold_cents"`
	CountersignDepositThresholdCents Cents  `json:"countersign_deposit_threshold_cents"`
}

// UpfrontTotals is the derived breakdown of move-in money.
type UpfrontTotals struct {
	FirstCents        Cents `json:"first_cents"`
	LastCents         Cents `json:"last_cents"`
	KeyCents          Cents `json:"key_cents"`
	SecurityCents     Cents `json:"security_cents"`
	OtherCents        Cents `json:"other_cents"`
	TotalUpfrontCents Cents `json:"total_upfront_cents"`
}

// PaymentPlan is the canonical, clamped financial shape of a lease.
// Thresholds are clamped once, at build time; downstream code may rely
// on them never exceeding their maxima.
type PaymentPlan struct {
	MonthlyRentCents                 Cents         `json:"monthly_rent_cents"`
	TermMonths                       *int          `json:"term_months,omitempty"`
	StartDate                        time.Time     `json:"start_date"`
	SecurityCents                    Cents         `json:"security_cents"`
	KeyFeeCents                      Cents         `json:"key_fee_cents"`
	RequireFirstBeforeMoveIn         bool          `json:"require_first_before_move_in"`
	RequireLastBeforeMoveIn          bool          `json:"require_last_before_move_in"`
	CountersignUpfrontThresholdCents Cents         `json:"countersign_upfront_threshold_cents"`
	CountersignDepositThresholdCents Cents         `json:"countersign_deposit_threshold_cents"`
	UpfrontMaxCents                  Cents         `json:"upfront_max_cents"`
	DepositMaxCents                  Cents         `json:"deposit_max_cents"`
	UpfrontTotals                    UpfrontTotals `json:"upfront_totals"`
	Priority                         []string      `json:"priority"`
	Version                          int           `json:"version"`
}

// LeaseEndDate returns start + term months - 1 day, or nil for
// open-ended plans. Month arithmetic matches the rent schedule's.
func (p PaymentPlan) LeaseEndDate() *time.Time {
	if p.TermMonths == nil || *p.TermMonths <= 0 {
		return nil
	}
	end := p.StartDate.AddDate(0, *p.TermMonths, 0).AddDate(0, 0, -1)
	return &end
}
