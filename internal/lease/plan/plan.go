package plan

import (
	"fmt"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Build validates raw landlord-entered lease terms and normalizes them
// into the canonical payment plan. Threshold clamping happens here and
// only here; downstream consumers assume clamped values.
func Build(terms models.LeaseTerms) (models.PaymentPlan, error) {
	if terms.MonthlyRentCents <= 0 {
		return models.PaymentPlan{}, fmt.Errorf("%w: monthly rent must be positive", models.ErrInvalidLeaseTerms)
	}
	start, err := time.ParseInLocation(DateLayout, terms.StartDate, time.UTC)
	if err != nil {
		return models.PaymentPlan{}, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", models.ErrInvalidLeaseTerms, terms.StartDate)
	}
	if terms.TermMonths != nil && *terms.TermMonths <= 0 {
		return models.PaymentPlan{}, fmt.Errorf("%w: term months must be positive when present", models.ErrInvalidLeaseTerms)
	}
	if terms.SecurityCents < 0 {
		return models.PaymentPlan{}, fmt.Errorf("%w: security deposit cannot be negative", models.ErrInvalidLeaseTerms)
	}
	if terms.SecurityCents > terms.MonthlyRentCents {
		// Statutory cap: deposit may not exceed one month's rent.
		return models.PaymentPlan{}, fmt.Errorf("%w: security deposit exceeds monthly rent", models.ErrInvalidLeaseTerms)
	}
	if terms.KeyFeeCents < 0 {
		return models.PaymentPlan{}, fmt.Errorf("%w: key fee cannot be negative", models.ErrInvalidLeaseTerms)
	}
	if terms.CountersignUpfrontThresholdCents < 0 || terms.CountersignDepositThresholdCents < 0 {
		return models.PaymentPlan{}, fmt.Errorf("%w: countersign thresholds cannot be negative", models.ErrInvalidLeaseTerms)
	}

	var first, last models.Cents
	if terms.RequireFirstBeforeMoveIn {
		first = terms.MonthlyRentCents
	}
	if terms.RequireLastBeforeMoveIn {
		last = terms.MonthlyRentCents
	}

	upfrontMax := first + last + terms.KeyFeeCents
	depositMax := terms.SecurityCents

	totals := models.UpfrontTotals{
		FirstCents:        first,
		LastCents:         last,
		KeyCents:          terms.KeyFeeCents,
		SecurityCents:     terms.SecurityCents,
		OtherCents:        first + last + terms.KeyFeeCents,
		TotalUpfrontCents: first + last + terms.KeyFeeCents + terms.SecurityCents,
	}

	return models.PaymentPlan{
		MonthlyRentCents:                 terms.MonthlyRentCents,
		TermMonths:                       terms.TermMonths,
		StartDate:                        start,
		SecurityCents:                    terms.SecurityCents,
		KeyFeeCents:                      terms.KeyFeeCents,
		RequireFirstBeforeMoveIn:         terms.RequireFirstBeforeMoveIn,
		RequireLastBeforeMoveIn:          terms.RequireLastBeforeMoveIn,
		CountersignUpfrontThresholdCents: terms.CountersignUpfrontThresholdCents.ClampMax(upfrontMax),
		CountersignDepositThresholdCents: terms.CountersignDepositThresholdCents.ClampMax(depositMax),
		UpfrontMaxCents:                  upfrontMax,
		DepositMaxCents:                  depositMax,
		UpfrontTotals:                    totals,
		Priority:                         collectionPriority(last, first, terms.KeyFeeCents, terms.SecurityCents),
	}, nil
}

// collectionPriority returns the ordered subset of priority codes whose
// amount is positive. Last month intentionally precedes first month.
func collectionPriority(last, first, key, security models.Cents) []string {
	codes := make([]string, 0, 4)
	if last > 0 {
		codes = append(codes, models.PriorityLastMonth)
	}
	if first > 0 {
		codes = append(codes, models.PriorityFirstMonth)
	}
	if key > 0 {
		codes = append(codes, models.PriorityKeyFee)
	}
	if security > 0 {
		codes = append(codes, models.PrioritySecurityDeposit)
	}
	return codes
}
