// Package schedule expands a canonical payment plan into the trackable
// obligation set and the dated rent drafts. It assumes a valid plan:
// inconsistent term/date combinations are rejected at plan-build time,
// so generation itself never fails.
package schedule

import (
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

// Fixed priority bands. Lower allocates first; rent always allocates
// after every pre-sign item.
const (
	PriorityLast     = 10
	PriorityFirst    = 20
	PriorityKeyFee   = 30
	PrioritySecurity = 40
	PriorityRentBase = 1000
)

// Obligations materializes the plan into obligations: one per positive
// upfront item (due on the start date, blocking countersign) plus one
// per rent month when the plan carries a term.
//
// Rent due dates use time.AddDate month arithmetic: adding a month to a
// start day that does not exist in the target month rolls over into the
// following month (Jan 31 + 1 month = Mar 2/3). LeaseEndDate uses the
// same call, so the end date and the last rent month stay consistent.
func Obligations(p models.PaymentPlan, appID models.ApplicationID, leaseID models.LeaseID, now time.Time) []models.Obligation {
	var out []models.Obligation

	upfront := func(key string, group models.ObligationGroup, amount models.Cents, priority int) {
		if amount <= 0 {
			return
		}
		due := p.StartDate
		out = append(out, models.Obligation{
			ID:            models.NewObligationID(),
			ApplicationID: appID,
			LeaseID:       leaseID,
			Key:           key,
			Group:         group,
			AmountCents:   amount,
			DueOn:         &due,
			Priority:      priority,
			PreSignGate:   true,
			PlanVersion:   p.Version,
			CreatedAt:     now,
		})
	}

	upfront(models.ObligationKeyLast, models.GroupUpfront, p.UpfrontTotals.LastCents, PriorityLast)
	upfront(models.ObligationKeyFirst, models.GroupUpfront, p.UpfrontTotals.FirstCents, PriorityFirst)
	upfront(models.ObligationKeyKeyFee, models.GroupFee, p.KeyFeeCents, PriorityKeyFee)
	upfront(models.ObligationKeySecurity, models.GroupDeposit, p.SecurityCents, PrioritySecurity)

	if p.TermMonths != nil && *p.TermMonths > 0 {
		for i := 0; i < *p.TermMonths; i++ {
			due := p.StartDate.AddDate(0, i, 0)
			out = append(out, models.Obligation{
				ID:            models.NewObligationID(),
				ApplicationID: appID,
				LeaseID:       leaseID,
				Key:           models.RentKey(due.Year(), due.Month()),
				Group:         models.GroupRent,
				AmountCents:   p.MonthlyRentCents,
				DueOn:         &due,
				Priority:      PriorityRentBase + i,
				PreSignGate:   false,
				PlanVersion:   p.Version,
				CreatedAt:     now,
			})
		}
	}
	return out
}

// RentDrafts derives the scheduled-payment rows for the rent months of
// an already generated obligation set.
func RentDrafts(obligations []models.Obligation, now time.Time) []models.ScheduledPayment {
	var out []models.ScheduledPayment
	for _, o := range obligations {
		if o.Group != models.GroupRent || o.DueOn == nil {
			continue
		}
		out = append(out, models.ScheduledPayment{
			ID:            models.NewPaymentID(),
			ApplicationID: o.ApplicationID,
			LeaseID:       o.LeaseID,
			ObligationKey: o.Key,
			AmountCents:   o.AmountCents,
			DueOn:         *o.DueOn,
			PlanVersion:   o.PlanVersion,
			CreatedAt:     now,
		})
	}
	return out
}
