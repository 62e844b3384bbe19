package schedule

import (
	"testing"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/lease/plan"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

func intPtr(v int) *int { return &v }

func buildPlan(t *testing.T, terms models.LeaseTerms) models.PaymentPlan {
	t.Helper()
	p, err := plan.Build(terms)
	if err != nil {
		t.Fatalf("plan.Build: %v", err)
	}
	return p
}

func TestObligationsScenario(t *testing.T) {
	p := buildPlan(t, models.LeaseTerms{
		MonthlyRentCents:         200000,
		TermMonths:               intPtr(2),
		StartDate:                "2026-02-01",
		SecurityCents:            150000,
		KeyFeeCents:              10000,
		RequireFirstBeforeMoveIn: true,
	})
	appID := models.NewApplicationID()
	leaseID := models.NewLeaseID()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	got := Obligations(p, appID, leaseID, now)

	want := []struct {
		key      string
		amount   models.Cents
		due      string
		priority int
		gate     bool
		group    models.ObligationGroup
	}{
		{models.ObligationKeyFirst, 200000, "2026-02-01", PriorityFirst, true, models.GroupUpfront},
		{models.ObligationKeyKeyFee, 10000, "2026-02-01", PriorityKeyFee, true, models.GroupFee},
		{models.ObligationKeySecurity, 150000, "2026-02-01", PrioritySecurity, true, models.GroupDeposit},
		{"rent:2026:02", 200000, "2026-02-01", 1000, false, models.GroupRent},
		{"rent:2026:03", 200000, "2026-03-01", 1001, false, models.GroupRent},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d obligations, got %d", len(want), len(got))
	}
	for i, w := range want {
		o := got[i]
		if o.Key != w.key {
			t.Errorf("[%d] key = %q, want %q", i, o.Key, w.key)
		}
		if o.AmountCents != w.amount {
			t.Errorf("[%d] amount = %d, want %d", i, o.AmountCents, w.amount)
		}
		if o.DueOn == nil || o.DueOn.Format(plan.DateLayout) != w.due {
			t.Errorf("[%d] due = %v, want %s", i, o.DueOn, w.due)
		}
		if o.Priority != w.priority {
			t.Errorf("[%d] priority = %d, want %d", i, o.Priority, w.priority)
		}
		if o.PreSignGate != w.gate {
			t.Errorf("[%d] preSignGate = %v, want %v", i, o.PreSignGate, w.gate)
		}
		if o.Group != w.group {
			t.Errorf("[%d] group = %q, want %q", i, o.Group, w.group)
		}
		if o.PaidCents != 0 {
			t.Errorf("[%d] paid must start at zero", i)
		}
		if o.Status() != models.ObligationDue {
			t.Errorf("[%d] fresh obligation must be due", i)
		}
	}
}

func TestRentScheduleCountAndOrdering(t *testing.T) {
	const term = 14
	p := buildPlan(t, models.LeaseTerms{
		MonthlyRentCents: 125000,
		TermMonths:       intPtr(term),
		StartDate:        "2026-07-10",
	})
	got := Obligations(p, models.NewApplicationID(), models.NewLeaseID(), time.Now().UTC())

	rent := make([]models.Obligation, 0, term)
	for _, o := range got {
		if o.Group == models.GroupRent {
			rent = append(rent, o)
		}
	}
	if len(rent) != term {
		t.Fatalf("expected %d rent obligations, got %d", term, len(rent))
	}
	for i := 1; i < len(rent); i++ {
		if !rent[i-1].DueOn.Before(*rent[i].DueOn) {
			t.Fatalf("due dates not strictly increasing at %d", i)
		}
		if rent[i-1].Priority >= rent[i].Priority {
			t.Fatalf("priorities not strictly increasing at %d", i)
		}
	}
}

func TestMonthRolloverOnShortMonths(t *testing.T) {
	p := buildPlan(t, models.LeaseTerms{
		MonthlyRentCents: 100000,
		TermMonths:       intPtr(2),
		StartDate:        "2026-01-31",
	})
	got := Obligations(p, models.NewApplicationID(), models.NewLeaseID(), time.Now().UTC())
	if len(got) != 2 {
		t.Fatalf("expected 2 obligations, got %d", len(got))
	}
	// Jan 31 + 1 month normalizes to Mar 3 (2026 is not a leap year).
	if got[1].DueOn.Format(plan.DateLayout) != "2026-03-03" {
		t.Fatalf("expected rollover due 2026-03-03, got %s", got[1].DueOn.Format(plan.DateLayout))
	}
	if got[1].Key != "rent:2026:03" {
		t.Fatalf("rent key must follow the rolled-over month, got %s", got[1].Key)
	}
	// End date math uses the same AddDate call and stays consistent.
	end := p.LeaseEndDate()
	if end == nil || end.Format(plan.DateLayout) != "2026-03-30" {
		t.Fatalf("unexpected lease end %v", end)
	}
}

func TestRentDrafts(t *testing.T) {
	p := buildPlan(t, models.LeaseTerms{
		MonthlyRentCents:         80000,
		TermMonths:               intPtr(3),
		StartDate:                "2026-04-01",
		SecurityCents:            50000,
		RequireFirstBeforeMoveIn: true,
	})
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	obligations := Obligations(p, models.NewApplicationID(), models.NewLeaseID(), now)
	drafts := RentDrafts(obligations, now)
	if len(drafts) != 3 {
		t.Fatalf("expected 3 rent drafts, got %d", len(drafts))
	}
	for i, d := range drafts {
		if d.ObligationKey != obligations[2+i].Key {
			t.Errorf("draft %d key %q does not match obligation %q", i, d.ObligationKey, obligations[2+i].Key)
		}
		if d.AmountCents != 80000 {
			t.Errorf("draft %d amount = %d", i, d.AmountCents)
		}
	}
}
