package alloc

import (
	"testing"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

func testPlan() models.PaymentPlan {
	return models.PaymentPlan{
		MonthlyRentCents: 200000,
		SecurityCents:    150000,
		KeyFeeCents:      10000,
		UpfrontTotals: models.UpfrontTotals{
			FirstCents:        200000,
			LastCents:         0,
			KeyCents:          10000,
			SecurityCents:     150000,
			OtherCents:        210000,
			TotalUpfrontCents: 360000,
		},
	}
}

func TestSplitDepositSpill(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	split := SplitDeposit(testPlan(), []models.Payment{
		pay(models.PaymentKindHolding, models.PaymentSucceeded, 250000, t0),
	})
	if split.ExpectedOtherCents != 210000 || split.ExpectedDepositCents != 150000 {
		t.Fatalf("expected totals wrong: %+v", split)
	}
	if split.OtherPostedCents != 210000 {
		t.Errorf("other posted = %d, want 210000", split.OtherPostedCents)
	}
	// Only the excess spills into the deposit.
	if split.DepositPostedCents != 40000 {
		t.Errorf("deposit posted = %d, want 40000", split.DepositPostedCents)
	}
	if split.OverageCents != 0 {
		t.Errorf("overage = %d, want 0", split.OverageCents)
	}
}

func TestSplitDepositUnderpaidNoSpill(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	split := SplitDeposit(testPlan(), []models.Payment{
		pay(models.PaymentKindUpfront, models.PaymentSucceeded, 100000, t0),
	})
	if split.OtherPostedCents != 100000 {
		t.Errorf("other posted = %d, want 100000", split.OtherPostedCents)
	}
	if split.DepositPostedCents != 0 {
		t.Errorf("no spill expected, deposit posted = %d", split.DepositPostedCents)
	}
}

func TestSplitDepositOverageBeyondBothBuckets(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	split := SplitDeposit(testPlan(), []models.Payment{
		pay(models.PaymentKindHolding, models.PaymentSucceeded, 400000, t0),
	})
	if split.OtherPostedCents != 210000 || split.DepositPostedCents != 150000 {
		t.Fatalf("both buckets should fill: %+v", split)
	}
	if split.OverageCents != 40000 {
		t.Errorf("overage = %d, want 40000", split.OverageCents)
	}
}

func TestSplitDepositAgreesWithGeneralAllocator(t *testing.T) {
	// The same history run through the general allocator's two buckets
	// must account for the same posted total as the spill view.
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p := testPlan()
	history := []models.Payment{
		pay(models.PaymentKindHolding, models.PaymentSucceeded, 120000, t0),
		pay(models.PaymentKindHolding, models.PaymentProcessing, 90000, t0.Add(time.Minute)),
		pay(models.PaymentKindHolding, models.PaymentSucceeded, 110000, t0.Add(2*time.Minute)),
	}
	split := SplitDeposit(p, history)

	totalPosted := split.OtherPostedCents + split.DepositPostedCents
	totalPending := split.OtherPendingCents + split.DepositPendingCents
	if totalPosted != 230000 {
		t.Errorf("posted = %d, want 230000", totalPosted)
	}
	if totalPending != 90000 {
		t.Errorf("pending = %d, want 90000", totalPending)
	}
	// Other must be exhausted before any deposit money is attributed.
	if split.DepositPostedCents+split.DepositPendingCents > 0 &&
		split.OtherPostedCents+split.OtherPendingCents < split.ExpectedOtherCents {
		t.Errorf("deposit funded before other was full: %+v", split)
	}
}
