package alloc

import (
	"testing"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

func pay(kind, status string, amount models.Cents, at time.Time) models.Payment {
	return models.Payment{
		ID:          models.NewPaymentID(),
		Kind:        kind,
		Status:      status,
		AmountCents: amount,
		CreatedAt:   at,
	}
}

func upfrontCharges() []Charge {
	return []Charge{
		{Key: "key_fee", Code: "key_fee", Bucket: models.BucketUpfront, AmountCents: 10000, PriorityIndex: 0},
		{Key: "first_month", Code: "first_month", Bucket: models.BucketUpfront, AmountCents: 200000, PriorityIndex: 1},
		{Key: "rent:2026:02", Code: "rent:2026:02", Bucket: models.BucketUpfront, AmountCents: 200000, PriorityIndex: 2000},
	}
}

func TestAllocateScenario(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	res := Allocate(upfrontCharges(), []models.Payment{
		pay(models.PaymentKindUpfront, models.PaymentSucceeded, 250000, t0),
	})

	if got := res.Posted("key_fee"); got != 10000 {
		t.Errorf("key_fee posted = %d, want 10000", got)
	}
	if got := res.Posted("first_month"); got != 200000 {
		t.Errorf("first_month posted = %d, want 200000", got)
	}
	if got := res.Posted("rent:2026:02"); got != 40000 {
		t.Errorf("rent posted = %d, want 40000", got)
	}
	for key, split := range res.ByCharge {
		if split.PendingCents != 0 {
			t.Errorf("%s pending = %d, want 0", key, split.PendingCents)
		}
	}
	if got := res.OverageByBucket[models.BucketUpfront]; got != 0 {
		t.Errorf("overage = %d, want 0", got)
	}
}

func TestAllocateProcessingGoesPending(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	res := Allocate(upfrontCharges(), []models.Payment{
		pay(models.PaymentKindUpfront, models.PaymentSucceeded, 5000, t0),
		pay(models.PaymentKindUpfront, models.PaymentProcessing, 8000, t0.Add(time.Minute)),
	})
	split := res.ByCharge["key_fee"]
	if split.PostedCents != 5000 {
		t.Errorf("posted = %d, want 5000", split.PostedCents)
	}
	if split.PendingCents != 5000 {
		t.Errorf("pending = %d, want 5000 (remainder of processing payment)", split.PendingCents)
	}
	if got := res.Pending("first_month"); got != 3000 {
		t.Errorf("first_month pending = %d, want 3000", got)
	}
}

func TestAllocateIgnoresIneligiblePayments(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	res := Allocate(upfrontCharges(), []models.Payment{
		pay(models.PaymentKindUpfront, models.PaymentFailed, 100000, t0),
		pay(models.PaymentKindUpfront, models.PaymentRefunded, 100000, t0),
		pay(models.PaymentKindUpfront, models.PaymentCanceled, 100000, t0),
		pay(models.PaymentKindUpfront, models.PaymentRequiresAction, 100000, t0),
		pay(models.PaymentKindRefund, models.PaymentSucceeded, 100000, t0),
		pay(models.PaymentKindFee, models.PaymentSucceeded, 100000, t0),
	})
	for key, split := range res.ByCharge {
		if split.PostedCents != 0 || split.PendingCents != 0 {
			t.Errorf("%s should be untouched, got %+v", key, split)
		}
	}
}

func TestAllocateNormalizesOperatingKind(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	res := Allocate(upfrontCharges(), []models.Payment{
		pay(models.PaymentKindOperating, models.PaymentSucceeded, 10000, t0),
	})
	if got := res.Posted("key_fee"); got != 10000 {
		t.Errorf("operating payment must fund the upfront bucket, posted = %d", got)
	}
}

func TestAllocateBucketsAreIndependent(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	charges := []Charge{
		{Key: "security", Code: "security", Bucket: models.BucketDeposit, AmountCents: 150000, PriorityIndex: 0},
		{Key: "first_month", Code: "first_month", Bucket: models.BucketUpfront, AmountCents: 200000, PriorityIndex: 1},
	}
	res := Allocate(charges, []models.Payment{
		pay(models.PaymentKindUpfront, models.PaymentSucceeded, 300000, t0),
	})
	if got := res.Posted("security"); got != 0 {
		t.Errorf("upfront money must not cross into the deposit bucket, got %d", got)
	}
	if got := res.Posted("first_month"); got != 200000 {
		t.Errorf("first_month posted = %d, want 200000", got)
	}
	// The 100000 the upfront bucket could not absorb is reported, not spilled.
	if got := res.OverageByBucket[models.BucketUpfront]; got != 100000 {
		t.Errorf("overage = %d, want 100000", got)
	}
}

func TestAllocateDeterministicAndOrderIndependent(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		pay(models.PaymentKindUpfront, models.PaymentSucceeded, 60000, t0.Add(2*time.Hour)),
		pay(models.PaymentKindUpfront, models.PaymentProcessing, 45000, t0),
		pay(models.PaymentKindDeposit, models.PaymentSucceeded, 30000, t0.Add(time.Hour)),
	}
	charges := []Charge{
		{Key: "a", Code: "a", Bucket: models.BucketUpfront, AmountCents: 50000, PriorityIndex: 5},
		{Key: "b", Code: "b", Bucket: models.BucketUpfront, AmountCents: 70000, PriorityIndex: 10},
		{Key: "d", Code: "d", Bucket: models.BucketDeposit, AmountCents: 40000, PriorityIndex: 1},
	}

	first := Allocate(charges, payments)
	second := Allocate(charges, payments)

	reversedPayments := []models.Payment{payments[2], payments[1], payments[0]}
	reversedCharges := []Charge{charges[2], charges[1], charges[0]}
	third := Allocate(reversedCharges, reversedPayments)

	for _, other := range []Result{second, third} {
		for key, split := range first.ByCharge {
			if other.ByCharge[key] != split {
				t.Fatalf("non-deterministic result for %s: %+v vs %+v", key, split, other.ByCharge[key])
			}
		}
	}
}

func TestAllocateConservation(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	charges := upfrontCharges()
	payments := []models.Payment{
		pay(models.PaymentKindUpfront, models.PaymentSucceeded, 123456, t0),
		pay(models.PaymentKindUpfront, models.PaymentProcessing, 99999, t0.Add(time.Minute)),
		pay(models.PaymentKindUpfront, models.PaymentSucceeded, 700000, t0.Add(2*time.Minute)),
	}
	res := Allocate(charges, payments)

	var postedSum models.Cents
	for _, c := range charges {
		split := res.ByCharge[c.Key]
		if split.PostedCents+split.PendingCents > c.AmountCents {
			t.Errorf("%s over-allocated: %+v over %d", c.Key, split, c.AmountCents)
		}
		postedSum += split.PostedCents
	}
	var succeededSum models.Cents
	for _, p := range payments {
		if p.Status == models.PaymentSucceeded {
			succeededSum += p.AmountCents
		}
	}
	if postedSum > succeededSum {
		t.Errorf("posted %d exceeds succeeded money %d", postedSum, succeededSum)
	}
}

func TestAllocateTieBreakOnCode(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	charges := []Charge{
		{Key: "zz", Code: "zz", Bucket: models.BucketUpfront, AmountCents: 1000, PriorityIndex: 10},
		{Key: "aa", Code: "aa", Bucket: models.BucketUpfront, AmountCents: 1000, PriorityIndex: 10},
	}
	res := Allocate(charges, []models.Payment{
		pay(models.PaymentKindUpfront, models.PaymentSucceeded, 1000, t0),
	})
	if got := res.Posted("aa"); got != 1000 {
		t.Errorf("lexical tie-break must favor aa, posted = %d", got)
	}
	if got := res.Posted("zz"); got != 0 {
		t.Errorf("zz should get nothing, posted = %d", got)
	}
}

func TestFromObligationsBucketMapping(t *testing.T) {
	appID := models.NewApplicationID()
	obligations := []models.Obligation{
		{ApplicationID: appID, Key: models.ObligationKeyFirst, Group: models.GroupUpfront, AmountCents: 1, Priority: 20},
		{ApplicationID: appID, Key: models.ObligationKeySecurity, Group: models.GroupDeposit, AmountCents: 1, Priority: 40},
		{ApplicationID: appID, Key: "rent:2026:02", Group: models.GroupRent, AmountCents: 1, Priority: 1000},
		{ApplicationID: appID, Key: models.ObligationKeyKeyFee, Group: models.GroupFee, AmountCents: 1, Priority: 30},
	}
	charges := FromObligations(obligations)
	wantBuckets := []string{models.BucketUpfront, models.BucketDeposit, models.BucketUpfront, models.BucketUpfront}
	for i, c := range charges {
		if c.Bucket != wantBuckets[i] {
			t.Errorf("[%d] bucket = %q, want %q", i, c.Bucket, wantBuckets[i])
		}
		if c.Key != ChargeKey(appID, wantBuckets[i], obligations[i].Key) {
			t.Errorf("[%d] key = %q", i, c.Key)
		}
	}
}
