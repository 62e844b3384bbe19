package alloc

import "github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"

// DepositSplit is the two-bucket view of move-in money: everything but
// the security deposit first, then the spill into the deposit.
type DepositSplit struct {
	ExpectedOtherCents   models.Cents
	ExpectedDepositCents models.Cents
	OtherPostedCents     models.Cents
	OtherPendingCents    models.Cents
	DepositPostedCents   models.Cents
	DepositPendingCents  models.Cents
	OverageCents         models.Cents
}

const (
	spillBucket        = "holding"
	spillChargeOther   = "other"
	spillChargeDeposit = "deposit"
)

// SplitDeposit computes the security-deposit vs other-upfront-fees
// split of the holding money paid so far. It is a specialization of
// Allocate over one synthetic bucket with two charges, so it agrees
// with the general allocator by construction: other fees absorb money
// first, and only the excess spills into the deposit.
func SplitDeposit(p models.PaymentPlan, payments []models.Payment) DepositSplit {
	expectedOther := p.UpfrontTotals.FirstCents + p.UpfrontTotals.LastCents + p.UpfrontTotals.KeyCents
	expectedDeposit := p.SecurityCents

	charges := []Charge{
		{Key: spillChargeOther, Code: spillChargeOther, Bucket: spillBucket, AmountCents: expectedOther, PriorityIndex: 0},
		{Key: spillChargeDeposit, Code: spillChargeDeposit, Bucket: spillBucket, AmountCents: expectedDeposit, PriorityIndex: 1},
	}

	pooled := make([]models.Payment, 0, len(payments))
	for _, pay := range payments {
		if pay.Status != models.PaymentSucceeded && pay.Status != models.PaymentProcessing {
			continue
		}
		switch NormalizeKind(pay.Kind) {
		case models.PaymentKindHolding, models.PaymentKindUpfront, models.PaymentKindDeposit:
			pay.Kind = spillBucket
			pooled = append(pooled, pay)
		}
	}

	res := allocate(charges, pooled)
	return DepositSplit{
		ExpectedOtherCents:   expectedOther,
		ExpectedDepositCents: expectedDeposit,
		OtherPostedCents:     res.Posted(spillChargeOther),
		OtherPendingCents:    res.Pending(spillChargeOther),
		DepositPostedCents:   res.Posted(spillChargeDeposit),
		DepositPendingCents:  res.Pending(spillChargeDeposit),
		OverageCents:         res.OverageByBucket[spillBucket],
	}
}
