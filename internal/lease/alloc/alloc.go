// Package alloc applies a payment history against a charge set under
// bucket and priority rules. Allocation always recomputes from the full
// source history; nothing here accumulates incrementally, so replays
// and out-of-order status updates converge on the same answer.
package alloc

import (
	"fmt"
	"sort"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

// Charge is the lightweight allocation target derived from an
// obligation (or synthesized on the fly from a plan).
type Charge struct {
	Key           string
	Code          string
	Bucket        string
	AmountCents   models.Cents
	PriorityIndex int
}

// Split is the allocation outcome for one charge. Posted money comes
// from succeeded payments, pending from processing ones.
type Split struct {
	PostedCents  models.Cents
	PendingCents models.Cents
}

// Result maps charge keys to splits and reports, per bucket, money that
// no same-bucket charge could absorb. Overage is a fact for the caller,
// not an error, and is never auto-spilled across buckets.
type Result struct {
	ByCharge        map[string]Split
	OverageByBucket map[string]models.Cents
}

// Posted returns the posted amount for a charge key.
func (r Result) Posted(key string) models.Cents { return r.ByCharge[key].PostedCents }

// Pending returns the pending amount for a charge key.
func (r Result) Pending(key string) models.Cents { return r.ByCharge[key].PendingCents }

// NormalizeKind maps provider wire kinds onto the stored enum.
func NormalizeKind(kind string) string {
	if kind == models.PaymentKindOperating {
		return models.PaymentKindUpfront
	}
	return kind
}

// Allocate distributes payments over charges. Charges are served in
// (priorityIndex, code) order; payments apply oldest first. Only
// succeeded and processing payments of an allocatable bucket kind
// participate. The function is pure: inputs are not mutated and
// identical inputs always produce identical output.
func Allocate(charges []Charge, payments []models.Payment) Result {
	eligible := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if p.Status != models.PaymentSucceeded && p.Status != models.PaymentProcessing {
			continue
		}
		kind := NormalizeKind(p.Kind)
		if kind != models.BucketUpfront && kind != models.BucketDeposit {
			continue
		}
		p.Kind = kind
		eligible = append(eligible, p)
	}
	return allocate(charges, eligible)
}

// allocate is the core loop. Payments must already be filtered to
// allocation-eligible statuses and have their kinds normalized to the
// bucket they draw from.
func allocate(charges []Charge, payments []models.Payment) Result {
	sorted := make([]Charge, len(charges))
	copy(sorted, charges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PriorityIndex != sorted[j].PriorityIndex {
			return sorted[i].PriorityIndex < sorted[j].PriorityIndex
		}
		return sorted[i].Code < sorted[j].Code
	})

	eligible := make([]models.Payment, len(payments))
	copy(eligible, payments)
	// Oldest money applies first; id breaks created-at ties so the
	// result does not depend on input order.
	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].CreatedAt.Equal(eligible[j].CreatedAt) {
			return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
		}
		return eligible[i].ID.String() < eligible[j].ID.String()
	})

	res := Result{
		ByCharge:        make(map[string]Split, len(sorted)),
		OverageByBucket: make(map[string]models.Cents),
	}
	for _, c := range sorted {
		res.ByCharge[c.Key] = Split{}
	}

	for _, p := range eligible {
		remaining := p.AmountCents
		for _, c := range sorted {
			if remaining == 0 {
				break
			}
			if c.Bucket != p.Kind {
				continue
			}
			split := res.ByCharge[c.Key]
			open := c.AmountCents.SubFloor(split.PostedCents + split.PendingCents)
			if open == 0 {
				continue
			}
			take := models.MinCents(open, remaining)
			if p.Status == models.PaymentSucceeded {
				split.PostedCents += take
			} else {
				split.PendingCents += take
			}
			res.ByCharge[c.Key] = split
			remaining -= take
		}
		if remaining > 0 {
			res.OverageByBucket[p.Kind] += remaining
		}
	}
	return res
}

// FromObligations derives the charge view of an obligation set. Deposit
// obligations allocate from the deposit bucket; everything else (rent
// included) draws on the upfront pool.
func FromObligations(obligations []models.Obligation) []Charge {
	charges := make([]Charge, 0, len(obligations))
	for _, o := range obligations {
		bucket := models.BucketUpfront
		if o.Group == models.GroupDeposit {
			bucket = models.BucketDeposit
		}
		charges = append(charges, Charge{
			Key:           ChargeKey(o.ApplicationID, bucket, o.Key),
			Code:          o.Key,
			Bucket:        bucket,
			AmountCents:   o.AmountCents,
			PriorityIndex: o.Priority,
		})
	}
	return charges
}

// ChargeKey builds the canonical appId:bucket:code key.
func ChargeKey(appID models.ApplicationID, bucket, code string) string {
	return fmt.Sprintf("%s:%s:%s", appID, bucket, code)
}
