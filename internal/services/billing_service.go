package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/lease/alloc"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/lease/fsm"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/repositories"
)

// BillingService owns the money view of an application: it reruns the
// allocator over the full payment history, materializes per-obligation
// paid totals, and serves the snapshot the lifecycle guards and the API
// read from.
type BillingService struct {
	ApplicationRepo *repositories.ApplicationRepository
	ObligationRepo  *repositories.ObligationRepository
	PaymentRepo     *repositories.PaymentRepository
	Cache           *AllocationCache
	Logger          *slog.Logger
}

// Recompute rebuilds the allocation from scratch and overwrites the
// stored paid_cents values with the result. It is safe to call after
// any payment event, in any order: the output depends only on the
// stored history, never on what ran before.
func (s *BillingService) Recompute(ctx context.Context, appID models.ApplicationID) (AllocationSnapshot, error) {
	app, err := s.ApplicationRepo.GetApplicationByID(ctx, appID)
	if err != nil {
		return AllocationSnapshot{}, err
	}
	obligations, err := s.ObligationRepo.ListByApplication(ctx, appID, app.PlanVersion)
	if err != nil {
		return AllocationSnapshot{}, err
	}
	payments, err := s.PaymentRepo.ListByApplication(ctx, appID)
	if err != nil {
		return AllocationSnapshot{}, err
	}

	charges := alloc.FromObligations(obligations)
	res := alloc.Allocate(charges, payments)

	snap := AllocationSnapshot{
		ApplicationID:   appID,
		PlanVersion:     app.PlanVersion,
		Charges:         make([]ChargeAllocation, 0, len(obligations)),
		OverageByBucket: res.OverageByBucket,
		ComputedAt:      time.Now().UTC(),
	}
	for i, o := range obligations {
		key := charges[i].Key
		posted := res.Posted(key)
		if posted != o.PaidCents {
			if err := s.ObligationRepo.SetPaidCents(ctx, o.ID, posted); err != nil {
				return AllocationSnapshot{}, err
			}
		}
		o.PaidCents = posted
		snap.Charges = append(snap.Charges, ChargeAllocation{
			Key:           key,
			ObligationKey: o.Key,
			Bucket:        charges[i].Bucket,
			AmountCents:   o.AmountCents,
			PostedCents:   posted,
			PendingCents:  res.Pending(key),
			Status:        o.Status(),
		})
		if o.PreSignGate {
			switch charges[i].Bucket {
			case models.BucketUpfront:
				snap.PostedUpfrontCents += posted
			case models.BucketDeposit:
				snap.PostedDepositCents += posted
			}
		}
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, snap); err != nil && s.Logger != nil {
			s.Logger.Warn("allocation cache write failed", "application_id", appID.String(), "err", err)
		}
	}
	return snap, nil
}

// Snapshot serves the cached allocation if present, recomputing on a
// miss.
func (s *BillingService) Snapshot(ctx context.Context, appID models.ApplicationID) (AllocationSnapshot, error) {
	if s.Cache != nil {
		snap, ok, err := s.Cache.Get(ctx, appID)
		if err != nil && s.Logger != nil {
			s.Logger.Warn("allocation cache read failed", "application_id", appID.String(), "err", err)
		}
		if ok {
			return snap, nil
		}
	}
	return s.Recompute(ctx, appID)
}

// Facts assembles the guard inputs for a lifecycle decision: the plan's
// clamped thresholds plus the posted pre-sign totals from a fresh
// recomputation.
func (s *BillingService) Facts(ctx context.Context, app models.Application, role string) (fsm.Facts, error) {
	facts := fsm.Facts{
		Role:     role,
		HasTerms: app.HasTerms(),
	}
	if app.PaymentPlan == nil {
		return facts, nil
	}
	facts.UpfrontThresholdCents = app.PaymentPlan.CountersignUpfrontThresholdCents
	facts.DepositThresholdCents = app.PaymentPlan.CountersignDepositThresholdCents

	snap, err := s.Recompute(ctx, app.ID)
	if err != nil {
		return fsm.Facts{}, err
	}
	facts.PostedUpfrontCents = snap.PostedUpfrontCents
	facts.PostedDepositCents = snap.PostedDepositCents
	return facts, nil
}

// DepositView reports how much of the money held so far belongs to the
// security deposit versus the other move-in fees.
func (s *BillingService) DepositView(ctx context.Context, appID models.ApplicationID) (alloc.DepositSplit, error) {
	app, err := s.ApplicationRepo.GetApplicationByID(ctx, appID)
	if err != nil {
		return alloc.DepositSplit{}, err
	}
	if app.PaymentPlan == nil {
		return alloc.DepositSplit{}, models.ErrInvalidLeaseTerms
	}
	payments, err := s.PaymentRepo.ListByApplication(ctx, appID)
	if err != nil {
		return alloc.DepositSplit{}, err
	}
	return alloc.SplitDeposit(*app.PaymentPlan, payments), nil
}
