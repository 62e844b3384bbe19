package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/lease/fsm"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/lease/plan"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/lease/schedule"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/repositories"
)

// StatusBroadcaster pushes a status change to connected websocket
// clients. Implemented by the hub in cmd.
type StatusBroadcaster interface {
	BroadcastStatus(appID models.ApplicationID, status string)
}

// ApplicationService orchestrates the application lifecycle. Every
// decision runs through fsm.Next against a freshly read status, and the
// write is the guarded compare-and-swap in the repository; a concurrent
// decision surfaces as a conflict, never a lost update.
type ApplicationService struct {
	ApplicationRepo *repositories.ApplicationRepository
	ObligationRepo  *repositories.ObligationRepository
	Billing         *BillingService
	Notifier        *NotificationService
	Broadcaster     StatusBroadcaster
	Logger          *slog.Logger
}

func (s *ApplicationService) CreateApplication(ctx context.Context, tenantUserID, landlordUserID int) (models.Application, error) {
	app := models.Application{
		ID:             models.NewApplicationID(),
		LeaseID:        models.NewLeaseID(),
		TenantUserID:   tenantUserID,
		LandlordUserID: landlordUserID,
		Status:         fsm.StatusDraft,
		CreatedAt:      time.Now().UTC(),
	}
	return s.ApplicationRepo.CreateApplication(ctx, app)
}

func (s *ApplicationService) GetApplication(ctx context.Context, id models.ApplicationID) (models.Application, error) {
	return s.ApplicationRepo.GetApplicationByID(ctx, id)
}

func (s *ApplicationService) GetTimeline(ctx context.Context, id models.ApplicationID) ([]models.TimelineEntry, error) {
	return s.ApplicationRepo.GetTimeline(ctx, id)
}

func (s *ApplicationService) Submit(ctx context.Context, id models.ApplicationID, role string) (models.Application, error) {
	return s.decide(ctx, id, fsm.ActionSubmit, role, "submitted by tenant")
}

func (s *ApplicationService) PreliminaryAccept(ctx context.Context, id models.ApplicationID, role string) (models.Application, error) {
	return s.decide(ctx, id, fsm.ActionPreliminaryAccept, role, "screened")
}

func (s *ApplicationService) Approve(ctx context.Context, id models.ApplicationID, role string) (models.Application, error) {
	return s.decide(ctx, id, fsm.ActionApprove, role, "approved")
}

func (s *ApplicationService) Reject(ctx context.Context, id models.ApplicationID, role string) (models.Application, error) {
	return s.decide(ctx, id, fsm.ActionReject, role, "rejected")
}

func (s *ApplicationService) Withdraw(ctx context.Context, id models.ApplicationID, role string) (models.Application, error) {
	return s.decide(ctx, id, fsm.ActionWithdraw, role, "withdrawn by tenant")
}

func (s *ApplicationService) Countersign(ctx context.Context, id models.ApplicationID, role string) (models.Application, error) {
	return s.decide(ctx, id, fsm.ActionCountersign, role, "countersigned")
}

func (s *ApplicationService) Occupy(ctx context.Context, id models.ApplicationID, role string) (models.Application, error) {
	return s.decide(ctx, id, fsm.ActionOccupy, role, "keys handed over")
}

// SetTerms builds the canonical plan from the landlord's terms, stores
// it with a bumped version, generates the obligation set and rent
// drafts, and advances the lifecycle. The obligation insert is
// idempotency-guarded per plan version, so a retried request cannot
// duplicate the schedule.
func (s *ApplicationService) SetTerms(ctx context.Context, id models.ApplicationID, role string, terms models.LeaseTerms) (models.Application, error) {
	app, err := s.ApplicationRepo.GetApplicationByID(ctx, id)
	if err != nil {
		return models.Application{}, err
	}

	p, err := plan.Build(terms)
	if err != nil {
		return models.Application{}, err
	}
	p.Version = app.PlanVersion + 1

	facts := fsm.Facts{Role: role, HasTerms: true}
	next, err := fsm.Next(app.Status, fsm.ActionSetTerms, facts)
	if err != nil {
		return models.Application{}, err
	}

	if err := s.ApplicationRepo.SetPaymentPlan(ctx, id, p); err != nil {
		return models.Application{}, err
	}
	now := time.Now().UTC()
	obligations := schedule.Obligations(p, id, app.LeaseID, now)
	if err := s.ObligationRepo.BulkInsert(ctx, obligations); err != nil {
		return models.Application{}, err
	}
	if err := s.ObligationRepo.InsertScheduledPayments(ctx, schedule.RentDrafts(obligations, now)); err != nil {
		return models.Application{}, err
	}

	if err := s.applyTransition(ctx, &app, next, "terms set"); err != nil {
		return models.Application{}, err
	}
	app.PaymentPlan = &p
	app.PlanVersion = p.Version

	// The engine decides immediately whether a countersign minimum is
	// owed; with no minimum configured the application is ready to
	// countersign as soon as terms land.
	facts.UpfrontThresholdCents = p.CountersignUpfrontThresholdCents
	facts.DepositThresholdCents = p.CountersignDepositThresholdCents
	ready, err := fsm.Next(app.Status, fsm.ActionSystemMinReady, facts)
	if err != nil {
		return models.Application{}, err
	}
	if err := s.applyTransition(ctx, &app, ready, "minimum evaluated"); err != nil {
		return models.Application{}, err
	}
	return app, nil
}

// TrySystemMinPaid advances min_due to min_paid if the posted money now
// covers the configured minimums. Called after every payment event; a
// not-yet outcome is normal and returns the application unchanged.
func (s *ApplicationService) TrySystemMinPaid(ctx context.Context, id models.ApplicationID) (models.Application, error) {
	app, err := s.ApplicationRepo.GetApplicationByID(ctx, id)
	if err != nil {
		return models.Application{}, err
	}
	if app.Status != fsm.StatusMinDue {
		return app, nil
	}
	facts, err := s.Billing.Facts(ctx, app, "")
	if err != nil {
		return models.Application{}, err
	}
	if !facts.MinimumsMet() {
		return app, nil
	}
	next, err := fsm.Next(app.Status, fsm.ActionSystemMinPaid, facts)
	if err != nil {
		return models.Application{}, err
	}
	if err := s.applyTransition(ctx, &app, next, "minimum posted"); err != nil {
		return models.Application{}, err
	}
	return app, nil
}

func (s *ApplicationService) decide(ctx context.Context, id models.ApplicationID, action fsm.Action, role, note string) (models.Application, error) {
	app, err := s.ApplicationRepo.GetApplicationByID(ctx, id)
	if err != nil {
		return models.Application{}, err
	}
	facts, err := s.factsFor(ctx, app, action, role)
	if err != nil {
		return models.Application{}, err
	}
	next, err := fsm.Next(app.Status, action, facts)
	if err != nil {
		return models.Application{}, err
	}
	if err := s.applyTransition(ctx, &app, next, note); err != nil {
		return models.Application{}, err
	}
	return app, nil
}

// factsFor loads billing facts only for the actions whose guards read
// money; everything else decides on role and terms alone.
func (s *ApplicationService) factsFor(ctx context.Context, app models.Application, action fsm.Action, role string) (fsm.Facts, error) {
	switch action {
	case fsm.ActionCountersign, fsm.ActionSystemMinPaid:
		return s.Billing.Facts(ctx, app, role)
	}
	return fsm.Facts{Role: role, HasTerms: app.HasTerms()}, nil
}

func (s *ApplicationService) applyTransition(ctx context.Context, app *models.Application, next, note string) error {
	if next == app.Status {
		return nil
	}
	if err := s.ApplicationRepo.TransitionStatus(ctx, app.ID, app.Status, next, note, time.Now().UTC()); err != nil {
		return err
	}
	prev := app.Status
	app.Status = next
	if s.Logger != nil {
		s.Logger.Info("application status changed",
			"application_id", app.ID.String(), "from", prev, "to", next)
	}
	if s.Broadcaster != nil {
		s.Broadcaster.BroadcastStatus(app.ID, next)
	}
	if s.Notifier != nil {
		if err := s.Notifier.StatusChanged(ctx, *app, next); err != nil && s.Logger != nil {
			s.Logger.Warn("status notification failed", "application_id", app.ID.String(), "err", err)
		}
	}
	return nil
}
