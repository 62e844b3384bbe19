package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/lease/alloc"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/pay"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/repositories"
)

// ProviderEvent is the webhook body the payment provider posts on every
// payment status change. Amounts arrive as integer cents.
type ProviderEvent struct {
	EventID       string    `json:"event_id"`
	ProviderRef   string    `json:"provider_ref"`
	ApplicationID string    `json:"application_id"`
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	AmountCents   int64     `json:"amount_cents"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ProviderEventService ingests payment webhooks: verify the signature,
// normalize the provider's vocabulary onto ours, upsert the payment by
// provider reference, and trigger the downstream recomputation. The
// provider decides payment outcomes; this service only records them.
type ProviderEventService struct {
	PaymentRepo   *repositories.PaymentRepository
	Billing       *BillingService
	Applications  *ApplicationService
	WebhookSecret string
	Logger        *slog.Logger
}

// providerStatus maps the provider's wire statuses onto the stored
// enum. Unknown statuses are rejected, not guessed at.
var providerStatus = map[string]string{
	"paid":            models.PaymentSucceeded,
	"succeeded":       models.PaymentSucceeded,
	"success":         models.PaymentSucceeded,
	"pending":         models.PaymentProcessing,
	"processing":      models.PaymentProcessing,
	"in_progress":     models.PaymentProcessing,
	"failed":          models.PaymentFailed,
	"declined":        models.PaymentFailed,
	"refunded":        models.PaymentRefunded,
	"canceled":        models.PaymentCanceled,
	"cancelled":       models.PaymentCanceled,
	"requires_action": models.PaymentRequiresAction,
	"action_required": models.PaymentRequiresAction,
}

// HandleWebhook processes one raw webhook delivery. Replays and
// out-of-order deliveries are safe: the upsert is keyed by provider
// reference and the allocation is recomputed from the full history
// either way.
func (s *ProviderEventService) HandleWebhook(ctx context.Context, body []byte, signature string) (AllocationSnapshot, error) {
	if !pay.VerifySignature(body, signature, s.WebhookSecret) {
		return AllocationSnapshot{}, models.ErrBadWebhookSignature
	}

	var event ProviderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return AllocationSnapshot{}, fmt.Errorf("decode provider event: %w", err)
	}
	return s.HandleEvent(ctx, event)
}

// HandleEvent records a verified provider event and reruns allocation.
func (s *ProviderEventService) HandleEvent(ctx context.Context, event ProviderEvent) (AllocationSnapshot, error) {
	if strings.TrimSpace(event.ProviderRef) == "" {
		return AllocationSnapshot{}, fmt.Errorf("%w: missing provider_ref", models.ErrUnknownProviderEvent)
	}
	status, ok := providerStatus[strings.ToLower(strings.TrimSpace(event.Status))]
	if !ok {
		return AllocationSnapshot{}, fmt.Errorf("%w: status %q", models.ErrUnknownProviderEvent, event.Status)
	}
	appID, err := models.ParseApplicationID(event.ApplicationID)
	if err != nil {
		return AllocationSnapshot{}, fmt.Errorf("%w: bad application_id %q", models.ErrUnknownProviderEvent, event.ApplicationID)
	}
	if event.AmountCents < 0 {
		return AllocationSnapshot{}, fmt.Errorf("%w: negative amount", models.ErrUnknownProviderEvent)
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("event_id", event.EventID, "provider_ref", event.ProviderRef)

	if err := s.upsertPayment(ctx, appID, event, status); err != nil {
		return AllocationSnapshot{}, err
	}
	logger.Info("provider event recorded", "status", status, "amount_cents", event.AmountCents)

	if s.Billing.Cache != nil {
		if err := s.Billing.Cache.Invalidate(ctx, appID); err != nil {
			logger.Warn("allocation cache invalidate failed", "err", err)
		}
	}
	snap, err := s.Billing.Recompute(ctx, appID)
	if err != nil {
		return AllocationSnapshot{}, err
	}

	if s.Applications != nil {
		if _, err := s.Applications.TrySystemMinPaid(ctx, appID); err != nil {
			// A concurrent decision can race the payment; the conflict
			// is resolved by whichever write landed first.
			if !errors.Is(err, models.ErrStateConflict) {
				return AllocationSnapshot{}, err
			}
			logger.Warn("minimum check lost a status race", "err", err)
		}
	}
	return snap, nil
}

func (s *ProviderEventService) upsertPayment(ctx context.Context, appID models.ApplicationID, event ProviderEvent, status string) error {
	_, err := s.PaymentRepo.UpdateStatusByProviderRef(ctx, event.ProviderRef, status)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrPaymentNotFound) {
		return err
	}
	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.PaymentRepo.CreatePayment(ctx, models.Payment{
		ID:            models.NewPaymentID(),
		ApplicationID: appID,
		Kind:          alloc.NormalizeKind(strings.ToLower(strings.TrimSpace(event.Kind))),
		Status:        status,
		AmountCents:   models.Cents(event.AmountCents),
		ProviderRef:   event.ProviderRef,
		CreatedAt:     createdAt,
	})
	return err
}
