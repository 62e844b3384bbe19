package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/pay"
)

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	s := &ProviderEventService{WebhookSecret: "secret"}
	body := []byte(`{"event_id":"evt_1"}`)

	_, err := s.HandleWebhook(context.Background(), body, "deadbeef")
	if !errors.Is(err, models.ErrBadWebhookSignature) {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestHandleWebhookRejectsUnknownStatus(t *testing.T) {
	s := &ProviderEventService{WebhookSecret: "secret"}
	body := []byte(`{"event_id":"evt_1","provider_ref":"pi_1","application_id":"` +
		models.NewApplicationID().String() + `","kind":"upfront","status":"exploded","amount_cents":5000}`)

	_, err := s.HandleWebhook(context.Background(), body, pay.Sign(body, "secret"))
	if !errors.Is(err, models.ErrUnknownProviderEvent) {
		t.Fatalf("expected unknown event error, got %v", err)
	}
}

func TestHandleEventValidation(t *testing.T) {
	s := &ProviderEventService{}
	appID := models.NewApplicationID().String()

	cases := []struct {
		name  string
		event ProviderEvent
	}{
		{"missing provider ref", ProviderEvent{ApplicationID: appID, Status: "paid", AmountCents: 100}},
		{"bad application id", ProviderEvent{ProviderRef: "pi_1", ApplicationID: "nope", Status: "paid", AmountCents: 100}},
		{"negative amount", ProviderEvent{ProviderRef: "pi_1", ApplicationID: appID, Status: "paid", AmountCents: -1}},
		{"unknown status", ProviderEvent{ProviderRef: "pi_1", ApplicationID: appID, Status: "maybe", AmountCents: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.HandleEvent(context.Background(), tc.event)
			if !errors.Is(err, models.ErrUnknownProviderEvent) {
				t.Fatalf("expected unknown event error, got %v", err)
			}
		})
	}
}

func TestProviderStatusVocabulary(t *testing.T) {
	expect := map[string]string{
		"paid":       models.PaymentSucceeded,
		"success":    models.PaymentSucceeded,
		"pending":    models.PaymentProcessing,
		"processing": models.PaymentProcessing,
		"declined":   models.PaymentFailed,
		"cancelled":  models.PaymentCanceled,
	}
	for wire, want := range expect {
		if got := providerStatus[wire]; got != want {
			t.Errorf("status %q: got %q, want %q", wire, got, want)
		}
	}
}
