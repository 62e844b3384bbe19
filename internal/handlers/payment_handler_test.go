package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/pay"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/services"
)

func newWebhookHandler(secret string) *PaymentHandler {
	return &PaymentHandler{
		Events: &services.ProviderEventService{WebhookSecret: secret},
		Logger: slog.Default(),
	}
}

func TestProviderWebhook_BadSignatureIs401(t *testing.T) {
	h := newWebhookHandler("secret")
	body := []byte(`{"event_id":"evt_1"}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, "deadbeef")
	rr := httptest.NewRecorder()

	h.ProviderWebhook(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestProviderWebhook_UnknownStatusIs400(t *testing.T) {
	h := newWebhookHandler("secret")
	body := []byte(`{"event_id":"evt_1","provider_ref":"pi_1","application_id":"` +
		models.NewApplicationID().String() + `","kind":"upfront","status":"unheard_of","amount_cents":100}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, pay.Sign(body, "secret"))
	rr := httptest.NewRecorder()

	h.ProviderWebhook(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
