package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/repositories"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/services"
)

// SignatureHeader carries the provider's HMAC over the raw body.
const SignatureHeader = "X-Provider-Signature"

type PaymentHandler struct {
	Events          *services.ProviderEventService
	PaymentRepo     *repositories.PaymentRepository
	ObligationRepo  *repositories.ObligationRepository
	ApplicationRepo *repositories.ApplicationRepository
	Logger          *slog.Logger
}

// ProviderWebhook ingests a payment provider callback. The body is
// read raw because the signature covers the exact bytes sent.
func (h *PaymentHandler) ProviderWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "unable to read body", http.StatusBadRequest)
		return
	}
	snap, err := h.Events.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader))
	if err != nil {
		h.Logger.Warn("webhook rejected", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := appIDParam(r)
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	payments, err := h.PaymentRepo.ListByApplication(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) ListObligations(w http.ResponseWriter, r *http.Request) {
	id, err := appIDParam(r)
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	app, err := h.ApplicationRepo.GetApplicationByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	obligations, err := h.ObligationRepo.ListByApplication(r.Context(), id, app.PlanVersion)
	if err != nil {
		writeError(w, err)
		return
	}
	if obligations == nil {
		obligations = []models.Obligation{}
	}
	writeJSON(w, http.StatusOK, obligations)
}
