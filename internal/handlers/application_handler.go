package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/services"
)

type ApplicationHandler struct {
	Service *services.ApplicationService
	Billing *services.BillingService
	Logger  *slog.Logger
}

// claims read from the request context; the JWT middleware puts them
// there.
func requestUserID(r *http.Request) int {
	id, _ := r.Context().Value("user_id").(int)
	return id
}

func requestRole(r *http.Request) string {
	role, _ := r.Context().Value("role").(string)
	return role
}

func appIDParam(r *http.Request) (models.ApplicationID, error) {
	return models.ParseApplicationID(r.URL.Query().Get(":id"))
}

// writeError maps domain errors onto HTTP statuses. Conflicts return
// 409 so clients re-read and retry their decision.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrApplicationNotFound),
		errors.Is(err, models.ErrPaymentNotFound),
		errors.Is(err, models.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrStateConflict),
		errors.Is(err, models.ErrObligationsExist):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrInvalidLeaseTerms),
		errors.Is(err, models.ErrUnknownProviderEvent):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrBadWebhookSignature):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}

func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LandlordUserID int `json:"landlord_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	app, err := h.Service.CreateApplication(r.Context(), requestUserID(r), req.LandlordUserID)
	if err != nil {
		h.Logger.Error("create application failed", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := appIDParam(r)
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	app, err := h.Service.GetApplication(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := appIDParam(r)
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	entries, err := h.Service.GetTimeline(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// decision wraps the one-shot lifecycle actions that share a shape:
// parse the id, run the action as the caller's role, return the
// application with its new status.
func (h *ApplicationHandler) decision(w http.ResponseWriter, r *http.Request,
	action func(r *http.Request, id models.ApplicationID, role string) (models.Application, error)) {
	id, err := appIDParam(r)
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	app, err := action(r, id, requestRole(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, func(r *http.Request, id models.ApplicationID, role string) (models.Application, error) {
		return h.Service.Submit(r.Context(), id, role)
	})
}

func (h *ApplicationHandler) Screen(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, func(r *http.Request, id models.ApplicationID, role string) (models.Application, error) {
		return h.Service.PreliminaryAccept(r.Context(), id, role)
	})
}

func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, func(r *http.Request, id models.ApplicationID, role string) (models.Application, error) {
		return h.Service.Approve(r.Context(), id, role)
	})
}

func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, func(r *http.Request, id models.ApplicationID, role string) (models.Application, error) {
		return h.Service.Reject(r.Context(), id, role)
	})
}

func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, func(r *http.Request, id models.ApplicationID, role string) (models.Application, error) {
		return h.Service.Withdraw(r.Context(), id, role)
	})
}

func (h *ApplicationHandler) Countersign(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, func(r *http.Request, id models.ApplicationID, role string) (models.Application, error) {
		return h.Service.Countersign(r.Context(), id, role)
	})
}

func (h *ApplicationHandler) Occupy(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, func(r *http.Request, id models.ApplicationID, role string) (models.Application, error) {
		return h.Service.Occupy(r.Context(), id, role)
	})
}

func (h *ApplicationHandler) SetTerms(w http.ResponseWriter, r *http.Request) {
	id, err := appIDParam(r)
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	var terms models.LeaseTerms
	if err := json.NewDecoder(r.Body).Decode(&terms); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	app, err := h.Service.SetTerms(r.Context(), id, requestRole(r), terms)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	id, err := appIDParam(r)
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	snap, err := h.Billing.Snapshot(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *ApplicationHandler) GetDepositView(w http.ResponseWriter, r *http.Request) {
	id, err := appIDParam(r)
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	view, err := h.Billing.DepositView(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
