package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/services"
)

type NotifyHandler struct {
	Service *services.NotificationService
	Logger  *slog.Logger
}

func (h *NotifyHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.Service.RegisterToken(r.Context(), requestUserID(r), req.Token); err != nil {
		h.Logger.Error("register token failed", "err", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *NotifyHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(":token")
	if token == "" {
		http.Error(w, "token required", http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteToken(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
