package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/webwaka/pesaflow/internal/analytics"
)

type Handler struct {
	svc *analytics.Service
}

func NewHandler(svc *analytics.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/overview", h.overview)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	filter := analytics.Filter{}

	if s := r.URL.Query().Get("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			filter.Since = new(t)
		}
	}

	if s := r.URL.Query().Get("until"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			filter.Until = new(t)
		}
	}

	ov, err := h.svc.Overview(r.Context(), filter)
	if err != nil {
		slog.Error("building analytics overview", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(ov); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
