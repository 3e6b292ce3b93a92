package discrepancy

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/webwaka/pesaflow/internal/transaction"
)

type Handler struct {
	txs *transaction.Service
}

func NewHandler(txs *transaction.Service) *Handler {
	return &Handler{txs: txs}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/{id}/review", h.review)
}

type discrepancyResponse struct {
	ID            int64                  `json:"id"`
	TransactionID uuid.UUID              `json:"transaction_id"`
	LocalState    transaction.State      `json:"local_state"`
	RemoteState   transaction.State      `json:"remote_state"`
	Source        transaction.Source     `json:"source"`
	DetectedAt    time.Time              `json:"detected_at"`
	Resolution    transaction.Resolution `json:"resolution"`
	ResolvedAt    *time.Time             `json:"resolved_at,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := transaction.DiscrepancyFilter{}

	if s := r.URL.Query().Get("transaction_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid transaction_id", http.StatusBadRequest)
			return
		}

		filter.TransactionID = new(id)
	}

	if r.URL.Query().Get("unresolved") == "true" {
		filter.Unresolved = true
	}

	ds, err := h.txs.Discrepancies(r.Context(), filter)
	if err != nil {
		slog.Error("listing discrepancies", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := make([]discrepancyResponse, len(ds))
	for i, d := range ds {
		resp[i] = discrepancyResponse{
			ID:            d.ID,
			TransactionID: d.TransactionID,
			LocalState:    d.LocalState,
			RemoteState:   d.RemoteState,
			Source:        d.Source,
			DetectedAt:    d.DetectedAt,
			Resolution:    d.Resolution,
			ResolvedAt:    d.ResolvedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.txs.ReviewDiscrepancy(r.Context(), id); err != nil {
		slog.Error("reviewing discrepancy", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
