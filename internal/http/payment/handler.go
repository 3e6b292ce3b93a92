package payment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webwaka/pesaflow/internal/adapter"
	"github.com/webwaka/pesaflow/internal/orchestrator"
	"github.com/webwaka/pesaflow/internal/transaction"
)

type Handler struct {
	orch *orchestrator.Orchestrator
	txs  *transaction.Service
}

func NewHandler(orch *orchestrator.Orchestrator, txs *transaction.Service) *Handler {
	return &Handler{orch: orch, txs: txs}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

type submitRequest struct {
	AdapterID       string            `json:"adapter_id"`
	ClientReference string            `json:"client_reference"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	Direction       adapter.Direction `json:"direction"`
	Account         string            `json:"account"`
}

// submit answers 201 for a newly created transaction and 200 when the
// (adapter, client reference) pair was seen before. Both carry the
// transaction body, so retrying clients always learn the real state.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.AdapterID == "" || req.ClientReference == "" {
		http.Error(w, "adapter_id and client_reference are required", http.StatusBadRequest)
		return
	}

	tx, created, err := h.orch.Submit(r.Context(), orchestrator.SubmitParams{
		AdapterID:       req.AdapterID,
		ClientReference: req.ClientReference,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Direction:       req.Direction,
		Account:         req.Account,
	})
	if err != nil {
		switch {
		case errors.Is(err, adapter.ErrUnknownAdapter):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, orchestrator.ErrCurrencyNotSupported),
			errors.Is(err, orchestrator.ErrDirectionNotSupported),
			errors.Is(err, transaction.ErrInvalidAmount),
			errors.Is(err, transaction.ErrInvalidCurrency):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			slog.Error("submitting transaction", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := transaction.ListFilter{}

	if s := r.URL.Query().Get("adapter_id"); s != "" {
		filter.AdapterID = new(s)
	}

	if s := r.URL.Query().Get("state"); s != "" {
		filter.State = new(transaction.State(s))
	}

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

	txs, err := h.txs.List(r.Context(), filter)
	if err != nil {
		slog.Error("listing transactions", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.txs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		slog.Error("getting transaction", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
