// Package callback ingests gateway webhooks. The contract with gateways is
// simple: a 200 means "received, stop retrying", whatever we thought of the
// payload. Anything else invites a redelivery storm.
package callback

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webwaka/pesaflow/internal/adapter"
	"github.com/webwaka/pesaflow/internal/orchestrator"
)

// maxBodyBytes bounds webhook payload size.
const maxBodyBytes = 1 << 20

type Handler struct {
	orch *orchestrator.Orchestrator
}

func NewHandler(orch *orchestrator.Orchestrator) *Handler {
	return &Handler{orch: orch}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/{adapterID}", h.receive)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	adapterID := chi.URLParam(r, "adapterID")

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	if err := h.orch.HandleCallback(r.Context(), adapterID, raw); err != nil {
		if errors.Is(err, adapter.ErrUnknownAdapter) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		// Infrastructure trouble: let the gateway retry later.
		slog.Error("handling callback", "adapter", adapterID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusOK)
}
