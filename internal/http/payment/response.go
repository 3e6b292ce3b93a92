package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webwaka/pesaflow/internal/adapter"
	"github.com/webwaka/pesaflow/internal/transaction"
)

type transactionResponse struct {
	ID                 uuid.UUID         `json:"id"`
	AdapterID          string            `json:"adapter_id"`
	ClientReference    string            `json:"client_reference"`
	ExternalID         string            `json:"external_id,omitempty"`
	Amount             decimal.Decimal   `json:"amount"`
	Currency           string            `json:"currency"`
	Direction          adapter.Direction `json:"direction"`
	Account            string            `json:"account"`
	State              transaction.State `json:"state"`
	CreatedAt          time.Time         `json:"created_at"`
	LastTransitionedAt time.Time         `json:"last_transitioned_at"`
	TerminalAt         *time.Time        `json:"terminal_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:                 tx.ID,
		AdapterID:          tx.AdapterID,
		ClientReference:    tx.ClientReference,
		ExternalID:         tx.ExternalID,
		Amount:             tx.Amount,
		Currency:           tx.Currency,
		Direction:          tx.Direction,
		Account:            tx.Account,
		State:              tx.State,
		CreatedAt:          tx.CreatedAt,
		LastTransitionedAt: tx.LastTransitionedAt,
		TerminalAt:         tx.TerminalAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
