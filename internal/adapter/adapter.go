package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Taxonomy of adapter failures. The orchestrator maps these onto transaction
// outcomes; they are expected results, not exceptional conditions.
var (
	// ErrUnavailable means the gateway could not be reached or answered with a
	// transient failure. Safe to retry.
	ErrUnavailable = errors.New("adapter unavailable")

	// ErrRejected means the gateway refused the payment outright (invalid
	// account, blocked wallet). Terminal, never retried.
	ErrRejected = errors.New("adapter rejected payment")

	// ErrTimeout means the gateway did not answer in time. The outcome is
	// unknown: the payment may or may not have gone through.
	ErrTimeout = errors.New("adapter call timed out")

	// ErrNotFound means the gateway has no record of the external id.
	ErrNotFound = errors.New("adapter has no record of transaction")

	// ErrMalformedPayload means a callback body could not be parsed or failed
	// signature verification.
	ErrMalformedPayload = errors.New("malformed callback payload")
)

// Direction distinguishes money coming in from money going out.
type Direction string

const (
	DirectionCollection   Direction = "collection"
	DirectionDisbursement Direction = "disbursement"
)

// RemoteState is the gateway's view of a transaction, already normalized by
// the adapter from its native status vocabulary.
type RemoteState string

const (
	RemotePending RemoteState = "pending"
	RemoteSuccess RemoteState = "success"
	RemoteFailed  RemoteState = "failed"
)

// PaymentRequest is the adapter-facing slice of a transaction.
type PaymentRequest struct {
	TransactionID   string
	ClientReference string
	Amount          decimal.Decimal
	Currency        string
	Direction       Direction
	// Account is the counterparty identifier in the gateway's own scheme
	// (MSISDN for mobile money, account number for banks).
	Account string
}

// InitiateResult is the synchronous answer to an Initiate call.
type InitiateResult struct {
	ExternalID string
	State      RemoteState
}

// CallbackNotice is the normalized form of an inbound gateway webhook.
// Exactly one of ExternalID and ClientReference may be empty.
type CallbackNotice struct {
	EventID         string
	ExternalID      string
	ClientReference string
	State           RemoteState
}

// Capability declares what an adapter can do. Registered once, immutable
// afterwards; the orchestrator validates requests against it before any
// gateway call.
type Capability struct {
	Currencies     []string
	Directions     []Direction
	SupportsQuery  bool
	SupportsNotify bool
	// StatusSLA is how long the gateway may legitimately have no record of an
	// initiated transaction before a NotFound answer counts as a lost payment.
	StatusSLA time.Duration
}

// SupportsCurrency reports whether the adapter handles the given ISO 4217 code.
func (c Capability) SupportsCurrency(code string) bool {
	for _, cur := range c.Currencies {
		if cur == code {
			return true
		}
	}

	return false
}

// SupportsDirection reports whether the adapter handles the given direction.
func (c Capability) SupportsDirection(d Direction) bool {
	for _, dir := range c.Directions {
		if dir == d {
			return true
		}
	}

	return false
}

//go:generate mockgen -source=adapter.go -destination=adapter_mock.go -package=adapter
type Adapter interface {
	// ID is the stable registry key, e.g. "mpesa".
	ID() string

	Capability() Capability

	// Initiate submits the payment to the gateway. It may resolve the outcome
	// synchronously (State success/failed) or accept it for asynchronous
	// processing (State pending plus an external id to correlate on).
	Initiate(ctx context.Context, req PaymentRequest) (InitiateResult, error)

	// QueryStatus asks the gateway for its current view of the transaction.
	QueryStatus(ctx context.Context, externalID string) (RemoteState, error)

	// ParseCallback validates and normalizes a raw webhook body.
	ParseCallback(raw []byte) (CallbackNotice, error)
}
