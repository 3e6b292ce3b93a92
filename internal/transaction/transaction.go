package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webwaka/pesaflow/internal/adapter"
)

var (
	ErrNotFound = errors.New("transaction not found")

	// ErrIllegalTransition means a proposed state change violates the machine
	// rules. Callers processing gateway reports convert it into a discrepancy
	// record instead of surfacing it.
	ErrIllegalTransition = errors.New("illegal state transition")
)

// State is the lifecycle state of a payment transaction.
type State string

const (
	// StateCreated: the row exists, the gateway has not been called yet.
	StateCreated State = "created"
	// StateSubmitted: the initiate call is in flight or its outcome unknown.
	StateSubmitted State = "submitted"
	// StatePending: the gateway accepted and will resolve asynchronously.
	StatePending State = "pending"
	// StateRejected: the gateway synchronously refused. Terminal.
	StateRejected State = "rejected"
	// StateSuccess: money moved. Terminal.
	StateSuccess State = "success"
	// StateFailed: money definitively did not move. Terminal.
	StateFailed State = "failed"
	// StateExpired: no resolution arrived within the allowed window. Terminal,
	// except that one late authoritative report may still settle it.
	StateExpired State = "expired"
)

// Terminal reports whether no further transition is expected from s.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateFailed, StateRejected, StateExpired:
		return true
	}

	return false
}

// Transaction is the ledger's record of one payment moving through a gateway.
// Rows are never deleted; they only advance to a terminal state. All mutation
// goes through Service.Apply.
type Transaction struct {
	ID              uuid.UUID
	AdapterID       string
	ClientReference string
	// ExternalID is the gateway-assigned identifier, empty until the gateway
	// has answered the initiate call.
	ExternalID string
	Amount     decimal.Decimal
	Currency   string
	Direction  adapter.Direction
	Account    string
	State      State

	CreatedAt          time.Time
	LastTransitionedAt time.Time
	TerminalAt         *time.Time
}

// CallbackEvent records one inbound gateway notification. The unique
// (adapter_id, event_id) pair is what makes at-least-once webhook delivery
// safe: the first insert wins, redeliveries are no-ops.
type CallbackEvent struct {
	AdapterID     string
	EventID       string
	TransactionID uuid.UUID
	RawPayload    []byte
	ReceivedAt    time.Time
	Applied       bool
}

// Source identifies which mutation path proposed a transition.
type Source string

const (
	SourceSubmit         Source = "submit"
	SourceCallback       Source = "callback"
	SourceReconciliation Source = "reconciliation"
)

// Resolution classifies how a discrepancy was handled.
type Resolution string

const (
	// ResolutionAutoCorrected: the local record was brought in line with the
	// gateway report (the Expired late-settlement path).
	ResolutionAutoCorrected Resolution = "auto_corrected"
	// ResolutionFlagged: the proposal conflicted with a sticky terminal state
	// and was recorded for a human to look at.
	ResolutionFlagged Resolution = "flagged_for_review"
	// ResolutionReviewed: an operator has looked at a flagged discrepancy.
	ResolutionReviewed Resolution = "reviewed"
)

// Discrepancy records a mismatch between local state and a gateway report
// that could not be applied. Written only by the transition path; read-only
// to everything else.
type Discrepancy struct {
	ID            int64
	TransactionID uuid.UUID
	LocalState    State
	RemoteState   State
	Source        Source
	DetectedAt    time.Time
	Resolution    Resolution
	ResolvedAt    *time.Time
}

// ListFilter narrows List results.
type ListFilter struct {
	AdapterID *string
	State     *State
	Since     *time.Time
	Until     *time.Time
}

// DiscrepancyFilter narrows ListDiscrepancies results.
type DiscrepancyFilter struct {
	TransactionID *uuid.UUID
	Unresolved    bool
}
