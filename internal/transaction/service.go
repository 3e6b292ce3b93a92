package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/webwaka/pesaflow/internal/adapter"
)

var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidCurrency = errors.New("invalid currency code")
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pesaflow_transitions_total",
		Help: "Applied state transitions",
	}, []string{"adapter", "state", "source"})

	discrepanciesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pesaflow_discrepancies_total",
		Help: "Recorded state discrepancies",
	}, []string{"adapter", "source"})
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	// AcquireOrGet inserts the transaction unless one already exists for its
	// (adapter_id, client_reference) pair. It returns the surviving row and
	// whether this call created it. Under concurrent callers at most one row
	// is ever created; losers get the winner's row back.
	AcquireOrGet(ctx context.Context, tx *Transaction) (*Transaction, bool, error)

	Get(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetByReference(ctx context.Context, adapterID, clientReference string) (*Transaction, error)
	GetByExternalID(ctx context.Context, adapterID, externalID string) (*Transaction, error)
	UpdateState(ctx context.Context, tx *Transaction) error
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	// ListOpen returns non-terminal transactions whose last transition is at
	// or before the cutoff.
	ListOpen(ctx context.Context, cutoff time.Time) ([]*Transaction, error)

	// InsertEvent stores a callback event. It returns false without error when
	// the (adapter_id, event_id) pair was already recorded.
	InsertEvent(ctx context.Context, ev *CallbackEvent) (bool, error)

	// GetEvent loads a stored callback event by its (adapter_id, event_id)
	// key, returning ErrNotFound when it was never recorded.
	GetEvent(ctx context.Context, adapterID, eventID string) (*CallbackEvent, error)
	MarkEventApplied(ctx context.Context, adapterID, eventID string) error

	RecordDiscrepancy(ctx context.Context, d *Discrepancy) error
	ListDiscrepancies(ctx context.Context, filter DiscrepancyFilter) ([]*Discrepancy, error)
	ResolveDiscrepancy(ctx context.Context, id int64, res Resolution) error
}

// Service is the single write path to the transaction ledger. Every state
// change funnels through Apply, which serializes per-transaction work with an
// in-process keyed lock held only across the read-decide-write window. Gateway
// I/O happens in callers, outside the lock.
type Service struct {
	repo  Repository
	locks *keyedMutex
	now   func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

type CreateParams struct {
	AdapterID       string
	ClientReference string
	Amount          decimal.Decimal
	Currency        string
	Direction       adapter.Direction
	Account         string
}

// Create validates the request and acquires-or-returns the transaction row for
// its idempotency key. The returned bool is true when this call created the
// row.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, bool, error) {
	if !params.Amount.IsPositive() {
		return nil, false, fmt.Errorf("%w: %s", ErrInvalidAmount, params.Amount)
	}

	if _, err := currency.ParseISO(params.Currency); err != nil {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidCurrency, params.Currency)
	}

	now := s.now().UTC()
	tx := &Transaction{
		ID:                 uuid.New(),
		AdapterID:          params.AdapterID,
		ClientReference:    params.ClientReference,
		Amount:             params.Amount,
		Currency:           params.Currency,
		Direction:          params.Direction,
		Account:            params.Account,
		State:              StateCreated,
		CreatedAt:          now,
		LastTransitionedAt: now,
	}

	existing, created, err := s.repo.AcquireOrGet(ctx, tx)
	if err != nil {
		return nil, false, fmt.Errorf("acquiring transaction: %w", err)
	}

	return existing, created, nil
}

// Proposal is a requested state change submitted to Apply.
type Proposal struct {
	State State
	// ExternalID, when non-empty, is recorded on the transaction if it does
	// not have one yet.
	ExternalID string
	Source     Source
}

// Apply loads the transaction, validates the proposal against the state
// machine and persists the result, all under the per-transaction lock. The
// returned bool reports whether the state actually changed; a false with nil
// error means the proposal was a no-op or was recorded as a discrepancy.
//
// Illegal proposals from gateway reports (callbacks, reconciliation) are not
// errors: they are recorded as discrepancies and the stored state stands.
// Illegal proposals from the submit path indicate a programming error and are
// returned as ErrIllegalTransition.
func (s *Service) Apply(ctx context.Context, id uuid.UUID, p Proposal) (*Transaction, bool, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	tx, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("loading transaction: %w", err)
	}

	noop, terr := Next(tx.State, p.State)
	if terr != nil {
		if p.Source == SourceSubmit {
			return tx, false, terr
		}

		slog.Warn("rejected state transition",
			"transaction_id", id,
			"local_state", tx.State,
			"proposed_state", p.State,
			"source", p.Source,
		)

		d := &Discrepancy{
			TransactionID: id,
			LocalState:    tx.State,
			RemoteState:   p.State,
			Source:        p.Source,
			DetectedAt:    s.now().UTC(),
			Resolution:    ResolutionFlagged,
		}
		if err := s.repo.RecordDiscrepancy(ctx, d); err != nil {
			return nil, false, fmt.Errorf("recording discrepancy: %w", err)
		}

		discrepanciesTotal.WithLabelValues(tx.AdapterID, string(p.Source)).Inc()

		return tx, false, nil
	}

	if noop {
		// Same state again: idempotent re-application. Still adopt the
		// external id if we never learned it.
		if tx.ExternalID == "" && p.ExternalID != "" {
			tx.ExternalID = p.ExternalID
			if err := s.repo.UpdateState(ctx, tx); err != nil {
				return nil, false, fmt.Errorf("updating transaction: %w", err)
			}
		}

		return tx, false, nil
	}

	lateSettlement := tx.State == StateExpired

	prior := tx.State
	now := s.now().UTC()
	tx.State = p.State
	tx.LastTransitionedAt = now

	if p.State.Terminal() {
		tx.TerminalAt = &now
	}

	if tx.ExternalID == "" && p.ExternalID != "" {
		tx.ExternalID = p.ExternalID
	}

	if err := s.repo.UpdateState(ctx, tx); err != nil {
		return nil, false, fmt.Errorf("updating transaction: %w", err)
	}

	transitionsTotal.WithLabelValues(tx.AdapterID, string(p.State), string(p.Source)).Inc()

	if lateSettlement {
		// A report settled an expired transaction. Legal, but it means the
		// expiry itself was drift, so leave an auto-corrected audit record.
		d := &Discrepancy{
			TransactionID: id,
			LocalState:    prior,
			RemoteState:   p.State,
			Source:        p.Source,
			DetectedAt:    now,
			Resolution:    ResolutionAutoCorrected,
			ResolvedAt:    &now,
		}
		if err := s.repo.RecordDiscrepancy(ctx, d); err != nil {
			return nil, false, fmt.Errorf("recording discrepancy: %w", err)
		}
	}

	return tx, true, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByReference(ctx context.Context, adapterID, clientReference string) (*Transaction, error) {
	return s.repo.GetByReference(ctx, adapterID, clientReference)
}

func (s *Service) GetByExternalID(ctx context.Context, adapterID, externalID string) (*Transaction, error) {
	return s.repo.GetByExternalID(ctx, adapterID, externalID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) ListOpen(ctx context.Context, cutoff time.Time) ([]*Transaction, error) {
	return s.repo.ListOpen(ctx, cutoff)
}

// RecordEvent stores a callback event, returning false when the same
// (adapter_id, event_id) has been seen before.
func (s *Service) RecordEvent(ctx context.Context, ev *CallbackEvent) (bool, error) {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = s.now().UTC()
	}

	return s.repo.InsertEvent(ctx, ev)
}

// GetEvent loads a recorded callback event by its dedup key.
func (s *Service) GetEvent(ctx context.Context, adapterID, eventID string) (*CallbackEvent, error) {
	return s.repo.GetEvent(ctx, adapterID, eventID)
}

// MarkEventApplied flags the event after its transition attempt completed,
// whether it changed state or was correctly rejected as a duplicate.
func (s *Service) MarkEventApplied(ctx context.Context, adapterID, eventID string) error {
	return s.repo.MarkEventApplied(ctx, adapterID, eventID)
}

func (s *Service) Discrepancies(ctx context.Context, filter DiscrepancyFilter) ([]*Discrepancy, error) {
	return s.repo.ListDiscrepancies(ctx, filter)
}

// ReviewDiscrepancy marks a flagged discrepancy as looked at by an operator.
func (s *Service) ReviewDiscrepancy(ctx context.Context, id int64) error {
	return s.repo.ResolveDiscrepancy(ctx, id, ResolutionReviewed)
}
