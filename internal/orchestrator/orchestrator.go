package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/webwaka/pesaflow/internal/adapter"
	"github.com/webwaka/pesaflow/internal/transaction"
)

var (
	ErrCurrencyNotSupported  = errors.New("adapter does not support currency")
	ErrDirectionNotSupported = errors.New("adapter does not support direction")
)

// TimeoutPolicy decides what happens when an initiate call times out and the
// outcome is unknown.
type TimeoutPolicy string

const (
	// TimeoutPolicyReconcile leaves the transaction submitted and lets
	// reconciliation settle it. Slower feedback, no false negatives.
	TimeoutPolicyReconcile TimeoutPolicy = "reconcile"
	// TimeoutPolicyFailFast marks the transaction failed immediately and
	// relies on reconciliation to auto-correct if the gateway actually
	// succeeded.
	TimeoutPolicyFailFast TimeoutPolicy = "fail-fast"
)

type Config struct {
	// InitiateTimeout bounds a single initiate attempt.
	InitiateTimeout time.Duration
	// MaxAttempts is the total number of initiate attempts when the gateway
	// is unavailable.
	MaxAttempts uint64
	// InitialBackoff seeds the exponential retry interval. Zero means the
	// backoff library default.
	InitialBackoff time.Duration
	TimeoutPolicy  TimeoutPolicy
}

// Orchestrator is the entry point the API layer talks to. It composes the
// adapter registry, the idempotent ledger and the state machine; it is the
// only place gateway calls are made, and always outside the transaction lock.
type Orchestrator struct {
	registry *adapter.Registry
	txs      *transaction.Service
	cfg      Config
}

func New(registry *adapter.Registry, txs *transaction.Service, cfg Config) *Orchestrator {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}

	if cfg.InitiateTimeout == 0 {
		cfg.InitiateTimeout = 30 * time.Second
	}

	if cfg.TimeoutPolicy == "" {
		cfg.TimeoutPolicy = TimeoutPolicyReconcile
	}

	return &Orchestrator{registry: registry, txs: txs, cfg: cfg}
}

type SubmitParams struct {
	AdapterID       string
	ClientReference string
	Amount          decimal.Decimal
	Currency        string
	Direction       adapter.Direction
	Account         string
}

// Submit drives a payment request to its first settled or parked state. The
// returned bool reports whether this call created the transaction;
// resubmitting the same (adapter, client reference) pair returns the existing
// transaction without touching the gateway again.
func (o *Orchestrator) Submit(ctx context.Context, params SubmitParams) (*transaction.Transaction, bool, error) {
	ad, err := o.registry.Get(params.AdapterID)
	if err != nil {
		return nil, false, err
	}

	cap := ad.Capability()
	if !cap.SupportsCurrency(params.Currency) {
		return nil, false, fmt.Errorf("%w: %s does not take %s", ErrCurrencyNotSupported, params.AdapterID, params.Currency)
	}

	if !cap.SupportsDirection(params.Direction) {
		return nil, false, fmt.Errorf("%w: %s does not do %s", ErrDirectionNotSupported, params.AdapterID, params.Direction)
	}

	tx, created, err := o.txs.Create(ctx, transaction.CreateParams{
		AdapterID:       params.AdapterID,
		ClientReference: params.ClientReference,
		Amount:          params.Amount,
		Currency:        params.Currency,
		Direction:       params.Direction,
		Account:         params.Account,
	})
	if err != nil {
		return nil, false, err
	}

	// Duplicate request: hand back the winner's transaction as-is, except
	// when it is still stuck in Created (an earlier run died before reaching
	// the gateway), which is safe to resume.
	if !created && tx.State != transaction.StateCreated {
		return tx, false, nil
	}

	tx, transitioned, err := o.txs.Apply(ctx, tx.ID, transaction.Proposal{
		State:  transaction.StateSubmitted,
		Source: transaction.SourceSubmit,
	})
	if err != nil {
		return nil, created, err
	}

	// Whoever moved the transaction out of Created owns the gateway call.
	// Losing that race means another submitter is already initiating; hand
	// back the current snapshot instead of calling the gateway twice.
	if !transitioned {
		return tx, created, nil
	}

	res, err := o.initiate(ctx, ad, tx)
	if err != nil {
		tx, err = o.settleInitiateFailure(ctx, tx, err)
		return tx, created, err
	}

	state, ok := transaction.StateFromRemote(string(res.State))
	if !ok {
		return nil, created, fmt.Errorf("adapter %s returned unknown state %q", params.AdapterID, res.State)
	}

	tx, _, err = o.txs.Apply(ctx, tx.ID, transaction.Proposal{
		State:      state,
		ExternalID: res.ExternalID,
		Source:     transaction.SourceSubmit,
	})

	return tx, created, err
}

// initiate runs the gateway call with exponential backoff on transient
// failures. Everything else aborts the retry loop immediately.
func (o *Orchestrator) initiate(ctx context.Context, ad adapter.Adapter, tx *transaction.Transaction) (adapter.InitiateResult, error) {
	req := adapter.PaymentRequest{
		TransactionID:   tx.ID.String(),
		ClientReference: tx.ClientReference,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		Direction:       tx.Direction,
		Account:         tx.Account,
	}

	op := func() (adapter.InitiateResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.InitiateTimeout)
		defer cancel()

		res, err := ad.Initiate(callCtx, req)
		if err != nil {
			if errors.Is(err, adapter.ErrUnavailable) {
				return res, err
			}

			return res, backoff.Permanent(err)
		}

		return res, nil
	}

	bo := backoff.NewExponentialBackOff()
	if o.cfg.InitialBackoff > 0 {
		bo.InitialInterval = o.cfg.InitialBackoff
	}

	return backoff.RetryWithData(op, backoff.WithContext(backoff.WithMaxRetries(bo, o.cfg.MaxAttempts-1), ctx))
}

// settleInitiateFailure maps an initiate failure onto a transaction outcome.
// Expected gateway failures become state, never errors to the caller.
func (o *Orchestrator) settleInitiateFailure(ctx context.Context, tx *transaction.Transaction, initErr error) (*transaction.Transaction, error) {
	switch {
	case errors.Is(initErr, adapter.ErrRejected):
		tx, _, err := o.txs.Apply(ctx, tx.ID, transaction.Proposal{
			State:  transaction.StateRejected,
			Source: transaction.SourceSubmit,
		})

		return tx, err

	case errors.Is(initErr, adapter.ErrTimeout):
		if o.cfg.TimeoutPolicy == TimeoutPolicyFailFast {
			tx, _, err := o.txs.Apply(ctx, tx.ID, transaction.Proposal{
				State:  transaction.StateFailed,
				Source: transaction.SourceSubmit,
			})

			return tx, err
		}

		// Ambiguous outcome: the payment may have gone through. Leave it
		// submitted; reconciliation settles it either way.
		slog.Warn("initiate timed out, leaving for reconciliation",
			"transaction_id", tx.ID,
			"adapter", tx.AdapterID,
		)

		return tx, nil

	case errors.Is(initErr, adapter.ErrUnavailable):
		slog.Warn("gateway unavailable, retries exhausted",
			"transaction_id", tx.ID,
			"adapter", tx.AdapterID,
			"error", initErr,
		)

		tx, _, err := o.txs.Apply(ctx, tx.ID, transaction.Proposal{
			State:  transaction.StateFailed,
			Source: transaction.SourceSubmit,
		})

		return tx, err
	}

	// Not part of the adapter taxonomy: infrastructure problem, surface it.
	return nil, fmt.Errorf("initiating payment: %w", initErr)
}

// HandleCallback ingests a raw gateway webhook. Business-level problems
// (malformed payload, unknown transaction, duplicate delivery, conflicting
// report) are logged and swallowed so the gateway is never tempted to retry
// a poison message; only infrastructure failures return an error.
func (o *Orchestrator) HandleCallback(ctx context.Context, adapterID string, raw []byte) error {
	ad, err := o.registry.Get(adapterID)
	if err != nil {
		return err
	}

	notice, err := ad.ParseCallback(raw)
	if err != nil {
		slog.Warn("dropping malformed callback", "adapter", adapterID, "error", err)
		return nil
	}

	tx, err := o.resolve(ctx, adapterID, notice)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			slog.Warn("dropping unresolvable callback",
				"adapter", adapterID,
				"event_id", notice.EventID,
				"external_id", notice.ExternalID,
			)

			return nil
		}

		return err
	}

	first, err := o.txs.RecordEvent(ctx, &transaction.CallbackEvent{
		AdapterID:     adapterID,
		EventID:       notice.EventID,
		TransactionID: tx.ID,
		RawPayload:    raw,
	})
	if err != nil {
		return fmt.Errorf("recording callback event: %w", err)
	}

	if !first {
		stored, err := o.txs.GetEvent(ctx, adapterID, notice.EventID)
		if err != nil {
			return fmt.Errorf("loading callback event: %w", err)
		}

		if stored.Applied {
			slog.Debug("ignoring redelivered callback", "adapter", adapterID, "event_id", notice.EventID)
			return nil
		}

		// Recorded but never applied: a store failure interrupted the first
		// delivery after the insert. The redelivery is the retry; dropping it
		// here would strand the event on a callback-only adapter.
		slog.Info("reapplying recorded callback",
			"adapter", adapterID,
			"event_id", notice.EventID,
		)
	}

	state, ok := transaction.StateFromRemote(string(notice.State))
	if !ok {
		slog.Warn("dropping callback with unknown state", "adapter", adapterID, "state", notice.State)
		return nil
	}

	if _, _, err := o.txs.Apply(ctx, tx.ID, transaction.Proposal{
		State:      state,
		ExternalID: notice.ExternalID,
		Source:     transaction.SourceCallback,
	}); err != nil {
		return err
	}

	return o.txs.MarkEventApplied(ctx, adapterID, notice.EventID)
}

func (o *Orchestrator) resolve(ctx context.Context, adapterID string, notice adapter.CallbackNotice) (*transaction.Transaction, error) {
	if notice.ExternalID != "" {
		tx, err := o.txs.GetByExternalID(ctx, adapterID, notice.ExternalID)
		if err == nil || !errors.Is(err, transaction.ErrNotFound) {
			return tx, err
		}
	}

	if notice.ClientReference != "" {
		return o.txs.GetByReference(ctx, adapterID, notice.ClientReference)
	}

	return nil, transaction.ErrNotFound
}
