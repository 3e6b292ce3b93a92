// Package reconcile periodically compares open transactions against the
// gateway's view and settles the ones the callbacks missed.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/webwaka/pesaflow/internal/adapter"
	"github.com/webwaka/pesaflow/internal/transaction"
)

var sweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pesaflow_reconcile_sweeps_total",
	Help: "Reconciliation sweeps by outcome",
}, []string{"outcome"})

type Config struct {
	// Interval is the time between sweeps.
	Interval time.Duration
	// Grace is how long after its last transition a transaction is left alone.
	// Keeps the sweeper from racing callbacks that are already in flight.
	Grace time.Duration
	// PendingTimeout is the age past which a transaction still awaiting an
	// outcome is declared expired.
	PendingTimeout time.Duration
}

// Service sweeps the open transaction set. Gateway queries happen before the
// state change is proposed, never under the transaction lock.
type Service struct {
	registry *adapter.Registry
	txs      *transaction.Service
	cfg      Config
	now      func() time.Time
}

func New(registry *adapter.Registry, txs *transaction.Service, cfg Config) *Service {
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}

	if cfg.Grace == 0 {
		cfg.Grace = 30 * time.Second
	}

	if cfg.PendingTimeout == 0 {
		cfg.PendingTimeout = 24 * time.Hour
	}

	return &Service{
		registry: registry,
		txs:      txs,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				slog.Error("reconciliation sweep", "error", err)
				sweepsTotal.WithLabelValues("error").Inc()
			} else {
				sweepsTotal.WithLabelValues("ok").Inc()
			}
		}
	}
}

// Sweep reconciles every open transaction past the grace period. One bad
// transaction never stops the rest of the batch; the errors come back joined.
func (s *Service) Sweep(ctx context.Context) error {
	cutoff := s.now().UTC().Add(-s.cfg.Grace)

	open, err := s.txs.ListOpen(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("listing open transactions: %w", err)
	}

	var errs []error

	for _, tx := range open {
		if err := s.ReconcileOne(ctx, tx); err != nil {
			errs = append(errs, fmt.Errorf("transaction %s: %w", tx.ID, err))
		}
	}

	return errors.Join(errs...)
}

// ReconcileOne settles a single open transaction against the gateway. A
// gateway that cannot be reached leaves the transaction untouched for the
// next sweep.
func (s *Service) ReconcileOne(ctx context.Context, tx *transaction.Transaction) error {
	if tx.State.Terminal() {
		return nil
	}

	// Nothing ever reached the gateway; a retried submission will pick the
	// transaction up again.
	if tx.State == transaction.StateCreated {
		return nil
	}

	now := s.now().UTC()
	if tx.LastTransitionedAt.After(now.Add(-s.cfg.Grace)) {
		return nil
	}

	ad, err := s.registry.Get(tx.AdapterID)
	if err != nil {
		return err
	}

	cap := ad.Capability()

	// Without a gateway receipt or query support there is nothing to ask; the
	// transaction can only age out.
	if tx.ExternalID == "" || !cap.SupportsQuery {
		return s.expireIfStale(ctx, tx, now)
	}

	remote, err := ad.QueryStatus(ctx, tx.ExternalID)

	switch {
	case errors.Is(err, adapter.ErrNotFound):
		// Recently submitted payments may not be visible gateway-side yet.
		// Inside the status SLA that is normal; past it the payment never
		// landed.
		if now.Sub(tx.LastTransitionedAt) <= cap.StatusSLA {
			return nil
		}

		return s.apply(ctx, tx, transaction.StateExpired)

	case errors.Is(err, adapter.ErrUnavailable), errors.Is(err, adapter.ErrTimeout):
		slog.Warn("gateway unreachable during reconciliation",
			"transaction_id", tx.ID,
			"adapter", tx.AdapterID,
			"error", err,
		)

		return nil

	case err != nil:
		return fmt.Errorf("querying status: %w", err)
	}

	if remote == adapter.RemotePending {
		return s.expireIfStale(ctx, tx, now)
	}

	state, ok := transaction.StateFromRemote(string(remote))
	if !ok {
		return fmt.Errorf("adapter %s returned unknown state %q", tx.AdapterID, remote)
	}

	return s.apply(ctx, tx, state)
}

func (s *Service) expireIfStale(ctx context.Context, tx *transaction.Transaction, now time.Time) error {
	if now.Sub(tx.LastTransitionedAt) <= s.cfg.PendingTimeout {
		return nil
	}

	slog.Info("expiring stale transaction",
		"transaction_id", tx.ID,
		"adapter", tx.AdapterID,
		"state", tx.State,
		"age", now.Sub(tx.LastTransitionedAt),
	)

	return s.apply(ctx, tx, transaction.StateExpired)
}

func (s *Service) apply(ctx context.Context, tx *transaction.Transaction, state transaction.State) error {
	_, _, err := s.txs.Apply(ctx, tx.ID, transaction.Proposal{
		State:  state,
		Source: transaction.SourceReconciliation,
	})

	return err
}
