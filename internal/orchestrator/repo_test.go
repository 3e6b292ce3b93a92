package orchestrator_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/webwaka/pesaflow/internal/transaction"
)

// memRepo is an in-memory transaction.Repository with the same uniqueness
// guarantees as the SQL store. The multi-step scenarios need real state
// carried between calls, which per-call mock expectations cannot express.
type memRepo struct {
	mu            sync.Mutex
	byID          map[uuid.UUID]*transaction.Transaction
	byRef         map[string]uuid.UUID
	events        map[string]*transaction.CallbackEvent
	discrepancies []*transaction.Discrepancy
}

func newMemRepo() *memRepo {
	return &memRepo{
		byID:   make(map[uuid.UUID]*transaction.Transaction),
		byRef:  make(map[string]uuid.UUID),
		events: make(map[string]*transaction.CallbackEvent),
	}
}

func refKey(adapterID, clientReference string) string { return adapterID + "\x00" + clientReference }

func (r *memRepo) AcquireOrGet(_ context.Context, tx *transaction.Transaction) (*transaction.Transaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := refKey(tx.AdapterID, tx.ClientReference)
	if id, ok := r.byRef[key]; ok {
		cp := *r.byID[id]
		return &cp, false, nil
	}

	cp := *tx
	r.byID[tx.ID] = &cp
	r.byRef[key] = tx.ID

	out := cp

	return &out, true, nil
}

func (r *memRepo) Get(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.byID[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	cp := *tx

	return &cp, nil
}

func (r *memRepo) GetByReference(_ context.Context, adapterID, clientReference string) (*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byRef[refKey(adapterID, clientReference)]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	cp := *r.byID[id]

	return &cp, nil
}

func (r *memRepo) GetByExternalID(_ context.Context, adapterID, externalID string) (*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tx := range r.byID {
		if tx.AdapterID == adapterID && tx.ExternalID == externalID {
			cp := *tx
			return &cp, nil
		}
	}

	return nil, transaction.ErrNotFound
}

func (r *memRepo) UpdateState(_ context.Context, tx *transaction.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *tx
	r.byID[tx.ID] = &cp

	return nil
}

func (r *memRepo) List(_ context.Context, _ transaction.ListFilter) ([]*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*transaction.Transaction, 0, len(r.byID))
	for _, tx := range r.byID {
		cp := *tx
		out = append(out, &cp)
	}

	return out, nil
}

func (r *memRepo) ListOpen(_ context.Context, cutoff time.Time) ([]*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*transaction.Transaction

	for _, tx := range r.byID {
		if !tx.State.Terminal() && !tx.LastTransitionedAt.After(cutoff) {
			cp := *tx
			out = append(out, &cp)
		}
	}

	return out, nil
}

func (r *memRepo) InsertEvent(_ context.Context, ev *transaction.CallbackEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := refKey(ev.AdapterID, ev.EventID)
	if _, seen := r.events[key]; seen {
		return false, nil
	}

	cp := *ev
	r.events[key] = &cp

	return true, nil
}

func (r *memRepo) GetEvent(_ context.Context, adapterID, eventID string) (*transaction.CallbackEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[refKey(adapterID, eventID)]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	cp := *ev

	return &cp, nil
}

func (r *memRepo) MarkEventApplied(_ context.Context, adapterID, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev, ok := r.events[refKey(adapterID, eventID)]; ok {
		ev.Applied = true
	}

	return nil
}

func (r *memRepo) RecordDiscrepancy(_ context.Context, d *transaction.Discrepancy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *d
	cp.ID = int64(len(r.discrepancies) + 1)
	r.discrepancies = append(r.discrepancies, &cp)

	return nil
}

func (r *memRepo) ListDiscrepancies(_ context.Context, filter transaction.DiscrepancyFilter) ([]*transaction.Discrepancy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*transaction.Discrepancy

	for _, d := range r.discrepancies {
		if filter.TransactionID != nil && d.TransactionID != *filter.TransactionID {
			continue
		}

		if filter.Unresolved && d.ResolvedAt != nil {
			continue
		}

		cp := *d
		out = append(out, &cp)
	}

	return out, nil
}

func (r *memRepo) ResolveDiscrepancy(_ context.Context, id int64, res transaction.Resolution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.discrepancies {
		if d.ID == id {
			now := time.Now()
			d.Resolution = res
			d.ResolvedAt = &now
		}
	}

	return nil
}

// flakyRepo injects a bounded number of store failures into the write paths
// the callback flow touches, to exercise redelivery after a 500.
type flakyRepo struct {
	*memRepo
	updateStateFailures int
	markAppliedFailures int
}

func (r *flakyRepo) UpdateState(ctx context.Context, tx *transaction.Transaction) error {
	if r.updateStateFailures > 0 {
		r.updateStateFailures--
		return errors.New("connection reset by peer")
	}

	return r.memRepo.UpdateState(ctx, tx)
}

func (r *flakyRepo) MarkEventApplied(ctx context.Context, adapterID, eventID string) error {
	if r.markAppliedFailures > 0 {
		r.markAppliedFailures--
		return errors.New("connection reset by peer")
	}

	return r.memRepo.MarkEventApplied(ctx, adapterID, eventID)
}

func (r *memRepo) discrepancyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.discrepancies)
}

func (r *memRepo) eventApplied(adapterID, eventID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[refKey(adapterID, eventID)]

	return ok && ev.Applied
}
