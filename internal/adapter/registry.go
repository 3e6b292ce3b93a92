package adapter

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/currency"
)

var ErrUnknownAdapter = errors.New("unknown adapter")

// Registry holds the configured gateway adapters. It is populated once at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register validates the adapter's declared capability and adds it to the
// registry. Capability problems are configuration bugs, so they fail loudly
// here rather than surfacing per request later.
func (r *Registry) Register(a Adapter) error {
	id := a.ID()
	if id == "" {
		return errors.New("adapter has empty id")
	}

	if _, dup := r.adapters[id]; dup {
		return fmt.Errorf("adapter %q already registered", id)
	}

	cap := a.Capability()
	if len(cap.Currencies) == 0 {
		return fmt.Errorf("adapter %q declares no currencies", id)
	}

	for _, code := range cap.Currencies {
		if _, err := currency.ParseISO(code); err != nil {
			return fmt.Errorf("adapter %q declares invalid currency %q: %w", id, code, err)
		}
	}

	if len(cap.Directions) == 0 {
		return fmt.Errorf("adapter %q declares no directions", id)
	}

	for _, d := range cap.Directions {
		if d != DirectionCollection && d != DirectionDisbursement {
			return fmt.Errorf("adapter %q declares invalid direction %q", id, d)
		}
	}

	if !cap.SupportsQuery && !cap.SupportsNotify {
		return fmt.Errorf("adapter %q supports neither status query nor callbacks", id)
	}

	r.adapters[id] = a

	return nil
}

func (r *Registry) Get(id string) (Adapter, error) {
	a, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAdapter, id)
	}

	return a, nil
}

// IDs returns the registered adapter ids in stable order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
