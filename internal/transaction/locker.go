package transaction

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex hands out one mutex per transaction id so unrelated transactions
// never contend. Entries are reference-counted and removed once the last
// holder releases, keeping the table bounded by in-flight work.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[uuid.UUID]*lockEntry)}
}

func (k *keyedMutex) lock(id uuid.UUID) (unlock func()) {
	k.mu.Lock()

	e, ok := k.entries[id]
	if !ok {
		e = new(lockEntry)
		k.entries[id] = e
	}

	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()

		e.refs--
		if e.refs == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}
