package views

import (
	"strings"
	"sync"
)

// InFlight tracks record ids with a pending destructive call, so only that
// record's control is disabled while other records stay usable.
type InFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewInFlight creates an empty set.
func NewInFlight() *InFlight {
	return &InFlight{ids: make(map[string]struct{})}
}

// Begin marks id as pending. It returns false if id is already pending.
// The id is copied because request-scoped strings are reused by fiber.
func (f *InFlight) Begin(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[strings.Clone(id)] = struct{}{}
	return true
}

// End clears the pending mark for id.
func (f *InFlight) End(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
}

// Has reports whether id is pending.
func (f *InFlight) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ids[id]
	return ok
}

// Snapshot copies the pending set.
func (f *InFlight) Snapshot() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.ids))
	for id := range f.ids {
		out[id] = true
	}
	return out
}
