package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/filter"
)

var (
	// ErrDuplicateConsumer is returned when a name is registered twice.
	ErrDuplicateConsumer = errors.New("consumer already registered")
	// ErrDatasetUnavailable marks a consumer whose dataset failed to load.
	ErrDatasetUnavailable = errors.New("dataset unavailable")
)

// Update is what a consumer receives on every notification. Rows are
// already filtered for the consumer's scope and belong to the consumer.
// Err is set, and Rows empty, when the journey dataset did not load.
type Update struct {
	State   filter.State
	Version uint64
	Rows    []dataset.JourneyRow
	Err     error
}

// Consumer reacts to a filter change.
type Consumer func(u Update) error

// Handle identifies a registered consumer.
type Handle struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type entry struct {
	handle Handle
	scope  filter.Scope
	fn     Consumer
}

// ============================================================================
// REGISTRY — ordered consumer list
// ============================================================================

// Registry keeps consumers in registration order. It is safe for
// concurrent use; notification works on a snapshot of the list.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a consumer. Names are unique.
func (r *Registry) Register(name string, scope filter.Scope, fn Consumer) (Handle, error) {
	if fn == nil {
		return Handle{}, fmt.Errorf("register %q: nil consumer", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.handle.Name == name {
			return Handle{}, fmt.Errorf("%w: %s", ErrDuplicateConsumer, name)
		}
	}
	h := Handle{ID: uuid.New(), Name: name}
	r.entries = append(r.entries, entry{handle: h, scope: scope, fn: fn})
	return h, nil
}

// Unregister removes a consumer. It reports whether the id was known.
func (r *Registry) Unregister(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.handle.ID == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Names lists consumer names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.handle.Name
	}
	return out
}

// Len is the number of registered consumers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) snapshot() []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entry(nil), r.entries...)
}
