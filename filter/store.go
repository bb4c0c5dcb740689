package filter

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spektr-org/railpulse/clock"
	"github.com/spektr-org/railpulse/dataset"
)

// ============================================================================
// STORE — the single mutator
// ============================================================================

// Store owns the current State. Writers go through Toggle, Set, Clear and
// Reset; readers take a Snapshot. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	state   State
	version uint64
}

// NewStore returns a store with no selections.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Version increments on every change that alters the state.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Current returns the state and its version from one read.
func (s *Store) Current() (State, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.version
}

// Toggle selects v on d, or clears d when v is already selected. Selecting
// ALL on the time dimension clears it.
func (s *Store) Toggle(d Dimension, v string) (State, error) {
	v, err := Validate(d, v)
	if err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Get(d) == v {
		v = ""
	}
	s.update(s.state.With(d, v))
	return s.state, nil
}

// Set selects v on d regardless of the current value. An empty v, or ALL on
// the time dimension, clears d.
func (s *Store) Set(d Dimension, v string) (State, error) {
	v, err := Validate(d, v)
	if err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(s.state.With(d, v))
	return s.state, nil
}

// Clear removes the selection on d.
func (s *Store) Clear(d Dimension) (State, error) {
	if _, ok := d.index(); !ok {
		return s.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownDimension, d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(s.state.With(d, ""))
	return s.state, nil
}

// Reset clears every selection.
func (s *Store) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(State{})
	return s.state
}

func (s *Store) update(next State) {
	if next != s.state {
		s.state = next
		s.version++
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

// Validate checks v against the values d accepts and returns its canonical
// form. "" always passes and means "clear".
func Validate(d Dimension, v string) (string, error) {
	if _, ok := d.index(); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, d)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}

	invalid := func() (string, error) {
		return "", fmt.Errorf("%w: %s=%q", ErrInvalidValue, d, v)
	}

	switch d {
	case DimTime:
		b, err := clock.ParseBucket(v)
		if err != nil {
			return invalid()
		}
		if b == clock.All {
			return "", nil
		}
		return string(b), nil
	case DimTicketClass:
		if !oneOf(v, dataset.TicketClasses) {
			return invalid()
		}
	case DimTicketType:
		if !oneOf(v, dataset.TicketTypes) {
			return invalid()
		}
	case DimJourneyStatus:
		if !oneOf(v, dataset.Statuses) {
			return invalid()
		}
	case DimMonth:
		if _, err := time.Parse("2006-01", v); err != nil || len(v) != 7 {
			return invalid()
		}
	case DimDelayBucket:
		if _, err := clock.ParseDelayBucket(v); err != nil {
			return invalid()
		}
	case DimStation:
		if !dataset.ValidStation(v) {
			return invalid()
		}
	case DimDelayReason:
		return dataset.NormalizeReason(v), nil
	}
	return v, nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
