// Package filter holds the dashboard's cross-chart selection and applies it
// to journey rows.
//
// Readers get an immutable State snapshot; only a Store mutates selections.
package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spektr-org/railpulse/clock"
)

var (
	ErrUnknownDimension = errors.New("unknown filter dimension")
	ErrInvalidValue     = errors.New("invalid filter value")
)

// Dimension names one selectable control group.
type Dimension string

const (
	DimTime          Dimension = "time"
	DimTicketClass   Dimension = "ticketClass"
	DimTicketType    Dimension = "ticketType"
	DimStation       Dimension = "station"
	DimMonth         Dimension = "month"
	DimDelayBucket   Dimension = "delayBucket"
	DimJourneyStatus Dimension = "journeyStatus"
	DimDelayReason   Dimension = "delayReason"
)

// Dimensions lists every dimension in display order.
var Dimensions = []Dimension{
	DimTime, DimTicketClass, DimTicketType, DimStation,
	DimMonth, DimDelayBucket, DimJourneyStatus, DimDelayReason,
}

func (d Dimension) index() (int, bool) {
	for i, x := range Dimensions {
		if x == d {
			return i, true
		}
	}
	return 0, false
}

// ParseDimension accepts a dimension name.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.TrimSpace(s))
	if _, ok := d.index(); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
	}
	return d, nil
}

// ============================================================================
// STATE — immutable snapshot
// ============================================================================

// State is a snapshot of every selection. The zero value has no
// constraints. States are values: copying one never aliases another.
type State struct {
	values [8]string
}

// Get returns the selected value of d, "" when unconstrained.
func (s State) Get(d Dimension) string {
	i, ok := d.index()
	if !ok {
		return ""
	}
	return s.values[i]
}

// TimeBucket returns the selected time bucket, All when unset.
func (s State) TimeBucket() clock.Bucket {
	if v := s.Get(DimTime); v != "" {
		return clock.Bucket(v)
	}
	return clock.All
}

// With returns a copy of s with d set to v. An empty v clears d.
func (s State) With(d Dimension, v string) State {
	if i, ok := d.index(); ok {
		s.values[i] = v
	}
	return s
}

// Unconstrained reports whether no dimension is selected.
func (s State) Unconstrained() bool {
	return s == State{}
}

// Active returns the selected dimensions in display order.
func (s State) Active() []Dimension {
	var out []Dimension
	for i, v := range s.values {
		if v != "" {
			out = append(out, Dimensions[i])
		}
	}
	return out
}

func (s State) String() string {
	if s.Unconstrained() {
		return "ALL"
	}
	parts := make([]string, 0, len(s.values))
	for i, v := range s.values {
		if v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", Dimensions[i], v))
		}
	}
	return strings.Join(parts, " ")
}

// MarshalJSON writes the selected dimensions as an object.
func (s State) MarshalJSON() ([]byte, error) {
	m := make(map[string]string)
	for i, v := range s.values {
		if v != "" {
			m[string(Dimensions[i])] = v
		}
	}
	return json.Marshal(m)
}
