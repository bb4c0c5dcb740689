package filter

import (
	"sort"
	"strings"

	"github.com/spektr-org/railpulse/clock"
	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
)

// ============================================================================
// SCOPE — which predicate subset a consumer sees
// ============================================================================

// Side selects the departure or arrival fields of a journey.
type Side int

const (
	Departure Side = iota
	Arrival
)

func (s Side) String() string {
	if s == Arrival {
		return "arrival"
	}
	return "departure"
}

// Scope adjusts filtering for one consumer. Side picks which time and
// station fields the time-bucket and station selections test. Dimensions
// listed in Ignore are not applied.
type Scope struct {
	Side   Side
	Ignore []Dimension
}

// Key identifies scopes that filter identically.
func (sc Scope) Key() string {
	ignored := make([]string, 0, len(sc.Ignore))
	for _, d := range sc.Ignore {
		ignored = append(ignored, string(d))
	}
	sort.Strings(ignored)
	return sc.Side.String() + "|" + strings.Join(ignored, ",")
}

func (sc Scope) ignores(d Dimension) bool {
	for _, x := range sc.Ignore {
		if x == d {
			return true
		}
	}
	return false
}

// ============================================================================
// APPLY
// ============================================================================

// Predicates returns one predicate per active, non-ignored dimension, for
// use over a dataset.JourneyAdapter view. An unconstrained state yields none.
func Predicates(state State, scope Scope) []engine.Predicate {
	timeKey, stationKey := dataset.KeyDepartureTime, dataset.KeyDeparture
	if scope.Side == Arrival {
		timeKey, stationKey = dataset.KeyArrivalTime, dataset.KeyArrival
	}

	var preds []engine.Predicate
	for _, d := range state.Active() {
		if scope.ignores(d) {
			continue
		}
		v := state.Get(d)
		switch d {
		case DimTime:
			b := clock.Bucket(v)
			preds = append(preds, engine.Match(timeKey, func(t string) bool { return clock.Match(b, t) }))
		case DimTicketClass:
			preds = append(preds, engine.Equals(dataset.KeyClass, v))
		case DimTicketType:
			preds = append(preds, engine.Equals(dataset.KeyType, v))
		case DimStation:
			preds = append(preds, engine.Equals(stationKey, v))
		case DimMonth:
			preds = append(preds, engine.Equals(dataset.KeyMonth, v))
		case DimJourneyStatus:
			preds = append(preds, engine.Equals(dataset.KeyStatus, v))
		case DimDelayReason:
			preds = append(preds, engine.Equals(dataset.KeyReason, v))
		case DimDelayBucket:
			bucket, err := clock.ParseDelayBucket(v)
			if err != nil {
				preds = append(preds, func(engine.RecordView, int) bool { return false })
				continue
			}
			preds = append(preds, func(view engine.RecordView, i int) bool {
				d, ok := view.Measure(i, dataset.KeyDelay)
				return ok && bucket.Contains(int(d))
			})
		}
	}
	return preds
}

// Apply returns the rows that pass every active selection, in input order.
// The result is always a new slice; rows is never modified.
func Apply(rows []dataset.JourneyRow, state State, scope Scope) []dataset.JourneyRow {
	preds := Predicates(state, scope)
	if len(preds) == 0 {
		return append([]dataset.JourneyRow(nil), rows...)
	}

	view := dataset.JourneyAdapter.Bind(rows)
	indices := engine.Indices(view, preds...)
	out := make([]dataset.JourneyRow, len(indices))
	for k, i := range indices {
		out[k] = view.Row(i)
	}
	return out
}
