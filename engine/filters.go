package engine

// ============================================================================
// FILTERS — Predicate filtering via RecordView
// ============================================================================
// Single pass: every predicate is checked per record in one loop.
// Returns a SubView (index list into parent) — zero data copy, parent order kept.
// ============================================================================

// Predicate reports whether the record at index i of view passes.
type Predicate func(view RecordView, i int) bool

// Where returns a view of the records that satisfy all predicates.
// No predicates = no restriction (returns the original view).
func Where(view RecordView, preds ...Predicate) RecordView {
	if len(preds) == 0 {
		return view
	}
	return NewSubView(view, Indices(view, preds...))
}

// Indices returns the positions of the records that satisfy all
// predicates, in view order.
func Indices(view RecordView, preds ...Predicate) []int {
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for _, p := range preds {
			if !p(view, i) {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}
	return indices
}

// Match builds a predicate from a test on one dimension value.
func Match(dimension string, test func(string) bool) Predicate {
	return func(view RecordView, i int) bool {
		return test(view.Dimension(i, dimension))
	}
}

// Equals matches records whose dimension equals value exactly.
// An empty value is a no-op predicate.
func Equals(dimension, value string) Predicate {
	if value == "" {
		return func(RecordView, int) bool { return true }
	}
	return func(view RecordView, i int) bool {
		return view.Dimension(i, dimension) == value
	}
}

// NotIn drops records whose dimension is one of values.
func NotIn(dimension string, values ...string) Predicate {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return func(view RecordView, i int) bool {
		return !set[view.Dimension(i, dimension)]
	}
}
