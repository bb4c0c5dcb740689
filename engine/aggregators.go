package engine

import (
	"fmt"
	"math"
	"sort"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view) in first-seen
// key order, so every result is deterministic for a given input order.
// ============================================================================

// Aggregation names accepted by GroupAndAggregate.
const (
	AggSum   = "sum"
	AggCount = "count"
	AggAvg   = "avg"
	AggMax   = "max"
	AggMin   = "min"
	AggNone  = "none"
)

// Sort modes accepted by SortGroups.
const (
	SortNone      = ""
	SortValueDesc = "value_desc"
	SortValueAsc  = "value_asc"
	SortKeyAsc    = "key_asc"
	SortKeyDesc   = "key_desc"
)

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → sort → limit.
// Records with an empty group key are dropped.
func GroupAndAggregate(
	view RecordView,
	groupBy []string,
	measure string,
	aggregation string,
	sortBy string,
	limit int,
) []Group {
	if view.Len() == 0 {
		return nil
	}

	// 1. Group
	var groups []Group
	switch len(groupBy) {
	case 0:
		groups = []Group{{Key: "all", Label: "Total", View: view}}
	case 1:
		groups = GroupBy(view, groupBy[0])
	default:
		groups = groupByMulti(view, groupBy)
	}

	// 2. Aggregate
	for i := range groups {
		aggregateGroup(&groups[i], measure, aggregation)
		for j := range groups[i].SubGroups {
			aggregateGroup(&groups[i].SubGroups[j], measure, aggregation)
		}
	}

	// 3. Sort
	SortGroups(groups, sortBy)

	// 4. Limit
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

// GroupBy splits a view by one dimension, keeping first-seen key order.
// Records with an empty key are dropped.
func GroupBy(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if key == "" {
			continue
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  NewSubView(view, grouped[key]),
		})
	}
	return groups
}

func groupByMulti(view RecordView, dimensions []string) []Group {
	primaryGroups := GroupBy(view, dimensions[0])
	for i := range primaryGroups {
		primaryGroups[i].SubGroups = GroupBy(primaryGroups[i].View, dimensions[1])
	}
	return primaryGroups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, measure string, aggregation string) {
	group.Count = group.View.Len()
	group.Samples = CountMeasure(group.View, measure)
	if group.Count == 0 {
		return
	}

	switch aggregation {
	case AggSum:
		group.Value = SumMeasure(group.View, measure)
	case AggCount:
		group.Value = float64(group.Count)
	case AggAvg:
		group.Value = AvgMeasure(group.View, measure)
	case AggMax:
		group.Value = MaxMeasure(group.View, measure)
	case AggMin:
		group.Value = MinMeasure(group.View, measure)
	case AggNone:
		// pass through
	default:
		group.Value = SumMeasure(group.View, measure)
	}
}

// CountMeasure counts records whose measure parsed.
func CountMeasure(view RecordView, measure string) int {
	n := 0
	for i := 0; i < view.Len(); i++ {
		if _, ok := view.Measure(i, measure); ok {
			n++
		}
	}
	return n
}

// SumMeasure sums a named measure across a view. Unparsed values count as 0.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok {
			total += v
		}
	}
	return total
}

// AvgMeasure is the mean over records whose measure parsed; 0 when none did.
func AvgMeasure(view RecordView, measure string) float64 {
	var total float64
	n := 0
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// MaxMeasure returns the largest parsed value of a measure, 0 if none.
func MaxMeasure(view RecordView, measure string) float64 {
	i, ok := ArgMax(view, measure)
	if !ok {
		return 0
	}
	v, _ := view.Measure(i, measure)
	return v
}

// MinMeasure returns the smallest parsed value of a measure, 0 if none.
func MinMeasure(view RecordView, measure string) float64 {
	m := math.Inf(1)
	found := false
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok && v < m {
			m = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return m
}

// ArgMax returns the index of the record with the largest measure.
// Ties go to the first record; ok is false when no value parsed.
func ArgMax(view RecordView, measure string) (int, bool) {
	best := -1
	var m float64
	for i := 0; i < view.Len(); i++ {
		v, ok := view.Measure(i, measure)
		if !ok {
			continue
		}
		if best < 0 || v > m {
			best, m = i, v
		}
	}
	return best, best >= 0
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts groups in place. Sorting is stable, so ties keep
// first-seen order.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case SortValueDesc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case SortValueAsc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case SortKeyAsc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	case SortKeyDesc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key > groups[j].Key })
	default:
		// preserve grouping order
	}
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatCurrency formats an amount with a currency symbol and comma separators.
func FormatCurrency(amount float64, symbol string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	result := fmt.Sprintf("%s%s.%02d", symbol, FormatInt(int(cents/100)), cents%100)
	if negative {
		result = "-" + result
	}
	return result
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatPercent formats a percentage with one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// UniqueValues returns distinct non-empty values for a dimension, first-seen order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}
