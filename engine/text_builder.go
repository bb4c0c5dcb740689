package engine

import (
	"fmt"
	"sort"
)

// ============================================================================
// TEXT BUILDER — Produces TextData for headline figures
// ============================================================================
// Period keys are expected to sort chronologically as strings ("2024-01").
// ============================================================================

// BuildText produces a single headline figure over a view.
func BuildText(view RecordView, periodDim, measure, aggregation, unit string) *TextData {
	var value float64
	switch aggregation {
	case AggCount:
		value = float64(view.Len())
	case AggAvg:
		value = AvgMeasure(view, measure)
	case AggMax:
		value = MaxMeasure(view, measure)
	case AggMin:
		value = MinMeasure(view, measure)
	default:
		value = SumMeasure(view, measure)
	}

	var formatted string
	if aggregation == AggCount {
		formatted = FormatInt(int(value))
	} else {
		formatted = FormatCurrency(value, unit)
	}

	return &TextData{
		Value:    formatted,
		RawValue: value,
		Unit:     unit,
		Period:   DerivePeriod(view, periodDim),
		Count:    view.Len(),
	}
}

// ============================================================================
// GROWTH BUILDER
// ============================================================================

// BuildGrowthText compares the earliest and latest period of a view.
// Change percent is 0 when the earliest value is 0.
func BuildGrowthText(view RecordView, periodDim, measure, aggregation, unit string) *TextData {
	if view.Len() == 0 {
		return &TextData{
			Value:  "No data",
			Unit:   unit,
			Period: "No data",
		}
	}

	groups := GroupAndAggregate(view, []string{periodDim}, measure, aggregation, SortKeyAsc, 0)

	// Need at least 2 distinct periods
	if len(groups) < 2 {
		var total float64
		for _, g := range groups {
			total += g.Value
		}
		period := DerivePeriod(view, periodDim)
		return &TextData{
			Value:    FormatCurrency(total, unit),
			RawValue: total,
			Unit:     unit,
			Period:   period,
			Count:    view.Len(),
			Growth: &GrowthData{
				EarliestValue:  total,
				LatestValue:    total,
				EarliestPeriod: period,
				LatestPeriod:   period,
				Direction:      "insufficient data",
			},
		}
	}

	earliest := groups[0]
	latest := groups[len(groups)-1]

	changeAmount := latest.Value - earliest.Value
	var changePercent float64
	if earliest.Value != 0 {
		changePercent = (changeAmount / earliest.Value) * 100
	}

	direction := "unchanged"
	if changePercent > 0.5 {
		direction = "increased"
	} else if changePercent < -0.5 {
		direction = "decreased"
	}

	absPercent := changePercent
	if absPercent < 0 {
		absPercent = -absPercent
	}
	var displayValue string
	switch direction {
	case "increased":
		displayValue = fmt.Sprintf("↑ %.1f%%", absPercent)
	case "decreased":
		displayValue = fmt.Sprintf("↓ %.1f%%", absPercent)
	default:
		displayValue = "→ No change"
	}

	return &TextData{
		Value:    displayValue,
		RawValue: changePercent,
		Unit:     unit,
		Period:   fmt.Sprintf("%s – %s", earliest.Key, latest.Key),
		Count:    view.Len(),
		Growth: &GrowthData{
			EarliestValue:  earliest.Value,
			LatestValue:    latest.Value,
			EarliestPeriod: earliest.Key,
			LatestPeriod:   latest.Key,
			ChangeAmount:   changeAmount,
			ChangePercent:  changePercent,
			Direction:      direction,
		},
	}
}

// ============================================================================
// PERIOD HELPER
// ============================================================================

// DerivePeriod builds a human-readable period string from a view.
func DerivePeriod(view RecordView, periodDim string) string {
	if view.Len() == 0 {
		return "No data"
	}

	periods := UniqueValues(view, periodDim)
	switch len(periods) {
	case 0:
		return "All time"
	case 1:
		return periods[0]
	}

	sort.Strings(periods)
	return fmt.Sprintf("%s – %s", periods[0], periods[len(periods)-1])
}
