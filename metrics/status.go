package metrics

import (
	"sort"
	"strings"

	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
)

// ============================================================================
// STATUS COUNTS AND SPLITS
// ============================================================================

// Count is a labelled count with its share of the total.
type Count struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Amount is a labelled money total.
type Amount struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// ServiceCounts is the planned/on-time/delayed/cancelled headline.
type ServiceCounts struct {
	Planned   int `json:"planned"`
	OnTime    int `json:"onTime"`
	Delayed   int `json:"delayed"`
	Cancelled int `json:"cancelled"`
}

// StatusCounts counts journeys per status. Planned counts every row, so
// rows with another status add to Planned only.
func StatusCounts(rows []dataset.JourneyRow) ServiceCounts {
	c := ServiceCounts{Planned: len(rows)}
	for _, r := range rows {
		switch r.JourneyStatus {
		case dataset.StatusOnTime:
			c.OnTime++
		case dataset.StatusDelayed:
			c.Delayed++
		case dataset.StatusCancelled:
			c.Cancelled++
		}
	}
	return c
}

// countKeys counts rows per key over a fixed key list; rows with other
// keys are ignored. Percent is the share of the counted rows.
func countKeys(rows []dataset.JourneyRow, keys []string, keyOf func(dataset.JourneyRow) string) []Count {
	out := make([]Count, len(keys))
	at := make(map[string]int, len(keys))
	for i, k := range keys {
		out[i].Key = k
		at[k] = i
	}
	total := 0
	for _, r := range rows {
		if i, ok := at[keyOf(r)]; ok {
			out[i].Count++
			total++
		}
	}
	for i := range out {
		out[i].Percent = percent(float64(out[i].Count), float64(total))
	}
	return out
}

func sumKeys(rows []dataset.JourneyRow, keys []string, amount func(dataset.JourneyRow) float64) []Amount {
	out := make([]Amount, len(keys))
	at := make(map[string]int, len(keys))
	for i, k := range keys {
		out[i].Key = k
		at[k] = i
	}
	for _, r := range rows {
		if i, ok := at[r.JourneyStatus]; ok {
			out[i].Value += amount(r)
		}
	}
	return out
}

// StatusRevenue sums ticket prices for On Time, Delayed and Cancelled.
func StatusRevenue(rows []dataset.JourneyRow) []Amount {
	return sumKeys(rows, dataset.Statuses, func(r dataset.JourneyRow) float64 { return r.Price.Or(0) })
}

// StatusRefund sums refunded ticket prices for Delayed and Cancelled.
func StatusRefund(rows []dataset.JourneyRow) []Amount {
	return sumKeys(rows, []string{dataset.StatusDelayed, dataset.StatusCancelled}, dataset.JourneyRow.RefundAmount)
}

// Railcards splits holders from non-holders.
type Railcards struct {
	Total     int     `json:"total"`
	None      int     `json:"none"`
	Holders   int     `json:"holders"`
	Breakdown []Count `json:"breakdown"` // Adult, Disabled, Senior
}

// RailcardSplit counts railcard holders. An empty railcard counts as None.
func RailcardSplit(rows []dataset.JourneyRow) Railcards {
	rc := Railcards{Total: len(rows)}
	for _, r := range rows {
		if r.Railcard == "" || r.Railcard == dataset.RailcardNone {
			rc.None++
		}
	}
	rc.Holders = rc.Total - rc.None
	rc.Breakdown = countKeys(rows, dataset.Railcards[1:], func(r dataset.JourneyRow) string { return r.Railcard })
	return rc
}

// Mix is the ticket class and type split.
type Mix struct {
	Classes []Count `json:"classes"`
	Types   []Count `json:"types"`
}

// TicketMix counts journeys per ticket class and per ticket type. Only
// rows with a known class are counted, for both splits.
func TicketMix(rows []dataset.JourneyRow) Mix {
	classed := make([]dataset.JourneyRow, 0, len(rows))
	for _, r := range rows {
		if contains(dataset.TicketClasses, r.TicketClass) {
			classed = append(classed, r)
		}
	}
	return Mix{
		Classes: countKeys(classed, dataset.TicketClasses, func(r dataset.JourneyRow) string { return r.TicketClass }),
		Types:   countKeys(classed, dataset.TicketTypes, func(r dataset.JourneyRow) string { return r.TicketType }),
	}
}

// CancellationScore is cancelled/total*100. It reports false for no rows.
func CancellationScore(rows []dataset.JourneyRow) (float64, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	c := StatusCounts(rows)
	return float64(c.Cancelled) / float64(c.Planned) * 100, true
}

// CancelledCount counts rows whose status mentions a cancellation.
func CancelledCount(rows []dataset.JourneyRow) int {
	n := 0
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.JourneyStatus), "cancel") {
			n++
		}
	}
	return n
}

// ============================================================================
// CAUSES AND DISRUPTIONS
// ============================================================================

// Cause aggregates cancelled journeys sharing a delay reason.
type Cause struct {
	Reason     string  `json:"reason"`
	Passengers int     `json:"passengers"`
	Revenue    float64 `json:"revenue"` // ticket value of the cancelled journeys
}

// LeadingCauses groups Cancelled journeys by normalized reason, most
// passengers first; ties keep first-seen order. A missing reason is
// "Unknown"; unparsed prices count as 0.
func LeadingCauses(rows []dataset.JourneyRow) []Cause {
	view := engine.Where(dataset.JourneyAdapter.Bind(rows), engine.Equals(dataset.KeyStatus, dataset.StatusCancelled))
	groups := engine.GroupAndAggregate(view, []string{dataset.KeyReason}, dataset.KeyPrice, engine.AggSum, engine.SortNone, 0)
	out := make([]Cause, 0, len(groups))
	for _, g := range groups {
		out = append(out, Cause{Reason: g.Key, Passengers: g.Count, Revenue: g.Value})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Passengers > out[j].Passengers })
	return out
}

// DisruptionReasons are the reason columns of the disruption table.
var DisruptionReasons = []string{"Signal Failure", "Staffing", "Technical Issue", "Traffic", "Weather"}

// DefaultDisruptionDates are the days the disruption table shows.
var DefaultDisruptionDates = []string{
	"2024-01-02", "2024-01-18", "2024-01-23", "2024-01-28",
	"2024-02-14", "2024-02-22", "2024-02-26",
	"2024-03-02", "2024-03-05", "2024-03-07", "2024-03-15", "2024-03-27",
	"2024-04-22", "2024-04-30",
}

// DisruptionDay is one row of the disruption table. Percentages are of
// every journey on that day.
type DisruptionDay struct {
	Date         string             `json:"date"`
	Journeys     int                `json:"journeys"`
	Cancellation float64            `json:"cancellation"`
	Reasons      map[string]float64 `json:"reasons"`
}

// DisruptionTable reports, for each date, the cancelled share and the
// share of journeys per normalized delay reason. Days without journeys
// are all zeros.
func DisruptionTable(rows []dataset.JourneyRow, dates []string) []DisruptionDay {
	byDate := make(map[string][]dataset.JourneyRow)
	for _, r := range rows {
		byDate[r.DateOfJourney] = append(byDate[r.DateOfJourney], r)
	}

	out := make([]DisruptionDay, 0, len(dates))
	for _, date := range dates {
		day := byDate[date]
		d := DisruptionDay{
			Date:     date,
			Journeys: len(day),
			Reasons:  make(map[string]float64, len(DisruptionReasons)),
		}
		counts := countKeys(day, DisruptionReasons, func(r dataset.JourneyRow) string {
			return dataset.NormalizeReason(r.ReasonForDelay)
		})
		for _, c := range counts {
			d.Reasons[c.Key] = percent(float64(c.Count), float64(len(day)))
		}
		d.Cancellation, _ = CancellationScore(day)
		out = append(out, d)
	}
	return out
}
