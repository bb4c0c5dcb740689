package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/spektr-org/railpulse/clock"
	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
)

// ============================================================================
// MONTHLY SERIES
// ============================================================================
// Months are the YYYY-MM prefix of the journey date. Rows with a short or
// missing date are dropped. Every series is sorted ascending by month.
// ============================================================================

// MonthValue is one point of a monthly series.
type MonthValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

func monthly(rows []dataset.JourneyRow, measure, aggregation string) []MonthValue {
	view := dataset.JourneyAdapter.Bind(rows)
	groups := engine.GroupAndAggregate(view, []string{dataset.KeyMonth}, measure, aggregation, engine.SortKeyAsc, 0)
	out := make([]MonthValue, 0, len(groups))
	for _, g := range groups {
		out = append(out, MonthValue{Month: g.Key, Value: g.Value})
	}
	return out
}

// MonthlyRevenue sums ticket prices per month. Unparsed prices count as 0.
func MonthlyRevenue(rows []dataset.JourneyRow) []MonthValue {
	return monthly(rows, dataset.KeyPrice, engine.AggSum)
}

// MonthlyRefund sums the price of refunded tickets per month. Months
// without a refund request are absent.
func MonthlyRefund(rows []dataset.JourneyRow) []MonthValue {
	refunded := make([]dataset.JourneyRow, 0, len(rows))
	for _, r := range rows {
		if r.RefundRequested {
			refunded = append(refunded, r)
		}
	}
	return monthly(refunded, dataset.KeyPrice, engine.AggSum)
}

// MonthlyJourneys counts journeys per month.
func MonthlyJourneys(rows []dataset.JourneyRow) []MonthValue {
	return monthly(rows, dataset.KeyPrice, engine.AggCount)
}

// Trend is revenue and refund aligned on the same months.
type Trend struct {
	Months  []string  `json:"months"`
	Revenue []float64 `json:"revenue"`
	Refund  []float64 `json:"refund"`
}

// RevenueTrend aligns MonthlyRevenue and MonthlyRefund; a month without
// refunds gets 0.
func RevenueTrend(rows []dataset.JourneyRow) Trend {
	revenue := MonthlyRevenue(rows)
	refunds := make(map[string]float64)
	for _, mv := range MonthlyRefund(rows) {
		refunds[mv.Month] = mv.Value
	}

	t := Trend{
		Months:  make([]string, len(revenue)),
		Revenue: make([]float64, len(revenue)),
		Refund:  make([]float64, len(revenue)),
	}
	for i, mv := range revenue {
		t.Months[i] = mv.Month
		t.Revenue[i] = mv.Value
		t.Refund[i] = refunds[mv.Month]
	}
	return t
}

// TypeRevenue is monthly revenue split by ticket type.
type TypeRevenue struct {
	Months []string             `json:"months"`
	Types  []string             `json:"types"`
	Values map[string][]float64 `json:"values"` // type → one value per month
}

// MonthlyRevenueByType sums revenue per month and ticket type. Types are
// the known ticket types followed by any others in first-seen order.
func MonthlyRevenueByType(rows []dataset.JourneyRow) TypeRevenue {
	view := dataset.JourneyAdapter.Bind(rows)
	groups := engine.GroupAndAggregate(view, []string{dataset.KeyMonth, dataset.KeyType}, dataset.KeyPrice, engine.AggSum, engine.SortKeyAsc, 0)

	types := append([]string(nil), dataset.TicketTypes...)
	for _, t := range engine.UniqueValues(view, dataset.KeyType) {
		if !contains(types, t) {
			types = append(types, t)
		}
	}

	out := TypeRevenue{
		Months: make([]string, 0, len(groups)),
		Types:  types,
		Values: make(map[string][]float64, len(types)),
	}
	for _, t := range types {
		out.Values[t] = make([]float64, len(groups))
	}
	for i, g := range groups {
		out.Months = append(out.Months, g.Key)
		for _, sg := range g.SubGroups {
			out.Values[sg.Key][i] = sg.Value
		}
	}
	return out
}

// ============================================================================
// MONTH-OVER-MONTH
// ============================================================================

// PercentChange is (curr-prev)/prev*100, 0 when prev is 0.
func PercentChange(prev, curr float64) float64 {
	if prev == 0 {
		return 0
	}
	return (curr - prev) / prev * 100
}

// MonthChange is a monthly count with its change from the previous month.
type MonthChange struct {
	Month         string  `json:"month"`
	Name          string  `json:"name"`
	Count         int     `json:"count"`
	Total         int     `json:"total"`
	PercentChange float64 `json:"percentChange"`
}

func monthlyStatus(rows []dataset.JourneyRow, status string) []MonthChange {
	view := dataset.JourneyAdapter.Bind(rows)
	var out []MonthChange
	for _, g := range engine.GroupAndAggregate(view, []string{dataset.KeyMonth}, "", engine.AggCount, engine.SortKeyAsc, 0) {
		matching := engine.Where(g.View, engine.Equals(dataset.KeyStatus, status))
		mc := MonthChange{Month: g.Key, Name: MonthName(g.Key), Count: matching.Len(), Total: g.Count}
		if n := len(out); n > 0 {
			mc.PercentChange = engine.RoundTo2(PercentChange(float64(out[n-1].Count), float64(mc.Count)))
		}
		out = append(out, mc)
	}
	return out
}

// MonthlyCancellations counts Cancelled journeys per month, with the change
// from the previous month rounded to 2 decimals.
func MonthlyCancellations(rows []dataset.JourneyRow) []MonthChange {
	return monthlyStatus(rows, dataset.StatusCancelled)
}

// MonthlyOnTime counts On Time journeys per month, with the change from the
// previous month rounded to 2 decimals.
func MonthlyOnTime(rows []dataset.JourneyRow) []MonthChange {
	return monthlyStatus(rows, dataset.StatusOnTime)
}

// Reliability is the monthly on-time share.
type Reliability struct {
	Months  []MonthValue `json:"months"`
	Current float64      `json:"current"`
}

// ReliabilityScores is on-time/total*100 per month. Current is the latest
// month's score, 0 without data.
func ReliabilityScores(rows []dataset.JourneyRow) Reliability {
	var r Reliability
	for _, mc := range MonthlyOnTime(rows) {
		r.Months = append(r.Months, MonthValue{Month: mc.Month, Value: percent(float64(mc.Count), float64(mc.Total))})
	}
	if n := len(r.Months); n > 0 {
		r.Current = r.Months[n-1].Value
	}
	return r
}

// ============================================================================
// TREND SUMMARY
// ============================================================================

// SeriesSummary describes a monthly series in one line.
type SeriesSummary struct {
	Total   float64 `json:"total"`
	Highest string  `json:"highest"`
	Lowest  string  `json:"lowest"`
	Change  float64 `json:"change"`
}

// TrendSummary totals a series, names its highest and lowest month (first
// on ties) and computes the change from first to last month.
func TrendSummary(series []MonthValue) SeriesSummary {
	var s SeriesSummary
	if len(series) == 0 {
		return s
	}
	hi, lo := 0, 0
	for i, mv := range series {
		s.Total += mv.Value
		if mv.Value > series[hi].Value {
			hi = i
		}
		if mv.Value < series[lo].Value {
			lo = i
		}
	}
	s.Highest = series[hi].Month
	s.Lowest = series[lo].Month
	if len(series) > 1 {
		s.Change = PercentChange(series[0].Value, series[len(series)-1].Value)
	}
	return s
}

// Describe renders a summary the way the journey trend panel shows it.
func (s SeriesSummary) Describe(first, last string) string {
	dir := "increase"
	sign := "+"
	if s.Change < 0 {
		dir, sign = "decrease", ""
	}
	return fmt.Sprintf("From %s to %s the total was %s, highest in %s and lowest in %s, a %s%.2f%% %s overall.",
		MonthName(first), MonthName(last), engine.FormatInt(int(s.Total)),
		MonthName(s.Highest), MonthName(s.Lowest), sign, s.Change, dir)
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthName turns "2024-03" into "Mar"; anything else is returned as is.
func MonthName(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return monthNames[t.Month()-1]
}

// ============================================================================
// TIME OF DAY
// ============================================================================

// Slot is a 15-minute departure window.
type Slot struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// SlotWindow returns the first minute of the 3-hour busiest-slot window:
// 16:00 when bucket is PM, 06:00 otherwise.
func SlotWindow(bucket clock.Bucket) int {
	if bucket == clock.PM {
		return 16 * 60
	}
	return 6 * 60
}

// BusiestSlots counts departures in the twelve 15-minute slots of the
// window picked by SlotWindow. A departure at minute m falls in the slot
// starting at s when s <= m < s+15. Rows with no parseable departure time
// are dropped. Percent is the rounded share of all counted departures.
func BusiestSlots(rows []dataset.JourneyRow, bucket clock.Bucket) []Slot {
	start := SlotWindow(bucket)
	slots := make([]Slot, 12)
	for i := range slots {
		slots[i].Label = clock.FormatMinutes(start + i*15)
	}

	total := 0
	for _, r := range rows {
		m, ok := clock.Minutes(r.DepartureTime)
		if !ok || m < start || m >= start+12*15 {
			continue
		}
		slots[(m-start)/15].Count++
		total++
	}
	for i := range slots {
		if total > 0 {
			slots[i].Percent = int(math.Round(float64(slots[i].Count) / float64(total) * 100))
		}
	}
	return slots
}

// Weekdays orders the heat map rows.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// PeakHourStats counts departures per hour and per weekday and hour.
type PeakHourStats struct {
	Hours  []int    `json:"hours"`
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
	Heat   [][]int  `json:"heat"` // [weekday][hour index]
}

// PeakHours covers hours 12..23 when bucket is PM and 0..11 otherwise.
// Rows with an unparseable departure time are dropped from both the counts
// and the heat map; rows with an unparseable date only from the heat map.
func PeakHours(rows []dataset.JourneyRow, bucket clock.Bucket) PeakHourStats {
	first := 0
	if bucket == clock.PM {
		first = 12
	}
	p := PeakHourStats{
		Hours:  make([]int, 12),
		Labels: make([]string, 12),
		Counts: make([]int, 12),
		Heat:   make([][]int, len(Weekdays)),
	}
	for i := range p.Hours {
		h := first + i
		p.Hours[i] = h
		p.Labels[i] = hourLabel(h)
	}
	for d := range p.Heat {
		p.Heat[d] = make([]int, 12)
	}

	for _, r := range rows {
		h, ok := clock.Hour(r.DepartureTime)
		if !ok || h < first || h >= first+12 {
			continue
		}
		p.Counts[h-first]++
		if day, ok := weekday(r.DateOfJourney); ok {
			p.Heat[day][h-first]++
		}
	}
	return p
}

func hourLabel(h int) string {
	switch {
	case h == 0:
		return "12 AM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	case h == 12:
		return "12 PM"
	}
	return fmt.Sprintf("%d PM", h-12)
}

// weekday returns 0 for Monday through 6 for Sunday.
func weekday(date string) (int, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}
	return (int(t.Weekday()) + 6) % 7, true
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
