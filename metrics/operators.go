// Package metrics holds the pure reducers behind every dashboard panel.
// Each takes rows (already filtered) and returns a fresh value; none of
// them log, mutate input or return NaN.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
)

// ============================================================================
// COUNTRY AVERAGES
// ============================================================================
// Rows arrive already attributed per country (dataset.ExpandCountries), so a
// UK/France operator sits in both the UK and France groups and never forms
// a group of its own. Means skip fields that did not parse; a group where
// nothing parsed averages to 0.
// ============================================================================

// BestOperator is the most punctual operator of a country.
type BestOperator struct {
	Operator    string  `json:"operator"`
	Punctuality float64 `json:"punctuality"`
}

// CountryStats summarizes the operators of one country.
type CountryStats struct {
	Country         string        `json:"country"`
	AvgPunctuality  float64       `json:"avgPunctuality"`
	AvgCancellation float64       `json:"avgCancellation"`
	AvgPrice        float64       `json:"avgPrice"`
	AvgCompensation float64       `json:"avgCompensation"`
	AvgBooking      float64       `json:"avgBooking"`
	AvgNightTrain   float64       `json:"avgNightTrain"`
	AvgCycling      float64       `json:"avgCycling"`
	ServiceScore    float64       `json:"serviceScore"`
	OperatorCount   int           `json:"operatorCount"`
	BestOperator    *BestOperator `json:"bestOperator"`
	Operators       []string      `json:"operators"`
}

// CountryAverages groups rows by country. BestOperator is the row with the
// highest punctuality, the first one on ties, and nil when no punctuality
// parsed.
func CountryAverages(rows []dataset.CountryOperator) map[string]CountryStats {
	view := dataset.CountryAdapter.Bind(rows)
	out := make(map[string]CountryStats)

	for _, g := range engine.GroupBy(view, dataset.KeyCountry) {
		stats := CountryStats{
			Country:         g.Key,
			AvgPunctuality:  engine.AvgMeasure(g.View, dataset.KeyPunctuality),
			AvgCancellation: engine.AvgMeasure(g.View, dataset.KeyCancellation),
			AvgPrice:        engine.AvgMeasure(g.View, dataset.KeyPricePerKm),
			AvgCompensation: engine.AvgMeasure(g.View, dataset.KeyCompensation),
			AvgBooking:      engine.AvgMeasure(g.View, dataset.KeyBooking),
			AvgNightTrain:   engine.AvgMeasure(g.View, dataset.KeyNightTrain),
			AvgCycling:      engine.AvgMeasure(g.View, dataset.KeyCycling),
			ServiceScore:    serviceScore(g.View),
			OperatorCount:   g.View.Len(),
			Operators:       make([]string, 0, g.View.Len()),
		}
		for i := 0; i < g.View.Len(); i++ {
			stats.Operators = append(stats.Operators, g.View.Dimension(i, dataset.KeyOperator))
		}
		if i, ok := engine.ArgMax(g.View, dataset.KeyPunctuality); ok {
			p, _ := g.View.Measure(i, dataset.KeyPunctuality)
			stats.BestOperator = &BestOperator{
				Operator:    g.View.Dimension(i, dataset.KeyOperator),
				Punctuality: p,
			}
		}
		out[g.Key] = stats
	}
	return out
}

// SortedCountries returns the map's values ordered by country name.
func SortedCountries(m map[string]CountryStats) []CountryStats {
	out := make([]CountryStats, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}

// ============================================================================
// UK VS EU
// ============================================================================

// Gap compares UK punctuality with the rest of Europe.
type Gap struct {
	UK      float64 `json:"uk"`
	EU      float64 `json:"eu"`
	Gap     float64 `json:"gap"`
	UKCount int     `json:"ukCount"`
	EUCount int     `json:"euCount"`
}

// UKGap computes mean UK punctuality minus mean EU punctuality. The UK side
// includes UK/France operators; the EU side excludes UK rows and every
// UK/France row.
func UKGap(rows []dataset.CountryOperator) Gap {
	uk, eu := splitUKEU(rows)
	g := Gap{
		UK:      engine.AvgMeasure(uk, dataset.KeyPunctuality),
		EU:      engine.AvgMeasure(eu, dataset.KeyPunctuality),
		UKCount: engine.CountMeasure(uk, dataset.KeyPunctuality),
		EUCount: engine.CountMeasure(eu, dataset.KeyPunctuality),
	}
	if g.UKCount > 0 && g.EUCount > 0 {
		g.Gap = g.UK - g.EU
	}
	return g
}

func splitUKEU(rows []dataset.CountryOperator) (uk, eu engine.RecordView) {
	view := dataset.CountryAdapter.Bind(rows)
	uk = engine.Where(view, engine.Equals(dataset.KeyCountry, "UK"))
	eu = engine.Where(view,
		engine.NotIn(dataset.KeyCountry, "UK"),
		func(_ engine.RecordView, i int) bool { return !view.Row(i).Joint },
	)
	return uk, eu
}

// ============================================================================
// THRESHOLD COLOR SCALES
// ============================================================================

// ThresholdScale maps a value to one of len(Colors) ordered bands.
type ThresholdScale struct {
	Thresholds []float64
	Colors     []string
}

// Palette is the four-step blue ramp shared by the threshold charts.
var Palette = []string{"#b6b7d8", "#8e8fc7", "#6668b5", "#1e3a8a"}

var (
	PunctualityScale  = ThresholdScale{Thresholds: []float64{75, 80, 85, 90}, Colors: Palette}
	CancellationScale = ThresholdScale{Thresholds: []float64{2, 3, 4, 5}, Colors: Palette}
)

// Band counts the thresholds at or below v, capped at the last color.
// NaN falls in band 0.
func (s ThresholdScale) Band(v float64) int {
	if math.IsNaN(v) || len(s.Colors) == 0 {
		return 0
	}
	band := 0
	for _, t := range s.Thresholds {
		if v >= t {
			band++
		}
	}
	if band > len(s.Colors)-1 {
		band = len(s.Colors) - 1
	}
	return band
}

// Color returns the band color of v.
func (s ThresholdScale) Color(v float64) string {
	if len(s.Colors) == 0 {
		return ""
	}
	return s.Colors[s.Band(v)]
}

// PunctualityBand maps a punctuality percentage to a band in 0..3:
// below 75, 75-80, 80-85, and 85 or more.
func PunctualityBand(v float64) int {
	return PunctualityScale.Band(v)
}

// ============================================================================
// STATUS AND SERVICE SCORES
// ============================================================================

// PerformanceStatus labels an average punctuality.
func PerformanceStatus(punctuality float64) string {
	switch {
	case punctuality >= 90:
		return "Excellent"
	case punctuality >= 85:
		return "Good"
	case punctuality >= 80:
		return "Average"
	}
	return "Needs Improvement"
}

// ServiceScore is the mean over operators of the mean of their four service
// scores, a missing score counting as 0. It reports false for no operators.
func ServiceScore(rows []dataset.CountryOperator) (float64, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	return serviceScore(dataset.CountryAdapter.Bind(rows)), true
}

// FormatServiceScore renders a score as "7.5/10", or "-" when absent.
func FormatServiceScore(score float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f/10", score)
}

func serviceScore(view engine.RecordView) float64 {
	if view.Len() == 0 {
		return 0
	}
	total := engine.SumMeasure(view, dataset.KeyCompensation) +
		engine.SumMeasure(view, dataset.KeyBooking) +
		engine.SumMeasure(view, dataset.KeyNightTrain) +
		engine.SumMeasure(view, dataset.KeyCycling)
	return total / float64(4*view.Len())
}

// ============================================================================
// CANCELLATION RANKING
// ============================================================================

// Ranked is a country with one metric value.
type Ranked struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
	Color   string  `json:"color,omitempty"`
}

// CancellationRanking averages cancellation rate per country, skipping
// UK/France rows, and returns the n highest (all when n <= 0). Colors follow
// CancellationScale.
func CancellationRanking(rows []dataset.CountryOperator, n int) []Ranked {
	own := make([]dataset.CountryOperator, 0, len(rows))
	for _, r := range rows {
		if !r.Joint {
			own = append(own, r)
		}
	}
	view := dataset.CountryAdapter.Bind(own)
	groups := engine.GroupAndAggregate(view, []string{dataset.KeyCountry}, dataset.KeyCancellation, engine.AggAvg, engine.SortValueDesc, n)

	out := make([]Ranked, 0, len(groups))
	for _, g := range groups {
		out = append(out, Ranked{Country: g.Key, Value: g.Value, Color: CancellationScale.Color(g.Value)})
	}
	return out
}

// LowestPunctuality returns the n countries with the lowest average
// punctuality, skipping those in exclude. Ties order by name.
func LowestPunctuality(stats map[string]CountryStats, n int, exclude ...string) []CountryStats {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	var out []CountryStats
	for _, s := range SortedCountries(stats) {
		if !skip[s.Country] {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgPunctuality < out[j].AvgPunctuality })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ============================================================================
// SERVICE PROFILES
// ============================================================================

// ServiceVector holds the four /10 service scores.
type ServiceVector struct {
	Booking      float64 `json:"booking"`
	Compensation float64 `json:"compensation"`
	NightTrain   float64 `json:"nightTrain"`
	Cycling      float64 `json:"cycling"`
}

// ServiceProfile averages the service scores of the UK and of the rest of
// Europe (UK and UK/France rows excluded).
func ServiceProfile(rows []dataset.CountryOperator) (uk, eu ServiceVector) {
	ukView, euView := splitUKEU(rows)
	return serviceVector(ukView), serviceVector(euView)
}

func serviceVector(view engine.RecordView) ServiceVector {
	return ServiceVector{
		Booking:      engine.AvgMeasure(view, dataset.KeyBooking),
		Compensation: engine.AvgMeasure(view, dataset.KeyCompensation),
		NightTrain:   engine.AvgMeasure(view, dataset.KeyNightTrain),
		Cycling:      engine.AvgMeasure(view, dataset.KeyCycling),
	}
}

// RadarAxes labels the RadarProfile components.
var RadarAxes = [4]string{"Punctuality", "Ticket Price", "Compensation", "Night Service"}

// RadarProfile returns UK and EU values normalized to 0..1 on RadarAxes:
// punctuality over 60..100, price reversed over the price extent of all
// operators (cheapest = 1), compensation and night scores divided by 10.
// A zero price extent yields 0 on the price axis.
func RadarProfile(rows []dataset.CountryOperator) (uk, eu [4]float64) {
	ukView, euView := splitUKEU(rows)
	all := dataset.CountryAdapter.Bind(rows)
	lo := engine.MinMeasure(all, dataset.KeyPricePerKm)
	hi := engine.MaxMeasure(all, dataset.KeyPricePerKm)

	axes := func(view engine.RecordView) [4]float64 {
		var out [4]float64
		out[0] = (engine.AvgMeasure(view, dataset.KeyPunctuality) - 60) / 40
		if hi > lo {
			out[1] = 1 - (engine.AvgMeasure(view, dataset.KeyPricePerKm)-lo)/(hi-lo)
		}
		out[2] = engine.AvgMeasure(view, dataset.KeyCompensation) / 10
		out[3] = engine.AvgMeasure(view, dataset.KeyNightTrain) / 10
		return out
	}
	return axes(ukView), axes(euView)
}

// ============================================================================
// KEY INSIGHTS
// ============================================================================

// Benchmarks used by KeyInsights.
const (
	EUPunctualityBenchmark = 82.8
	EUAveragePricePerKm    = 0.22
)

// KeyInsights returns up to three short observations about a country.
func KeyInsights(country string, s CountryStats) []string {
	var out []string

	if s.AvgPunctuality >= 90 {
		out = append(out, "Demonstrates exceptional punctuality performance")
		if s.AvgCancellation < 1.5 {
			out = append(out, "Maintains high reliability with low cancellation rates")
		}
	} else if s.AvgPunctuality < EUPunctualityBenchmark {
		out = append(out, "Shows potential for punctuality improvement")
		out = append(out, fmt.Sprintf("%.1f%% below EU punctuality benchmark", EUPunctualityBenchmark-s.AvgPunctuality))
	}

	if s.AvgPrice > EUAveragePricePerKm {
		out = append(out, fmt.Sprintf("%.0f%% higher than average ticket prices", (s.AvgPrice-EUAveragePricePerKm)/EUAveragePricePerKm*100))
	} else {
		out = append(out, "Competitive pricing structure")
	}

	// Quality index derived from punctuality on a 1..11 scale.
	quality := math.Round((s.AvgPunctuality/10+1)*10) / 10
	if quality >= 9 {
		out = append(out, "Excellent digital booking experience", "Top-tier customer service standards")
	} else if quality <= 8 {
		out = append(out, "Room for service quality enhancement")
	}

	switch country {
	case "Switzerland":
		out = append(out, "Leading European rail service provider")
	case "UK":
		out = append(out, "Ongoing modernization of rail infrastructure")
	}

	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
