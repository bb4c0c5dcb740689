package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
	"github.com/spektr-org/railpulse/metrics"
)

// OperatorPanels are the European comparison section. They do not react to
// journey filters.
func OperatorPanels(s Settings) []StaticPanel {
	return []StaticPanel{
		{Name: "country-averages", Compute: countryAverages(s)},
		{Name: "punctuality-gap", Compute: punctualityGap(s)},
		{Name: "cancellation-ranking", Compute: cancellationRanking(s)},
		{Name: "lowest-punctuality", Compute: lowestPunctuality(s)},
		{Name: "service-profile", Compute: serviceProfile(s)},
		{Name: "service-radar", Compute: serviceRadar(s)},
		{Name: "punctuality-grid", Compute: punctualityGrid(s)},
		{Name: "similarity", Compute: similarity(s)},
		{Name: "key-insights", Compute: keyInsights(s)},
	}
}

func countryAverages(s Settings) func([]dataset.CountryOperator) (*engine.Result, error) {
	return func(rows []dataset.CountryOperator) (*engine.Result, error) {
		stats := metrics.SortedCountries(metrics.CountryAverages(rows))
		table := engine.BuildTable("Operator Averages by Country",
			[]engine.Column{
				engine.TextColumn("country", "Country"),
				engine.NumberColumn("punctuality", "Punctuality"),
				engine.TextColumn("status", "Status"),
				engine.NumberColumn("cancellation", "Cancellation"),
				engine.NumberColumn("price", "Price per km"),
				engine.NumberColumn("service", "Service"),
				engine.TextColumn("best", "Best Operator"),
				engine.NumberColumn("operators", "Operators"),
			}, nil)
		for _, c := range stats {
			best := "-"
			if c.BestOperator != nil {
				best = fmt.Sprintf("%s (%.1f%%)", c.BestOperator.Operator, c.BestOperator.Punctuality)
			}
			table.Rows = append(table.Rows, []string{
				c.Country,
				engine.FormatPercent(c.AvgPunctuality),
				metrics.PerformanceStatus(c.AvgPunctuality),
				engine.FormatPercent(c.AvgCancellation),
				fmt.Sprintf("€%.2f", c.AvgPrice),
				metrics.FormatServiceScore(c.ServiceScore, c.OperatorCount > 0),
				best,
				engine.FormatInt(c.OperatorCount),
			})
		}
		return tableResult(table, stats), nil
	}
}

func punctualityGap(s Settings) func([]dataset.CountryOperator) (*engine.Result, error) {
	return func(rows []dataset.CountryOperator) (*engine.Result, error) {
		g := metrics.UKGap(rows)
		data := &engine.TextData{
			Value:    fmt.Sprintf("%+.1f pts", g.Gap),
			RawValue: g.Gap,
			Unit:     "pts",
			Count:    g.UKCount + g.EUCount,
		}
		res := textResult(s.Reference+" vs Europe Punctuality", data, g,
			stat(s.Reference, engine.FormatPercent(g.UK)),
			stat("Europe", engine.FormatPercent(g.EU)),
		)
		direction := "above"
		if g.Gap < 0 {
			direction = "below"
		}
		res.Summary = fmt.Sprintf("%s operators run %.1f points %s the European average.", s.Reference, math.Abs(g.Gap), direction)
		return res, nil
	}
}

func cancellationRanking(s Settings) func([]dataset.CountryOperator) (*engine.Result, error) {
	return func(rows []dataset.CountryOperator) (*engine.Result, error) {
		ranked := metrics.CancellationRanking(rows, s.TopCancellations)
		points := make([]engine.ChartPoint, len(ranked))
		for i, r := range ranked {
			r.Color = s.CancellationScale.Color(r.Value)
			ranked[i] = r
			points[i] = engine.ChartPoint{Label: r.Country, Value: engine.RoundTo2(r.Value), Color: r.Color, Selected: r.Country == s.Reference}
		}
		cfg := engine.BuildSeriesChart(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Highest Cancellation Rates", XAxis: "Country", YAxis: "Cancellation Rate (%)",
		}, []engine.ChartSeries{{Name: "Cancellation Rate", Data: points}})
		return chartResult(cfg, ranked), nil
	}
}

func lowestPunctuality(s Settings) func([]dataset.CountryOperator) (*engine.Result, error) {
	return func(rows []dataset.CountryOperator) (*engine.Result, error) {
		lowest := metrics.LowestPunctuality(metrics.CountryAverages(rows), s.LowestPunctuality, s.Reference)
		points := make([]engine.ChartPoint, len(lowest))
		for i, c := range lowest {
			points[i] = engine.ChartPoint{Label: c.Country, Value: engine.RoundTo2(c.AvgPunctuality), Color: s.PunctualityScale.Color(c.AvgPunctuality)}
		}
		cfg := engine.BuildSeriesChart(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Lowest Punctuality", XAxis: "Country", YAxis: "Punctuality (%)",
		}, []engine.ChartSeries{{Name: "Punctuality", Data: points}})
		return chartResult(cfg, lowest), nil
	}
}

func serviceProfile(s Settings) func([]dataset.CountryOperator) (*engine.Result, error) {
	return func(rows []dataset.CountryOperator) (*engine.Result, error) {
		uk, eu := metrics.ServiceProfile(rows)
		labels := []string{"Booking", "Compensation", "Night Train", "Cycling"}
		cfg := engine.BuildSeriesChart(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Service Scores", XAxis: "Service", YAxis: "Score (/10)",
		}, []engine.ChartSeries{
			series(s.Reference, labels, []float64{uk.Booking, uk.Compensation, uk.NightTrain, uk.Cycling}, ""),
			series("Europe", labels, []float64{eu.Booking, eu.Compensation, eu.NightTrain, eu.Cycling}, ""),
		})
		return chartResult(cfg, map[string]metrics.ServiceVector{"uk": uk, "eu": eu}), nil
	}
}

func serviceRadar(s Settings) func([]dataset.CountryOperator) (*engine.Result, error) {
	return func(rows []dataset.CountryOperator) (*engine.Result, error) {
		uk, eu := metrics.RadarProfile(rows)
		labels := metrics.RadarAxes[:]
		cfg := engine.BuildSeriesChart(engine.ChartSpec{
			Type: engine.ChartLine, Title: "Service Profile", XAxis: "Axis", YAxis: "Normalized",
		}, []engine.ChartSeries{
			series(s.Reference, labels, uk[:], ""),
			series("Europe", labels, eu[:], ""),
		})
		return chartResult(cfg, map[string][4]float64{"uk": uk, "eu": eu}), nil
	}
}

// punctualityGrid colors every country by its punctuality band.
func punctualityGrid(s Settings) func([]dataset.CountryOperator) (*engine.Result, error) {
	return func(rows []dataset.CountryOperator) (*engine.Result, error) {
		stats := metrics.SortedCountries(metrics.CountryAverages(rows))
		points := make([]engine.ChartPoint, len(stats))
		bands := make(map[string]int, len(stats))
		for i, c := range stats {
			points[i] = engine.ChartPoint{
				Label:    c.Country,
				Value:    engine.RoundTo2(c.AvgPunctuality),
				Color:    s.PunctualityScale.Color(c.AvgPunctuality),
				Selected: c.Country == s.Reference,
			}
			bands[c.Country] = s.PunctualityScale.Band(c.AvgPunctuality)
		}
		cfg := engine.BuildSeriesChart(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Punctuality by Country", XAxis: "Country", YAxis: "Punctuality (%)",
		}, []engine.ChartSeries{{Name: "Punctuality", Data: points}})
		return chartResult(cfg, bands), nil
	}
}

func similarity(s Settings) func([]dataset.CountryOperator) (*engine.Result, error) {
	return func(rows []dataset.CountryOperator) (*engine.Result, error) {
		sims := metrics.CountrySimilarities(rows, s.Reference, s.SimilarityTargets, s.SimilarityHooks...)
		labels := make([]string, len(sims))
		values := make([]float64, len(sims))
		for i, sim := range sims {
			labels[i] = sim.Code
			values[i] = sim.Value
		}
		cfg := engine.BuildSeriesChart(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Service Similarity to " + s.Reference, XAxis: "Country", YAxis: "Similarity",
		}, []engine.ChartSeries{series("Similarity", labels, values, "")})
		res := chartResult(cfg, sims)
		if len(sims) > 0 && sims[0].Kind == metrics.DisplayOverride {
			res.Summary = "Values shown are fixed display values; computed similarities are in the detail."
		}
		return res, nil
	}
}

func keyInsights(s Settings) func([]dataset.CountryOperator) (*engine.Result, error) {
	return func(rows []dataset.CountryOperator) (*engine.Result, error) {
		stats, ok := metrics.CountryAverages(rows)[s.Reference]
		if !ok {
			return textResult("Key Insights", &engine.TextData{Value: "No data"}, nil), nil
		}
		insights := metrics.KeyInsights(s.Reference, stats)
		res := textResult("Key Insights: "+s.Reference, &engine.TextData{
			Value:    metrics.PerformanceStatus(stats.AvgPunctuality),
			RawValue: stats.AvgPunctuality,
			Unit:     "%",
			Count:    stats.OperatorCount,
		}, insights)
		res.Summary = strings.Join(insights, ". ")
		return res, nil
	}
}
