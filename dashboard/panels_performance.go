package dashboard

import (
	"fmt"

	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
	"github.com/spektr-org/railpulse/filter"
	"github.com/spektr-org/railpulse/metrics"
)

// PerformancePanels are the service performance section of the dashboard.
func PerformancePanels(s Settings) []Panel {
	return []Panel{
		{Name: "service-counts", Compute: serviceCounts},
		{Name: "cancellation-horizon", Compute: monthChanges("Cancellations per Month", "Cancelled", metrics.MonthlyCancellations)},
		{Name: "on-time-trend", Compute: monthChanges("On-Time Journeys per Month", "On Time", metrics.MonthlyOnTime)},
		{Name: "reliability", Compute: reliability},
		{Name: "leading-causes", Compute: leadingCauses},
		{Name: "disruptions", Compute: disruptions(s.DisruptionDates)},
		{Name: "station-flows", Compute: stationFlows(s.FlowOrigins, s.FlowDestinations)},
	}
}

func serviceCounts(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	c := metrics.StatusCounts(rows)
	counts := []metrics.Count{
		{Key: dataset.StatusOnTime, Count: c.OnTime},
		{Key: dataset.StatusDelayed, Count: c.Delayed},
		{Key: dataset.StatusCancelled, Count: c.Cancelled},
	}
	cfg := engine.BuildSeriesChart(engine.ChartSpec{
		Type: engine.ChartBar, Title: "Journeys by Status", XAxis: "Status", YAxis: "Journeys",
	}, []engine.ChartSeries{countSeries("Journeys", counts, state.Get(filter.DimJourneyStatus))})

	score, ok := metrics.CancellationScore(rows)
	cancelled := "-"
	if ok {
		cancelled = engine.FormatPercent(score)
	}
	return chartResult(cfg, c,
		stat("Planned", engine.FormatInt(c.Planned)),
		stat("On Time", engine.FormatInt(c.OnTime)),
		stat("Delayed", engine.FormatInt(c.Delayed)),
		stat("Cancelled", engine.FormatInt(c.Cancelled)),
		stat("Cancellation Rate", cancelled),
	), nil
}

func monthChanges(title, name string, reduce func([]dataset.JourneyRow) []metrics.MonthChange) ComputeFunc {
	return func(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
		changes := reduce(rows)
		labels := make([]string, len(changes))
		values := make([]float64, len(changes))
		for i, mc := range changes {
			labels[i] = mc.Month
			values[i] = float64(mc.Count)
		}
		cfg := engine.BuildSeriesChart(engine.ChartSpec{
			Type: engine.ChartLine, Title: title, XAxis: "Month", YAxis: "Journeys",
		}, []engine.ChartSeries{series(name, labels, values, state.Get(filter.DimMonth))})

		res := chartResult(cfg, changes)
		if n := len(changes); n > 1 {
			last := changes[n-1]
			res.Summary = fmt.Sprintf("%s: %d journeys, %+.2f%% on %s.", last.Name, last.Count, last.PercentChange, changes[n-2].Name)
		}
		return res, nil
	}
}

func reliability(rows []dataset.JourneyRow, _ filter.State) (*engine.Result, error) {
	r := metrics.ReliabilityScores(rows)
	cfg := engine.BuildSeriesChart(engine.ChartSpec{Type: engine.ChartGauge, Title: "Reliability Score"},
		[]engine.ChartSeries{series("Reliability", []string{"Current"}, []float64{r.Current}, "")})
	return chartResult(cfg, r, stat("Current", engine.FormatPercent(r.Current))), nil
}

func leadingCauses(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	causes := metrics.LeadingCauses(rows)
	table := engine.BuildTable("Leading Causes of Cancellation",
		[]engine.Column{
			engine.TextColumn("reason", "Reason"),
			engine.NumberColumn("passengers", "Passengers"),
			engine.NumberColumn("revenue", "Revenue Affected"),
		}, nil)
	var passengers int
	var revenue float64
	for _, c := range causes {
		table.Rows = append(table.Rows, []string{c.Reason, engine.FormatInt(c.Passengers), money(c.Revenue)})
		passengers += c.Passengers
		revenue += c.Revenue
	}
	table.Summary = &engine.Summary{
		Label: "Total",
		Values: map[string]string{
			"passengers": engine.FormatInt(passengers),
			"revenue":    money(revenue),
		},
	}
	return tableResult(table, causes), nil
}

func disruptions(dates []string) ComputeFunc {
	return func(rows []dataset.JourneyRow, _ filter.State) (*engine.Result, error) {
		days := metrics.DisruptionTable(rows, dates)
		columns := []engine.Column{
			engine.TextColumn("date", "Date"),
			engine.NumberColumn("journeys", "Journeys"),
			engine.NumberColumn("cancellation", "Cancelled"),
		}
		for _, reason := range metrics.DisruptionReasons {
			columns = append(columns, engine.NumberColumn(reason, reason))
		}
		table := engine.BuildTable("Disruption Days", columns, nil)
		for _, d := range days {
			row := []string{d.Date, engine.FormatInt(d.Journeys), percentCell(d.Cancellation)}
			for _, reason := range metrics.DisruptionReasons {
				row = append(row, percentCell(d.Reasons[reason]))
			}
			table.Rows = append(table.Rows, row)
		}
		return tableResult(table, days), nil
	}
}

func stationFlows(origins, destinations []string) ComputeFunc {
	return func(rows []dataset.JourneyRow, _ filter.State) (*engine.Result, error) {
		f := metrics.StationFlows(rows, origins, destinations)
		table := engine.BuildTable("Station Flows",
			[]engine.Column{
				engine.TextColumn("stage", "Stage"),
				engine.TextColumn("source", "From"),
				engine.TextColumn("target", "To"),
				engine.NumberColumn("count", "Journeys"),
			}, nil)
		for _, l := range f.Links {
			table.Rows = append(table.Rows, []string{
				f.Stages[l.Stage] + " → " + f.Stages[l.Stage+1],
				l.Source, l.Target, engine.FormatInt(l.Count),
			})
		}
		return tableResult(table, f, stat("Journeys", engine.FormatInt(f.Total))), nil
	}
}
