package dashboard

import (
	"fmt"

	"github.com/spektr-org/railpulse/clock"
	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
	"github.com/spektr-org/railpulse/filter"
	"github.com/spektr-org/railpulse/metrics"
)

// JourneyPanels are the passenger-journey section of the dashboard.
func JourneyPanels(s Settings) []Panel {
	return []Panel{
		{Name: "journey-trend", Compute: journeyTrend},
		{Name: "railcards", Compute: railcards},
		{Name: "ticket-mix", Compute: ticketMix},
		{Name: "busiest-slots", Compute: busiestSlots},
		{Name: "peak-hours", Compute: peakHours},
		{Name: "top-departures", Scope: filter.Scope{Side: filter.Departure}, Compute: topStations(filter.Departure, s.TopStations)},
		{Name: "top-arrivals", Scope: filter.Scope{Side: filter.Arrival}, Compute: topStations(filter.Arrival, s.TopStations)},
	}
}

func journeyTrend(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	monthly := metrics.MonthlyJourneys(rows)
	cfg := engine.BuildSeriesChart(engine.ChartSpec{
		Type: engine.ChartLine, Title: "Journeys per Month", XAxis: "Month", YAxis: "Journeys",
	}, []engine.ChartSeries{monthSeries("Journeys", monthly, state)})

	res := chartResult(cfg, monthly, stat("Journeys", engine.FormatInt(len(rows))))
	if n := len(monthly); n > 0 {
		res.Summary = metrics.TrendSummary(monthly).Describe(monthly[0].Month, monthly[n-1].Month)
	}
	return res, nil
}

func railcards(rows []dataset.JourneyRow, _ filter.State) (*engine.Result, error) {
	rc := metrics.RailcardSplit(rows)
	cfg := engine.BuildSeriesChart(engine.ChartSpec{Type: engine.ChartPie, Title: "Railcard Holders"},
		[]engine.ChartSeries{series("Passengers",
			[]string{"Railcard", "No Railcard"},
			[]float64{float64(rc.Holders), float64(rc.None)}, "")})
	return chartResult(cfg, rc,
		stat("Holders", engine.FormatInt(rc.Holders)),
		stat("Without", engine.FormatInt(rc.None)),
	), nil
}

func ticketMix(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	mix := metrics.TicketMix(rows)
	table := engine.BuildTable("Ticket Class and Type",
		[]engine.Column{
			engine.TextColumn("split", "Split"),
			engine.TextColumn("key", "Ticket"),
			engine.NumberColumn("count", "Journeys"),
			engine.NumberColumn("percent", "Share"),
		}, nil)
	add := func(split string, counts []metrics.Count) {
		for _, c := range counts {
			table.Rows = append(table.Rows, []string{split, c.Key, engine.FormatInt(c.Count), percentCell(c.Percent)})
		}
	}
	add("Class", mix.Classes)
	add("Type", mix.Types)
	return tableResult(table, mix), nil
}

func busiestSlots(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	slots := metrics.BusiestSlots(rows, state.TimeBucket())
	labels := make([]string, len(slots))
	values := make([]float64, len(slots))
	for i, sl := range slots {
		labels[i] = sl.Label
		values[i] = float64(sl.Count)
	}
	start := clock.FormatMinutes(metrics.SlotWindow(state.TimeBucket()))
	cfg := engine.BuildSeriesChart(engine.ChartSpec{
		Type: engine.ChartBar, Title: "Busiest Departure Slots from " + start, XAxis: "Slot", YAxis: "Departures",
	}, []engine.ChartSeries{series("Departures", labels, values, "")})
	return chartResult(cfg, slots), nil
}

func peakHours(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	p := metrics.PeakHours(rows, state.TimeBucket())
	values := make([]float64, len(p.Counts))
	for i, c := range p.Counts {
		values[i] = float64(c)
	}
	cfg := engine.BuildSeriesChart(engine.ChartSpec{
		Type: engine.ChartBar, Title: "Departures by Hour", XAxis: "Hour", YAxis: "Departures",
	}, []engine.ChartSeries{series("Departures", p.Labels, values, "")})
	return chartResult(cfg, p), nil
}

func topStations(side filter.Side, n int) ComputeFunc {
	title := "Busiest Departure Stations"
	if side == filter.Arrival {
		title = "Busiest Arrival Stations"
	}
	return func(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
		peaks := metrics.TopStations(rows, side, n)
		labels := make([]string, len(peaks))
		values := make([]float64, len(peaks))
		for i, p := range peaks {
			labels[i] = p.Station
			values[i] = float64(p.Count)
		}
		cfg := engine.BuildSeriesChart(engine.ChartSpec{
			Type: engine.ChartBar, Title: title, XAxis: "Station", YAxis: "Journeys at peak time",
		}, []engine.ChartSeries{series("Journeys", labels, values, state.Get(filter.DimStation))})

		res := chartResult(cfg, peaks)
		if len(peaks) > 0 {
			res.Summary = fmt.Sprintf("%s peaks at %s with %d journeys.", peaks[0].Station, peaks[0].Time, peaks[0].Count)
		}
		return res, nil
	}
}
