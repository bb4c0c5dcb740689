package dashboard

import (
	"fmt"

	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
	"github.com/spektr-org/railpulse/filter"
	"github.com/spektr-org/railpulse/metrics"
)

// RevenuePanels are the revenue section of the dashboard.
func RevenuePanels(s Settings) []Panel {
	return []Panel{
		{Name: "revenue-headline", Compute: revenueHeadline},
		{Name: "revenue-trend", Compute: revenueTrend},
		{Name: "revenue-by-type", Compute: revenueByType},
		{Name: "status-revenue", Compute: statusRevenue},
		{Name: "status-refund", Compute: statusRefund},
		{Name: "station-revenue", Scope: filter.Scope{Side: filter.Departure}, Compute: stationRevenue(filter.Departure, s.TopStations)},
		{Name: "route-revenue", Compute: routeRevenue(s.TopRoutes)},
		// The delay bucket chart shows refunds of Delayed journeys only, so a
		// status selection elsewhere does not narrow it.
		{Name: "delay-refunds", Scope: filter.Scope{Ignore: []filter.Dimension{filter.DimJourneyStatus}}, Compute: delayRefunds},
	}
}

func revenueHeadline(rows []dataset.JourneyRow, _ filter.State) (*engine.Result, error) {
	view := dataset.JourneyAdapter.Bind(rows)
	data := engine.BuildText(view, dataset.KeyMonth, dataset.KeyPrice, engine.AggSum, Currency)
	data.Growth = engine.BuildGrowthText(view, dataset.KeyMonth, dataset.KeyPrice, engine.AggSum, Currency).Growth

	var refunds float64
	for _, r := range rows {
		refunds += r.RefundAmount()
	}
	return textResult("Total Revenue", data, nil,
		stat("Revenue", data.Value),
		stat("Refunds", money(refunds)),
		stat("Net", money(data.RawValue-refunds)),
	), nil
}

func revenueTrend(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	t := metrics.RevenueTrend(rows)
	selected := state.Get(filter.DimMonth)
	cfg := engine.BuildSeriesChart(engine.ChartSpec{
		Type: engine.ChartLine, Title: "Revenue and Refunds per Month", XAxis: "Month", YAxis: "Amount (" + Currency + ")",
	}, []engine.ChartSeries{
		series("Revenue", t.Months, t.Revenue, selected),
		series("Refund", t.Months, t.Refund, selected),
	})
	res := chartResult(cfg, t)
	if n := len(t.Months); n > 0 {
		var mvs []metrics.MonthValue
		for i, m := range t.Months {
			mvs = append(mvs, metrics.MonthValue{Month: m, Value: t.Revenue[i]})
		}
		sum := metrics.TrendSummary(mvs)
		res.Summary = fmt.Sprintf("Revenue peaked in %s and was lowest in %s.", metrics.MonthName(sum.Highest), metrics.MonthName(sum.Lowest))
	}
	return res, nil
}

func revenueByType(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	tr := metrics.MonthlyRevenueByType(rows)
	selected := state.Get(filter.DimMonth)
	var ss []engine.ChartSeries
	for _, t := range tr.Types {
		ss = append(ss, series(t, tr.Months, tr.Values[t], selected))
	}
	cfg := engine.BuildSeriesChart(engine.ChartSpec{
		Type: engine.ChartLine, Title: "Revenue by Ticket Type", XAxis: "Month", YAxis: "Revenue (" + Currency + ")",
	}, ss)
	return chartResult(cfg, tr), nil
}

func amountSeries(name string, amounts []metrics.Amount, selected string) engine.ChartSeries {
	labels := make([]string, len(amounts))
	values := make([]float64, len(amounts))
	for i, a := range amounts {
		labels[i] = a.Key
		values[i] = a.Value
	}
	return series(name, labels, values, selected)
}

func statusRevenue(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	amounts := metrics.StatusRevenue(rows)
	cfg := engine.BuildSeriesChart(engine.ChartSpec{Type: engine.ChartPie, Title: "Revenue by Journey Status"},
		[]engine.ChartSeries{amountSeries("Revenue", amounts, state.Get(filter.DimJourneyStatus))})
	return chartResult(cfg, amounts), nil
}

func statusRefund(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	amounts := metrics.StatusRefund(rows)
	cfg := engine.BuildSeriesChart(engine.ChartSpec{
		Type: engine.ChartBar, Title: "Refunds by Journey Status", XAxis: "Status", YAxis: "Refund (" + Currency + ")",
	}, []engine.ChartSeries{amountSeries("Refund", amounts, state.Get(filter.DimJourneyStatus))})
	return chartResult(cfg, amounts), nil
}

func stationRevenue(side filter.Side, n int) ComputeFunc {
	return func(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
		revs := metrics.StationRevenue(rows, side)
		if n > 0 && len(revs) > n {
			revs = revs[:n]
		}
		cfg := engine.BuildSeriesChart(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Revenue by " + side.String() + " station", XAxis: "Station", YAxis: "Revenue (" + Currency + ")",
		}, []engine.ChartSeries{revenueSeries("Revenue", revs, state.Get(filter.DimStation))})
		return chartResult(cfg, revs), nil
	}
}

func routeRevenue(n int) ComputeFunc {
	return func(rows []dataset.JourneyRow, _ filter.State) (*engine.Result, error) {
		top, bottom := metrics.TopBottomRoutes(rows, n)
		table := engine.BuildTable(fmt.Sprintf("Top and Bottom %d Routes by Revenue", n),
			[]engine.Column{
				engine.NumberColumn("rank", "#"),
				engine.TextColumn("top", "Top Route"),
				engine.NumberColumn("topRevenue", "Revenue"),
				engine.TextColumn("bottom", "Bottom Route"),
				engine.NumberColumn("bottomRevenue", "Revenue"),
			}, nil)
		for i := range top {
			table.Rows = append(table.Rows, []string{
				fmt.Sprintf("%d", i+1),
				top[i].Key, money(top[i].Value),
				bottom[i].Key, money(bottom[i].Value),
			})
		}
		return tableResult(table, map[string][]metrics.Revenue{"top": top, "bottom": bottom}), nil
	}
}

func delayRefunds(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error) {
	stats := metrics.DelayRefunds(rows)
	labels := make([]string, len(stats))
	revenue := make([]float64, len(stats))
	refund := make([]float64, len(stats))
	for i, s := range stats {
		labels[i] = s.Bucket
		revenue[i] = s.TotalRevenue
		refund[i] = s.Refund
	}
	selected := state.Get(filter.DimDelayBucket)
	cfg := engine.BuildSeriesChart(engine.ChartSpec{
		Type: engine.ChartBullet, Title: "Revenue and Refunds by Delay", XAxis: "Delay", YAxis: "Amount (" + Currency + ")",
	}, []engine.ChartSeries{
		series("Total Revenue", labels, revenue, selected),
		series("Refund", labels, refund, selected),
	})
	return chartResult(cfg, stats), nil
}
