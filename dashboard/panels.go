package dashboard

import (
	"fmt"

	"github.com/spektr-org/railpulse/engine"
	"github.com/spektr-org/railpulse/filter"
	"github.com/spektr-org/railpulse/metrics"
)

// Currency symbol used by every money figure.
const Currency = "£"

// ============================================================================
// RESULT HELPERS
// ============================================================================

func chartResult(cfg *engine.ChartConfig, detail interface{}, stats ...engine.Stat) *engine.Result {
	return &engine.Result{
		Type:        engine.TypeChart,
		Title:       cfg.Title,
		ChartConfig: cfg,
		Stats:       stats,
		Detail:      detail,
	}
}

func tableResult(table *engine.TableData, detail interface{}, stats ...engine.Stat) *engine.Result {
	return &engine.Result{
		Type:      engine.TypeTable,
		Title:     table.Title,
		TableData: table,
		Stats:     stats,
		Detail:    detail,
	}
}

func textResult(title string, data *engine.TextData, detail interface{}, stats ...engine.Stat) *engine.Result {
	return &engine.Result{
		Type:   engine.TypeText,
		Title:  title,
		Data:   data,
		Stats:  stats,
		Detail: detail,
	}
}

func stat(label, value string) engine.Stat {
	return engine.Stat{Label: label, Value: value}
}

// series builds one chart series from parallel labels and values, marking
// the point whose label equals selected.
func series(name string, labels []string, values []float64, selected string) engine.ChartSeries {
	points := engine.Points(labels, values)
	for i := range points {
		points[i].Selected = selected != "" && points[i].Label == selected
	}
	return engine.ChartSeries{Name: name, Data: points}
}

func monthSeries(name string, mvs []metrics.MonthValue, state filter.State) engine.ChartSeries {
	labels := make([]string, len(mvs))
	values := make([]float64, len(mvs))
	for i, mv := range mvs {
		labels[i] = mv.Month
		values[i] = mv.Value
	}
	return series(name, labels, values, state.Get(filter.DimMonth))
}

func revenueSeries(name string, revs []metrics.Revenue, selected string) engine.ChartSeries {
	labels := make([]string, len(revs))
	values := make([]float64, len(revs))
	for i, r := range revs {
		labels[i] = r.Key
		values[i] = r.Value
	}
	return series(name, labels, values, selected)
}

func countSeries(name string, counts []metrics.Count, selected string) engine.ChartSeries {
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i] = c.Key
		values[i] = float64(c.Count)
	}
	return series(name, labels, values, selected)
}

func money(v float64) string { return engine.FormatCurrency(v, Currency) }

func percentCell(v float64) string { return fmt.Sprintf("%.2f%%", v) }
