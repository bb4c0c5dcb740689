package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from prepared series
// ============================================================================

// DefaultColors is the dashboard palette, darkest first.
var DefaultColors = []string{
	"#1e3a8a", "#b6b7d8", "#8e8fc7", "#6668b5", "#a5b4fc",
	"#e0e7ef", "#888888", "#374151",
}

// ChartSpec names and labels a chart.
type ChartSpec struct {
	Type       string
	Title      string
	XAxis      string
	YAxis      string
	SeriesName string
}

// BuildSeriesChart wraps prepared series into a ChartConfig.
func BuildSeriesChart(spec ChartSpec, series []ChartSeries) *ChartConfig {
	chartType := spec.Type
	if chartType == "" {
		chartType = ChartBar
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      spec.Title,
		XAxis:      spec.XAxis,
		YAxis:      spec.YAxis,
		Series:     series,
		ShowLegend: len(series) > 1 || chartType == ChartPie,
		ShowGrid:   chartType != ChartPie && chartType != ChartGauge,
	}
	config.Colors = assignColors(len(series))
	for i := range config.Series {
		if config.Series[i].Color == "" {
			config.Series[i].Color = config.Colors[i]
		}
	}
	return config
}

// Points converts parallel label/value slices into chart points.
func Points(labels []string, values []float64) []ChartPoint {
	n := len(labels)
	if len(values) < n {
		n = len(values)
	}
	points := make([]ChartPoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, ChartPoint{Label: labels[i], Value: RoundTo2(values[i])})
	}
	return points
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = DefaultColors[i%len(DefaultColors)]
	}
	return colors
}
