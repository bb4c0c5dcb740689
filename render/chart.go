package render

import (
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spektr-org/railpulse/engine"
)

// ============================================================================
// CHART OUTPUT — go-chart SVG / PNG
// ============================================================================
// Bar, bullet and gauge charts with one series render as bar charts, pies as
// pie charts, and line charts or multi-series bars as line charts with one
// line per series.
// ============================================================================

// ChartSink writes chart results to <Dir>/<name>.svg or .png.
type ChartSink struct {
	Dir    string
	Format string // FormatSVG or FormatPNG
	Width  int
	Height int
}

func (s *ChartSink) Render(result *engine.Result) error {
	if result.ChartConfig == nil || len(result.Errors) > 0 {
		return ErrNothingToRender
	}
	format := s.Format
	if format == "" {
		format = FormatSVG
	}

	f, err := create(s.Dir, result.Name, format)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteChart(f, result.ChartConfig, format, s.Width, s.Height); err != nil {
		return fmt.Errorf("render %s: %w", result.Name, err)
	}
	log.Printf("📊 railpulse: wrote %s", f.Name())
	return f.Close()
}

// WriteChart renders cfg in format ("svg" or "png"). It returns
// ErrNothingToRender when there is no non-zero value to draw.
func WriteChart(w io.Writer, cfg *engine.ChartConfig, format string, width, height int) error {
	if !hasValues(cfg) {
		return ErrNothingToRender
	}
	provider := chart.SVG
	if format == FormatPNG {
		provider = chart.PNG
	}
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 512
	}

	switch {
	case cfg.ChartType == engine.ChartPie:
		return pieChart(cfg, width, height).Render(provider, w)
	case cfg.ChartType == engine.ChartLine || len(cfg.Series) > 1:
		return lineChart(cfg, width, height).Render(provider, w)
	default:
		return barChart(cfg, width, height).Render(provider, w)
	}
}

func hasValues(cfg *engine.ChartConfig) bool {
	for _, s := range cfg.Series {
		for _, p := range s.Data {
			if p.Value != 0 {
				return true
			}
		}
	}
	return false
}

func barChart(cfg *engine.ChartConfig, width, height int) chart.BarChart {
	s := cfg.Series[0]
	bars := make([]chart.Value, 0, len(s.Data))
	for _, p := range s.Data {
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: fill(pointColor(p, s.Color), p.Selected),
		})
	}

	bw := barWidth(width, len(bars))
	bc := chart.BarChart{
		Title:      cfg.Title,
		Width:      width,
		Height:     height,
		BarWidth:   bw,
		BarSpacing: bw / 2,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		Bars:       bars,
	}
	if cfg.ChartType == engine.ChartGauge {
		bc.YAxis = chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 100}}
	}
	return bc
}

func pieChart(cfg *engine.ChartConfig, width, height int) chart.PieChart {
	s := cfg.Series[0]
	values := make([]chart.Value, 0, len(s.Data))
	for i, p := range s.Data {
		if p.Value <= 0 {
			continue
		}
		hex := p.Color
		if hex == "" {
			hex = engine.DefaultColors[i%len(engine.DefaultColors)]
		}
		values = append(values, chart.Value{Label: p.Label, Value: p.Value, Style: fill(hex, p.Selected)})
	}
	return chart.PieChart{
		Title:  cfg.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
}

func lineChart(cfg *engine.ChartConfig, width, height int) chart.Chart {
	labels := cfg.Series[0].Data
	ticks := make([]chart.Tick, 0, len(labels))
	for i, p := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: p.Label})
	}

	// go-chart takes the X range from explicit ticks, so one point needs a
	// second, blank tick.
	if len(ticks) == 1 {
		ticks = append(ticks, chart.Tick{Value: 1, Label: ""})
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	series := make([]chart.Series, 0, len(cfg.Series))
	for _, s := range cfg.Series {
		xs := make([]float64, len(s.Data))
		ys := make([]float64, len(s.Data))
		for i, p := range s.Data {
			xs[i] = float64(i)
			ys[i] = p.Value
			lo, hi = math.Min(lo, p.Value), math.Max(hi, p.Value)
		}
		// go-chart needs two X values to build a range.
		if len(xs) == 1 {
			xs = append(xs, 1)
			ys = append(ys, ys[0])
		}
		c := color(s.Color)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: 2,
				StrokeColor: c,
				DotWidth:    3,
				DotColor:    c,
			},
		})
	}

	ch := chart.Chart{
		Title:      cfg.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 48}},
		XAxis:      chart.XAxis{Name: cfg.XAxis, Ticks: ticks},
		YAxis:      chart.YAxis{Name: cfg.YAxis},
		Series:     series,
	}
	// A flat chart has no Y delta; anchor it at zero.
	if lo == hi {
		ch.YAxis.Range = &chart.ContinuousRange{Min: math.Min(0, lo), Max: math.Max(0, hi)}
	}
	if cfg.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

func pointColor(p engine.ChartPoint, fallback string) string {
	if p.Color != "" {
		return p.Color
	}
	return fallback
}

func fill(hex string, selected bool) chart.Style {
	c := color(hex)
	st := chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
	if selected {
		st.StrokeColor = drawing.ColorBlack
		st.StrokeWidth = 3
	}
	return st
}

func color(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if hex == "" {
		hex = strings.TrimPrefix(engine.DefaultColors[0], "#")
	}
	return drawing.ColorFromHex(hex)
}

func barWidth(width, n int) int {
	if n == 0 {
		return 40
	}
	w := (width - 120) / (n * 2)
	if w < 8 {
		return 8
	}
	if w > 80 {
		return 80
	}
	return w
}
