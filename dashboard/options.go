package dashboard

import (
	"github.com/spektr-org/railpulse/metrics"
)

// ============================================================================
// DASHBOARD OPTIONS — Functional options for New()
// ============================================================================

// Settings tune the built-in panels.
type Settings struct {
	Reference         string                     // country compared against the rest of Europe
	SimilarityTargets []metrics.SimilarityTarget // countries in the similarity flower
	SimilarityHooks   []metrics.SimilarityHook   // display post-processing, none by default
	TopStations       int
	TopRoutes         int
	TopCancellations  int
	LowestPunctuality int
	DisruptionDates   []string // YYYY-MM-DD
	FlowOrigins       []string // station prefixes kept on the origin side of the flows panel
	FlowDestinations  []string
	PunctualityScale  metrics.ThresholdScale
	CancellationScale metrics.ThresholdScale
}

// DefaultSettings returns the stock dashboard layout.
func DefaultSettings() Settings {
	return Settings{
		Reference:         "UK",
		SimilarityTargets: metrics.DefaultSimilarityTargets,
		TopStations:       7,
		TopRoutes:         5,
		TopCancellations:  5,
		LowestPunctuality: 3,
		DisruptionDates:   metrics.DefaultDisruptionDates,
		FlowOrigins:       []string{"London", "Manchester", "Liverpool"},
		PunctualityScale:  metrics.PunctualityScale,
		CancellationScale: metrics.CancellationScale,
	}
}

// Option configures a Dashboard via the functional options pattern.
type Option func(*options)

type options struct {
	settings Settings
	sink     Sink
}

// WithSink sets the sink the built-in panels render to when mounted with
// MountDefaults.
func WithSink(sink Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithSettings replaces the panel settings wholesale.
func WithSettings(s Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithReference sets the country the operator panels compare with Europe.
func WithReference(country string) Option {
	return func(o *options) {
		o.settings.Reference = country
	}
}

// WithSimilarityTargets sets the countries of the similarity flower.
func WithSimilarityTargets(targets []metrics.SimilarityTarget) Option {
	return func(o *options) {
		o.settings.SimilarityTargets = targets
	}
}

// WithSimilarityOverride shows fixed display values instead of computed
// similarities. Raw and normalized values stay available in the detail.
func WithSimilarityOverride(table map[string]float64, fallback float64) Option {
	return func(o *options) {
		o.settings.SimilarityHooks = append(o.settings.SimilarityHooks, metrics.OverrideTable(table, fallback))
	}
}

// WithTopN sets the list lengths of the station, route and ranking panels.
// Zero keeps the current value.
func WithTopN(stations, routes, cancellations int) Option {
	return func(o *options) {
		if stations > 0 {
			o.settings.TopStations = stations
		}
		if routes > 0 {
			o.settings.TopRoutes = routes
		}
		if cancellations > 0 {
			o.settings.TopCancellations = cancellations
		}
	}
}

// WithLowestPunctuality sets how many countries the lowest-punctuality
// panel lists. Zero keeps the current value.
func WithLowestPunctuality(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.settings.LowestPunctuality = n
		}
	}
}

// WithDisruptionDates sets the days of the disruption table.
func WithDisruptionDates(dates []string) Option {
	return func(o *options) {
		o.settings.DisruptionDates = dates
	}
}

// WithPalette recolors the threshold charts. A palette that does not have
// four colors is ignored.
func WithPalette(punctuality, cancellation []string) Option {
	return func(o *options) {
		if len(punctuality) == len(o.settings.PunctualityScale.Thresholds) {
			o.settings.PunctualityScale.Colors = punctuality
		}
		if len(cancellation) == len(o.settings.CancellationScale.Thresholds) {
			o.settings.CancellationScale.Colors = cancellation
		}
	}
}

// applyOptions creates the dashboard options from functional options.
func applyOptions(opts []Option) *options {
	o := &options{settings: DefaultSettings()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
