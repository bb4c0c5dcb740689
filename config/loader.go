// Package config loads the railpulse YAML configuration and maps it onto
// the dataset source and dashboard options.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/railpulse/dashboard"
	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/metrics"
)

// Default returns the configuration used when no file is given.
func Default() AppConfig {
	s := dashboard.DefaultSettings()
	targets := make([]Target, len(s.SimilarityTargets))
	for i, t := range s.SimilarityTargets {
		targets[i] = Target{Code: t.Code, Name: t.Name}
	}
	return AppConfig{
		Data: DataConfig{
			Operators: "data/european_train_punctuality.csv",
			Journeys:  "data/railway.csv",
			Root:      ".",
			Timeout:   30 * time.Second,
		},
		Dashboard: DashboardConfig{
			ReferenceCountry:    s.Reference,
			SimilarityCountries: targets,
			OverrideFallback:    0.5,
			TopStations:         s.TopStations,
			TopRoutes:           s.TopRoutes,
			TopCancellations:    s.TopCancellations,
			LowestPunctuality:   s.LowestPunctuality,
			DisruptionDates:     append([]string(nil), s.DisruptionDates...),
		},
		Render: RenderConfig{
			OutDir: "out",
			Format: "svg",
		},
	}
}

// Load reads path over the defaults and validates the result. An empty path
// returns the defaults.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	log.Printf("⚙️  railpulse: loaded config %s", path)
	return cfg, nil
}

// Validate checks every struct tag of the configuration.
func (c AppConfig) Validate() error {
	v := validator.New()
	return v.Struct(c)
}

// InitLogging sends the standard logger to stderr with microsecond stamps so
// stdout stays free for command output.
func InitLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

// ============================================================================
// MAPPING
// ============================================================================

// Source returns the dataset source: HTTP when a base URL is set, the local
// root otherwise.
func (c AppConfig) Source() dataset.Source {
	if c.Data.BaseURL != "" {
		return dataset.NewHTTPSource(c.Data.BaseURL, c.Data.Timeout)
	}
	return dataset.DirSource{Root: c.Data.Root}
}

// Files names the two datasets within Source.
func (c AppConfig) Files() dataset.Files {
	return dataset.Files{Operators: c.Data.Operators, Journeys: c.Data.Journeys}
}

// DashboardOptions maps the dashboard and palette sections onto dashboard
// options. The similarity override is only enabled by a non-empty table.
func (c AppConfig) DashboardOptions() []dashboard.Option {
	d := c.Dashboard
	opts := []dashboard.Option{
		dashboard.WithReference(d.ReferenceCountry),
		dashboard.WithTopN(d.TopStations, d.TopRoutes, d.TopCancellations),
		dashboard.WithLowestPunctuality(d.LowestPunctuality),
		dashboard.WithPalette(c.Render.Palette.Punctuality, c.Render.Palette.Cancellation),
	}
	if len(d.SimilarityCountries) > 0 {
		targets := make([]metrics.SimilarityTarget, len(d.SimilarityCountries))
		for i, t := range d.SimilarityCountries {
			targets[i] = metrics.SimilarityTarget{Code: t.Code, Name: t.Name}
		}
		opts = append(opts, dashboard.WithSimilarityTargets(targets))
	}
	if len(d.DisruptionDates) > 0 {
		opts = append(opts, dashboard.WithDisruptionDates(d.DisruptionDates))
	}
	if len(d.SimilarityOverride) > 0 {
		opts = append(opts, dashboard.WithSimilarityOverride(d.SimilarityOverride, d.OverrideFallback))
	}
	return opts
}
