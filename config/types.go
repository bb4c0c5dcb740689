package config

import (
	"time"
)

// DataConfig locates the two CSV datasets.
type DataConfig struct {
	Operators string        `yaml:"operators"`
	Journeys  string        `yaml:"journeys"`
	Root      string        `yaml:"root"`
	BaseURL   string        `yaml:"base_url" validate:"omitempty,url"` // switches to the HTTP source
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
}

// Target is a country in the similarity flower.
type Target struct {
	Code string `yaml:"code" validate:"required,len=2"`
	Name string `yaml:"name"`
}

// DashboardConfig tunes the built-in panels.
type DashboardConfig struct {
	ReferenceCountry    string             `yaml:"reference_country"`
	SimilarityCountries []Target           `yaml:"similarity_countries" validate:"dive"`
	SimilarityOverride  map[string]float64 `yaml:"similarity_override" validate:"omitempty,dive,keys,len=2,endkeys,gte=0,lte=1"`
	OverrideFallback    float64            `yaml:"override_fallback" validate:"gte=0,lte=1"`
	TopStations         int                `yaml:"top_stations" validate:"gt=0"`
	TopRoutes           int                `yaml:"top_routes" validate:"gt=0"`
	TopCancellations    int                `yaml:"top_cancellations" validate:"gt=0"`
	LowestPunctuality   int                `yaml:"lowest_punctuality" validate:"gt=0"`
	DisruptionDates     []string           `yaml:"disruption_dates" validate:"dive,datetime=2006-01-02"`
}

// Palette recolors the threshold charts, lightest band first.
type Palette struct {
	Punctuality  []string `yaml:"punctuality" validate:"omitempty,len=4,dive,hexcolor"`
	Cancellation []string `yaml:"cancellation" validate:"omitempty,len=4,dive,hexcolor"`
}

// RenderConfig controls file output.
type RenderConfig struct {
	OutDir  string  `yaml:"out_dir"`
	Format  string  `yaml:"format" validate:"oneof=svg png csv json"`
	Width   int     `yaml:"width" validate:"gte=0"`
	Height  int     `yaml:"height" validate:"gte=0"`
	Palette Palette `yaml:"palette"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Data      DataConfig      `yaml:"data"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Render    RenderConfig    `yaml:"render"`
}
