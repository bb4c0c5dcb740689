package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spektr-org/railpulse/dashboard"
	"github.com/spektr-org/railpulse/dataset"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "railpulse.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Files().Journeys != "data/railway.csv" {
		t.Errorf("journeys = %q", cfg.Files().Journeys)
	}
	if _, ok := cfg.Source().(dataset.DirSource); !ok {
		t.Errorf("source = %T, want DirSource", cfg.Source())
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
data:
  base_url: https://example.org/rail
dashboard:
  top_stations: 3
render:
  format: csv
  out_dir: report
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dashboard.TopStations != 3 || cfg.Dashboard.TopRoutes != 5 {
		t.Errorf("top = %d/%d", cfg.Dashboard.TopStations, cfg.Dashboard.TopRoutes)
	}
	if cfg.Dashboard.ReferenceCountry != "UK" {
		t.Errorf("reference = %q", cfg.Dashboard.ReferenceCountry)
	}
	if _, ok := cfg.Source().(*dataset.HTTPSource); !ok {
		t.Errorf("source = %T, want *HTTPSource", cfg.Source())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"format", "render:\n  format: gif\n", "Format"},
		{"date", "dashboard:\n  disruption_dates: [\"2024-13-40\"]\n", "DisruptionDates"},
		{"palette", "render:\n  palette:\n    punctuality: [\"#fff\", \"red\", \"#000\", \"#111\"]\n", "Punctuality"},
		{"override range", "dashboard:\n  similarity_override:\n    DE: 1.5\n", "SimilarityOverride"},
		{"top", "dashboard:\n  top_routes: -1\n", "TopRoutes"},
		{"url", "data:\n  base_url: not a url\n", "BaseURL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDashboardOptions(t *testing.T) {
	path := writeConfig(t, `
dashboard:
  reference_country: FR
  lowest_punctuality: 2
  similarity_countries:
    - {code: DE, name: Germany}
  similarity_override:
    DE: 0.56
render:
  palette:
    cancellation: ["#eeeeee", "#cccccc", "#999999", "#333333"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	d := dashboard.New(dataset.NewStore(nil, nil), cfg.DashboardOptions()...)
	s := d.Settings()
	if s.Reference != "FR" || s.LowestPunctuality != 2 {
		t.Errorf("settings = %+v", s)
	}
	if len(s.SimilarityTargets) != 1 || s.SimilarityTargets[0].Name != "Germany" {
		t.Errorf("targets = %+v", s.SimilarityTargets)
	}
	if len(s.SimilarityHooks) != 1 {
		t.Errorf("hooks = %d, want 1", len(s.SimilarityHooks))
	}
	if s.CancellationScale.Colors[3] != "#333333" {
		t.Errorf("palette = %v", s.CancellationScale.Colors)
	}

	// Without a table the override stays off.
	d = dashboard.New(dataset.NewStore(nil, nil), Default().DashboardOptions()...)
	if n := len(d.Settings().SimilarityHooks); n != 0 {
		t.Errorf("default hooks = %d", n)
	}
}
