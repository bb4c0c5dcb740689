package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/railpulse/dashboard"
	"github.com/spektr-org/railpulse/engine"
	"github.com/spektr-org/railpulse/filter"
)

// ============================================================================
// REPLAY — scripted clicks
// ============================================================================

// Step is one interaction of a replay script.
type Step struct {
	Dimension string `yaml:"dimension" validate:"required_unless=Mode reset"`
	Value     string `yaml:"value"`
	Mode      string `yaml:"mode" validate:"omitempty,oneof=toggle set clear reset"`
}

// Script is a sequence of interactions. Panels lists the panels printed
// after each step; empty prints every panel.
type Script struct {
	Panels []string `yaml:"panels"`
	Steps  []Step   `yaml:"steps" validate:"required,min=1,dive"`
}

// ParseScript decodes and validates a replay script.
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := validator.New().Struct(s); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	for i, step := range s.Steps {
		if step.Mode == "reset" {
			continue
		}
		if _, err := filter.ParseDimension(step.Dimension); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &s, nil
}

// apply performs step on dash, which notifies every consumer.
func (s Step) apply(dash *dashboard.Dashboard) error {
	dim := filter.Dimension(s.Dimension)
	switch s.Mode {
	case "reset":
		return dash.Reset()
	case "clear":
		return dash.Select(dim, "")
	case "set":
		return dash.Select(dim, s.Value)
	default:
		return dash.Click(dim, s.Value)
	}
}

func (s Step) String() string {
	mode := s.Mode
	if mode == "" {
		mode = "toggle"
	}
	if mode == "reset" {
		return mode
	}
	return fmt.Sprintf("%s %s=%q", mode, s.Dimension, s.Value)
}

// frame is what replay prints after each step.
type frame struct {
	Step    int              `json:"step"`
	Action  string           `json:"action"`
	Version uint64           `json:"version"`
	Filters filter.State     `json:"filters"`
	Results []*engine.Result `json:"results"`
	Errors  []string         `json:"errors,omitempty"`
}

// Replay runs script against dash, writing one frame per step to w. A step
// whose selection is rejected is reported in its frame and the script goes
// on.
func Replay(dash *dashboard.Dashboard, script *Script, w io.Writer) error {
	rec := dashboard.NewRecorder()
	if _, err := dash.Mount(rec, panelsFor(dash.Settings(), script.Panels)...); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	for i, step := range script.Steps {
		f := frame{Step: i + 1, Action: step.String()}
		if err := step.apply(dash); err != nil {
			f.Errors = append(f.Errors, err.Error())
		}
		f.Version = dash.Filters().Version()
		f.Filters = dash.Filters().Snapshot()
		f.Results = rec.Results()
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

// panelsFor returns the built-in panels named in names, all when empty.
func panelsFor(s dashboard.Settings, names []string) []dashboard.Panel {
	var all []dashboard.Panel
	all = append(all, dashboard.JourneyPanels(s)...)
	all = append(all, dashboard.RevenuePanels(s)...)
	all = append(all, dashboard.PerformancePanels(s)...)
	if len(names) == 0 {
		return all
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []dashboard.Panel
	for _, p := range all {
		if want[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

func runReplay(ctx context.Context, configPath, scriptPath string) error {
	f, err := os.Open(scriptPath)
	if err != nil {
		return err
	}
	defer f.Close()
	script, err := ParseScript(f)
	if err != nil {
		return err
	}

	cfg, store, err := load(ctx, configPath)
	if err != nil {
		return err
	}
	dash := dashboard.New(store, cfg.DashboardOptions()...)
	return Replay(dash, script, os.Stdout)
}
