package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spektr-org/railpulse/dashboard"
	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/filter"
)

func journeys() []dataset.JourneyRow {
	price := func(v float64) dataset.Number { return dataset.Number{Value: v, Valid: true} }
	return []dataset.JourneyRow{
		{DepartureStation: "York", ArrivalStation: "Leeds", DepartureTime: "07:10", DateOfJourney: "2024-01-05",
			JourneyStatus: "On Time", TicketClass: "Standard", TicketType: "Advance", Price: price(10)},
		{DepartureStation: "York", ArrivalStation: "London Kings Cross", DepartureTime: "17:30", DateOfJourney: "2024-01-06",
			JourneyStatus: "On Time", TicketClass: "First Class", TicketType: "Anytime", Price: price(90)},
		{DepartureStation: "Leeds", ArrivalStation: "York", DepartureTime: "08:00", DateOfJourney: "2024-02-01",
			JourneyStatus: "On Time", TicketClass: "Standard", TicketType: "Off-Peak", Price: price(7)},
	}
}

func TestParseScript(t *testing.T) {
	script, err := ParseScript(strings.NewReader(`
panels: [top-departures]
steps:
  - {dimension: station, value: York}
  - {dimension: time, value: AM, mode: set}
  - {mode: reset}
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Steps) != 3 || script.Steps[2].String() != "reset" {
		t.Errorf("steps = %+v", script.Steps)
	}
	if got := script.Steps[0].String(); got != `toggle station="York"` {
		t.Errorf("step 1 = %s", got)
	}
}

func TestParseScriptRejects(t *testing.T) {
	tests := map[string]string{
		"no steps":          "panels: [x]\n",
		"unknown mode":      "steps:\n  - {dimension: station, value: York, mode: hover}\n",
		"missing dimension": "steps:\n  - {value: York}\n",
		"unknown dimension": "steps:\n  - {dimension: platform, value: '3'}\n",
		"not yaml":          "steps: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseScript(strings.NewReader(body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestReplay(t *testing.T) {
	script := &Script{
		Panels: []string{"top-departures"},
		Steps: []Step{
			{Dimension: string(filter.DimStation), Value: "York"},
			{Dimension: string(filter.DimTicketClass), Value: "Economy"},
			{Dimension: string(filter.DimStation), Value: "York"},
		},
	}
	dash := dashboard.New(dataset.NewStore(nil, journeys()))

	var buf bytes.Buffer
	if err := Replay(dash, script, &buf); err != nil {
		t.Fatal(err)
	}

	dec := json.NewDecoder(&buf)
	var frames []frame
	for dec.More() {
		var f struct {
			Step    int               `json:"step"`
			Version uint64            `json:"version"`
			Filters map[string]string `json:"filters"`
			Results []json.RawMessage `json:"results"`
			Errors  []string          `json:"errors"`
		}
		if err := dec.Decode(&f); err != nil {
			t.Fatal(err)
		}
		frames = append(frames, frame{Step: f.Step, Version: f.Version, Errors: f.Errors})
		switch f.Step {
		case 1:
			if f.Filters["station"] != "York" || len(f.Results) != 1 {
				t.Errorf("frame 1 = %+v", f)
			}
		case 3:
			if len(f.Filters) != 0 {
				t.Errorf("second click should clear the station: %v", f.Filters)
			}
		}
	}
	if len(frames) != 3 {
		t.Fatalf("frames = %d", len(frames))
	}
	if len(frames[1].Errors) == 0 || frames[1].Version != frames[0].Version {
		t.Errorf("invalid class should be reported without a new version: %+v", frames[1])
	}
	if frames[2].Version != 2 {
		t.Errorf("version = %d, want 2", frames[2].Version)
	}
}

func TestFilterFlagsApply(t *testing.T) {
	store := filter.NewStore()
	f := filterFlags{Station: "York", Time: "ALL", Month: "2024-01"}
	if err := f.apply(store); err != nil {
		t.Fatal(err)
	}
	s := store.Snapshot()
	if s.Get(filter.DimStation) != "York" || s.Get(filter.DimMonth) != "2024-01" || s.Get(filter.DimTime) != "" {
		t.Errorf("state = %s", s)
	}
	if err := (filterFlags{Class: "Economy"}).apply(store); err == nil {
		t.Error("invalid class should fail")
	}
}
