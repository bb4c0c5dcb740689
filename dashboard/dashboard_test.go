package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
	"github.com/spektr-org/railpulse/filter"
	"github.com/spektr-org/railpulse/metrics"
	"github.com/spektr-org/railpulse/render"
)

// ── Test Data ──────────────────────────────────────────────────────────────

func num(v float64) dataset.Number { return dataset.Number{Value: v, Valid: true} }

func testJourneys() []dataset.JourneyRow {
	return []dataset.JourneyRow{
		{DepartureStation: "York", ArrivalStation: "London Kings Cross", DepartureTime: "07:10", ArrivalTime: "09:00", ActualArrivalTime: "09:20",
			DateOfJourney: "2024-01-05", JourneyStatus: "Delayed", TicketClass: "Standard", TicketType: "Advance", Railcard: "Adult",
			Price: num(40), RefundRequested: true, ReasonForDelay: "Signal Failure"},
		{DepartureStation: "London Kings Cross", ArrivalStation: "York", DepartureTime: "17:30", ArrivalTime: "19:30", ActualArrivalTime: "19:30",
			DateOfJourney: "2024-01-06", JourneyStatus: "On Time", TicketClass: "First Class", TicketType: "Anytime", Railcard: "None",
			Price: num(120)},
		{DepartureStation: "Manchester Piccadilly", ArrivalStation: "Liverpool Lime Street", DepartureTime: "06:20", ArrivalTime: "07:00",
			DateOfJourney: "2024-02-10", JourneyStatus: "Cancelled", TicketClass: "Standard", TicketType: "Off-Peak", Railcard: "None",
			Price: num(12), RefundRequested: true, ReasonForDelay: "Staff Shortage"},
		{DepartureStation: "York", ArrivalStation: "Leeds", DepartureTime: "18:05", ArrivalTime: "18:30", ActualArrivalTime: "18:31",
			DateOfJourney: "2024-02-11", JourneyStatus: "Delayed", TicketClass: "Standard", TicketType: "Advance", Railcard: "Senior",
			Price: num(8), ReasonForDelay: "Weather"},
	}
}

func testOperators() []dataset.OperatorRow {
	return []dataset.OperatorRow{
		{Country: "UK", Operator: "LNER", Punctuality: num(80), CancellationRate: num(3.5), TicketPricePerKm: num(0.3), Compensation: num(6), Booking: num(7), NightTrain: num(2), Cycling: num(5)},
		{Country: "UK/France", Operator: "Eurostar", Punctuality: num(90), CancellationRate: num(1.2), TicketPricePerKm: num(0.25), Compensation: num(7), Booking: num(8), NightTrain: num(0), Cycling: num(3)},
		{Country: "Germany", Operator: "DB", Punctuality: num(64), CancellationRate: num(5.5), TicketPricePerKm: num(0.18), Compensation: num(7), Booking: num(8), NightTrain: num(6), Cycling: num(6)},
	}
}

type mapSource map[string]string

func (m mapSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	body, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%s: not found", name)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func snapshotJSON(t *testing.T, rec *Recorder) string {
	t.Helper()
	b, err := json.Marshal(rec.Results())
	if err != nil {
		t.Fatalf("marshal results: %v", err)
	}
	return string(b)
}

// ============================================================================
// REGISTRY
// ============================================================================

func TestRegistryOrderAndDuplicates(t *testing.T) {
	r := NewRegistry()
	noop := func(Update) error { return nil }

	a, err := r.Register("a", filter.Scope{}, noop)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register("b", filter.Scope{Side: filter.Arrival}, noop); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register("a", filter.Scope{}, noop); !errors.Is(err, ErrDuplicateConsumer) {
		t.Errorf("duplicate name: got %v", err)
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("names = %v", got)
	}

	if !r.Unregister(a.ID) {
		t.Error("unregister should find a")
	}
	if r.Unregister(a.ID) {
		t.Error("second unregister should report false")
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("names after unregister = %v", got)
	}
	if _, err := r.Register("a", filter.Scope{}, noop); err != nil {
		t.Errorf("name should be free again: %v", err)
	}
}

// ============================================================================
// NOTIFY
// ============================================================================

func TestNotifyAllRunsConsumersInOrder(t *testing.T) {
	d := New(dataset.NewStore(nil, testJourneys()))
	var calls []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		if _, err := d.Registry().Register(name, filter.Scope{}, func(u Update) error {
			calls = append(calls, fmt.Sprintf("%s:%d", name, len(u.Rows)))
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := d.Click(filter.DimStation, "York"); err != nil {
		t.Fatal(err)
	}
	want := []string{"first:2", "second:2", "third:2"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestUpdateCarriesMatchingVersion(t *testing.T) {
	d := New(dataset.NewStore(nil, testJourneys()))
	var got []string
	d.Registry().Register("watcher", filter.Scope{}, func(u Update) error {
		got = append(got, fmt.Sprintf("%d:%s", u.Version, u.State))
		return nil
	})
	d.Click(filter.DimStation, "York")
	d.Click(filter.DimTicketClass, "Standard")
	d.Click(filter.DimStation, "York")
	want := []string{"1:station=York", "2:ticketClass=Standard station=York", "3:ticketClass=Standard"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("updates = %v, want %v", got, want)
	}
}

func TestNotifyAllAppliesScopes(t *testing.T) {
	d := New(dataset.NewStore(nil, testJourneys()))
	got := make(map[string]int)
	record := func(name string) Consumer {
		return func(u Update) error {
			got[name] = len(u.Rows)
			return nil
		}
	}
	d.Registry().Register("departure", filter.Scope{Side: filter.Departure}, record("departure"))
	d.Registry().Register("arrival", filter.Scope{Side: filter.Arrival}, record("arrival"))
	d.Registry().Register("ignore-station", filter.Scope{Ignore: []filter.Dimension{filter.DimStation}}, record("ignore-station"))

	if err := d.Click(filter.DimStation, "York"); err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"departure": 2, "arrival": 1, "ignore-station": 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows per scope = %v, want %v", got, want)
	}
}

func TestClickTogglesAndSelectSets(t *testing.T) {
	d := New(dataset.NewStore(nil, testJourneys()))

	if err := d.Click(filter.DimTicketClass, "Standard"); err != nil {
		t.Fatal(err)
	}
	if got := d.Filters().Snapshot().Get(filter.DimTicketClass); got != "Standard" {
		t.Errorf("after click: %q", got)
	}
	if err := d.Click(filter.DimTicketClass, "Standard"); err != nil {
		t.Fatal(err)
	}
	if !d.Filters().Snapshot().Unconstrained() {
		t.Errorf("second click should clear, state = %s", d.Filters().Snapshot())
	}

	d.Select(filter.DimTime, "PM")
	d.Select(filter.DimTime, "PM")
	if got := d.Filters().Snapshot().Get(filter.DimTime); got != "PM" {
		t.Errorf("select should not toggle, got %q", got)
	}

	if err := d.Click(filter.DimTicketClass, "Economy"); !errors.Is(err, filter.ErrInvalidValue) {
		t.Errorf("invalid value: got %v", err)
	}
}

func TestConsumerErrorDoesNotStopOthers(t *testing.T) {
	d := New(dataset.NewStore(nil, testJourneys()))
	boom := errors.New("boom")
	ran := false
	d.Registry().Register("failing", filter.Scope{}, func(Update) error { return boom })
	d.Registry().Register("after", filter.Scope{}, func(Update) error { ran = true; return nil })

	err := d.NotifyAll()
	if !errors.Is(err, boom) {
		t.Errorf("error = %v", err)
	}
	if !ran {
		t.Error("later consumer should still run")
	}
}

func TestNotifyAllIsIdempotent(t *testing.T) {
	rec := NewRecorder()
	d := New(dataset.NewStore(testOperators(), testJourneys()), WithSink(rec))
	if _, err := d.MountDefaults(); err != nil {
		t.Fatal(err)
	}
	if err := d.Select(filter.DimMonth, "2024-01"); err != nil {
		t.Fatal(err)
	}
	first := snapshotJSON(t, rec)
	if err := d.NotifyAll(); err != nil {
		t.Fatal(err)
	}
	if second := snapshotJSON(t, rec); first != second {
		t.Error("notifying twice with the same state should give identical results")
	}
}

func TestMountDefaultsPanels(t *testing.T) {
	rec := NewRecorder()
	d := New(dataset.NewStore(nil, testJourneys()), WithSink(rec))
	if _, err := d.MountDefaults(); err != nil {
		t.Fatal(err)
	}
	if err := d.NotifyAll(); err != nil {
		t.Fatal(err)
	}

	s := d.Settings()
	want := len(JourneyPanels(s)) + len(RevenuePanels(s)) + len(PerformancePanels(s))
	if got := len(rec.Results()); got != want {
		t.Errorf("results = %d, want %d", got, want)
	}

	res, ok := rec.Get("service-counts")
	if !ok {
		t.Fatal("missing service-counts")
	}
	counts, ok := res.Detail.(metrics.ServiceCounts)
	if !ok || counts.Planned != 4 || counts.Delayed != 2 {
		t.Errorf("service counts = %+v", res.Detail)
	}

	// A status selection elsewhere leaves the delay refund chart unchanged.
	before, _ := json.Marshal(mustGet(t, rec, "delay-refunds"))
	if err := d.Click(filter.DimJourneyStatus, "On Time"); err != nil {
		t.Fatal(err)
	}
	after, _ := json.Marshal(mustGet(t, rec, "delay-refunds"))
	if string(before) != string(after) {
		t.Error("delay-refunds should ignore the journey status selection")
	}
}

func mustGet(t *testing.T, rec *Recorder, name string) *engine.Result {
	t.Helper()
	res, ok := rec.Get(name)
	if !ok {
		t.Fatalf("missing result %s", name)
	}
	return res
}

// ============================================================================
// PARTIAL LOAD
// ============================================================================

func TestJourneysUnavailable(t *testing.T) {
	header := strings.Join([]string{
		dataset.ColCountry, dataset.ColOperator, dataset.ColPunctuality, dataset.ColCancellation, dataset.ColPricePerKm,
		dataset.ColCompensation, dataset.ColBooking, dataset.ColNightTrain, dataset.ColCycling,
	}, ",")
	operators := header + "\n" +
		"UK,LNER,80,3.5,0.3,6,7,2,5\n" +
		"Germany,DB,64,5.5,0.18,7,8,6,6\n"
	store, err := dataset.Load(context.Background(), mapSource{"operators.csv": operators},
		dataset.Files{Operators: "operators.csv", Journeys: "journeys.csv"})
	if !errors.Is(err, dataset.ErrDataLoad) {
		t.Fatalf("load error = %v", err)
	}

	rec := NewRecorder()
	d := New(store, WithSink(rec))
	if _, err := d.MountDefaults(); err != nil {
		t.Fatal(err)
	}
	err = d.NotifyAll()
	if !errors.Is(err, ErrDatasetUnavailable) {
		t.Errorf("notify error = %v", err)
	}
	res := mustGet(t, rec, "journey-trend")
	if len(res.Errors) != 1 || res.ChartConfig != nil {
		t.Errorf("journey panel should carry the load error: %+v", res)
	}

	if err := d.RenderStatic(rec); err != nil {
		t.Fatalf("operator panels should still render: %v", err)
	}
	if res := mustGet(t, rec, "country-averages"); len(res.TableData.Rows) != 2 {
		t.Errorf("country rows = %d", len(res.TableData.Rows))
	}
}

// ============================================================================
// OPERATOR PANELS
// ============================================================================

func TestRenderStatic(t *testing.T) {
	rec := NewRecorder()
	d := New(dataset.NewStore(testOperators(), nil))
	if err := d.RenderStatic(rec); err != nil {
		t.Fatal(err)
	}
	if got := len(rec.Results()); got != len(OperatorPanels(d.Settings())) {
		t.Errorf("results = %d", got)
	}

	gap := mustGet(t, rec, "punctuality-gap")
	g := gap.Detail.(metrics.Gap)
	if g.UK != 85 || g.EU != 64 {
		t.Errorf("gap = %+v", g)
	}

	sims := mustGet(t, rec, "similarity").Detail.([]metrics.Similarity)
	for _, s := range sims {
		if s.Kind != metrics.Computed {
			t.Errorf("%s should be computed by default", s.Code)
		}
	}
}

func TestSimilarityOverrideOption(t *testing.T) {
	rec := NewRecorder()
	d := New(dataset.NewStore(testOperators(), nil), WithSimilarityOverride(metrics.LegacyDisplayOverrides, 0.5))
	if err := d.RenderStatic(rec); err != nil {
		t.Fatal(err)
	}
	res := mustGet(t, rec, "similarity")
	sims := res.Detail.([]metrics.Similarity)
	if sims[0].Code != "DE" || sims[0].Value != 0.56 || sims[0].Kind != metrics.DisplayOverride {
		t.Errorf("override = %+v", sims[0])
	}
	if res.Summary == "" {
		t.Error("an overridden chart should say so")
	}
}

func TestStaticUnavailable(t *testing.T) {
	store, _ := dataset.Load(context.Background(), mapSource{}, dataset.Files{Operators: "operators.csv"})
	rec := NewRecorder()
	err := New(store).RenderStatic(rec)
	if !errors.Is(err, ErrDatasetUnavailable) {
		t.Errorf("error = %v", err)
	}
	if res := mustGet(t, rec, "similarity"); len(res.Errors) == 0 {
		t.Error("similarity should carry the load error")
	}
}

// ============================================================================
// RENDERING AFTER A CLICK
// ============================================================================

func TestMonthClickRendersLineCharts(t *testing.T) {
	dir := t.TempDir()
	d := New(dataset.NewStore(nil, testJourneys()))
	var lines []Panel
	for _, p := range RevenuePanels(d.Settings()) {
		if p.Name == "revenue-trend" || p.Name == "revenue-by-type" {
			lines = append(lines, p)
		}
	}
	if len(lines) != 2 {
		t.Fatalf("line panels = %d", len(lines))
	}
	if _, err := d.Mount(&render.ChartSink{Dir: dir, Format: render.FormatSVG}, lines...); err != nil {
		t.Fatal(err)
	}

	if err := d.Click(filter.DimMonth, "2024-01"); err != nil {
		t.Fatalf("single-month render: %v", err)
	}
	for _, p := range lines {
		if _, err := os.Stat(filepath.Join(dir, p.Name+".svg")); err != nil {
			t.Errorf("missing %s.svg: %v", p.Name, err)
		}
	}
}
