package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spektr-org/railpulse/dataset"
)

func journeys() []dataset.JourneyRow {
	return []dataset.JourneyRow{
		{DepartureStation: "London Paddington", ArrivalStation: "Reading", DepartureTime: "07:10", ArrivalTime: "07:40", ActualArrivalTime: "07:40", DateOfJourney: "2024-01-05", JourneyStatus: "On Time", TicketClass: "Standard", TicketType: "Advance", Price: dataset.NewNumber("12")},
		{DepartureStation: "Manchester Piccadilly", ArrivalStation: "London Euston", DepartureTime: "17:30", ArrivalTime: "19:45", ActualArrivalTime: "20:05", DateOfJourney: "2024-01-20", JourneyStatus: "Delayed", TicketClass: "First Class", TicketType: "Anytime", ReasonForDelay: "Signal failure", Price: dataset.NewNumber("80")},
		{DepartureStation: "York", ArrivalStation: "London Paddington", DepartureTime: "11:50", ArrivalTime: "12:20", ActualArrivalTime: "12:23", DateOfJourney: "2024-02-11", JourneyStatus: "Delayed", TicketClass: "Standard", TicketType: "Off-Peak", ReasonForDelay: "Weather", Price: dataset.NewNumber("30")},
		{DepartureStation: "Reading", ArrivalStation: "York", DepartureTime: "", ArrivalTime: "", DateOfJourney: "2024-02-15", JourneyStatus: "Cancelled", TicketClass: "Standard", TicketType: "Advance", Price: dataset.NewNumber("5")},
	}
}

func stations(rows []dataset.JourneyRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.DepartureStation
	}
	return out
}

// ============================================================================
// APPLY
// ============================================================================

func TestApplyUnconstrainedIsIdentity(t *testing.T) {
	rows := journeys()
	got := Apply(rows, State{}, Scope{})
	if !reflect.DeepEqual(got, rows) {
		t.Fatal("unconstrained Apply should return every row in order")
	}
	got[0].DepartureStation = "changed"
	if rows[0].DepartureStation == "changed" {
		t.Error("Apply must return a new slice")
	}
}

func TestApplyCombinesWithAnd(t *testing.T) {
	state := State{}.With(DimTicketClass, "Standard").With(DimMonth, "2024-02")
	got := stations(Apply(journeys(), state, Scope{}))
	want := []string{"York", "Reading"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApplyTimeBucketDropsUnparseable(t *testing.T) {
	got := stations(Apply(journeys(), State{}.With(DimTime, "AM"), Scope{}))
	want := []string{"London Paddington", "York"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AM: got %v, want %v", got, want)
	}
	got = stations(Apply(journeys(), State{}.With(DimTime, "Off-Peak"), Scope{}))
	want = []string{"York"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Off-Peak: got %v, want %v", got, want)
	}
}

func TestApplyArrivalScope(t *testing.T) {
	state := State{}.With(DimStation, "London Paddington").With(DimTime, "PM")

	dep := stations(Apply(journeys(), state, Scope{Side: Departure}))
	if len(dep) != 0 {
		t.Errorf("departure scope: got %v, want none (07:10 is AM)", dep)
	}

	arr := stations(Apply(journeys(), state, Scope{Side: Arrival}))
	if !reflect.DeepEqual(arr, []string{"York"}) {
		t.Errorf("arrival scope: got %v", arr)
	}
}

func TestApplyDelayBucketAndReason(t *testing.T) {
	got := stations(Apply(journeys(), State{}.With(DimDelayBucket, "15 - 30 Mins"), Scope{}))
	if !reflect.DeepEqual(got, []string{"Manchester Piccadilly"}) {
		t.Errorf("delay bucket: got %v", got)
	}
	got = stations(Apply(journeys(), State{}.With(DimDelayReason, "Signal Failure"), Scope{}))
	if !reflect.DeepEqual(got, []string{"Manchester Piccadilly"}) {
		t.Errorf("reason: got %v", got)
	}
}

func TestApplyIgnoreScope(t *testing.T) {
	state := State{}.With(DimJourneyStatus, "Delayed").With(DimTicketClass, "Standard")
	got := stations(Apply(journeys(), state, Scope{Ignore: []Dimension{DimJourneyStatus}}))
	want := []string{"London Paddington", "York", "Reading"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScopeKey(t *testing.T) {
	a := Scope{Ignore: []Dimension{DimJourneyStatus, DimMonth}}
	b := Scope{Ignore: []Dimension{DimMonth, DimJourneyStatus}}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	if (Scope{}).Key() == (Scope{Side: Arrival}).Key() {
		t.Error("sides should produce different keys")
	}
}

// ============================================================================
// STORE
// ============================================================================

func TestToggleTwiceRestoresState(t *testing.T) {
	s := NewStore()
	if _, err := s.Set(DimMonth, "2024-03"); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	for _, d := range []Dimension{DimTicketClass, DimTime} {
		v := map[Dimension]string{DimTicketClass: "First Class", DimTime: "Peak"}[d]
		if _, err := s.Toggle(d, v); err != nil {
			t.Fatal(err)
		}
		if s.Snapshot().Get(d) != v {
			t.Errorf("%s not selected after first toggle", d)
		}
		if _, err := s.Toggle(d, v); err != nil {
			t.Fatal(err)
		}
		if s.Snapshot() != before {
			t.Errorf("toggling %s twice: got %v, want %v", d, s.Snapshot(), before)
		}
	}
}

func TestToggleAllClearsTime(t *testing.T) {
	s := NewStore()
	s.Set(DimTime, "PM")
	st, err := s.Toggle(DimTime, "ALL")
	if err != nil {
		t.Fatal(err)
	}
	if !st.Unconstrained() {
		t.Errorf("ALL should clear the time bucket, got %v", st)
	}
}

func TestStoreValidation(t *testing.T) {
	s := NewStore()
	if _, err := s.Toggle(DimTicketClass, "Economy"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := s.Set(DimMonth, "2024-13"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for month, got %v", err)
	}
	if _, err := s.Set(Dimension("colour"), "red"); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("expected ErrUnknownDimension, got %v", err)
	}
	if !s.Snapshot().Unconstrained() {
		t.Error("failed writes must not change the state")
	}
}

func TestStoreVersionCountsChanges(t *testing.T) {
	s := NewStore()
	s.Set(DimTicketType, "Advance")
	s.Set(DimTicketType, "Advance")
	if s.Version() != 1 {
		t.Errorf("version = %d, want 1", s.Version())
	}
	s.Reset()
	if s.Version() != 2 || !s.Snapshot().Unconstrained() {
		t.Errorf("after reset: version %d, state %v", s.Version(), s.Snapshot())
	}
}

func TestCurrentPairsStateWithVersion(t *testing.T) {
	s := NewStore()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				s.Set(DimMonth, "2024-01")
			} else {
				s.Set(DimMonth, "2024-02")
			}
		}
	}()

	// Odd versions always hold January, even ones February or nothing.
	for i := 0; i < 500; i++ {
		st, v := s.Current()
		month := st.Get(DimMonth)
		if (v%2 == 1) != (month == "2024-01") {
			t.Fatalf("version %d paired with month %q", v, month)
		}
	}
	<-done
}

func TestDelayReasonIsNormalized(t *testing.T) {
	s := NewStore()
	st, err := s.Set(DimDelayReason, "signal failure")
	if err != nil {
		t.Fatal(err)
	}
	if st.Get(DimDelayReason) != "Signal Failure" {
		t.Errorf("reason = %q", st.Get(DimDelayReason))
	}
}

func TestStateString(t *testing.T) {
	if (State{}).String() != "ALL" {
		t.Errorf("empty state = %q", State{}.String())
	}
	st := State{}.With(DimTime, "PM").With(DimStation, "York")
	if st.String() != "time=PM station=York" {
		t.Errorf("String = %q", st.String())
	}
}
