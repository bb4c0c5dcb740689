package dataset

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ── Test Data ─────────────────────────────────────────────────────────────────

const operatorCSV = "\ufeffCountry,Operator,Punctuality (%),Cancellation Rate (%),Ticket Price (€/km),Compensation Policy Score (/10),Booking Experience Score (/10),Night Train Offer Score (/10),Cycling Policy Score (/10)\n" +
	"Germany,DB,64.0,2.1,0.19,7,8,5,6\n" +
	"UK/France,Eurostar,91.5,1.0,0.35,8,9,0,3\n" +
	"UK,LNER,,3.5,0.25,6,7,2,5\n"

const journeyCSV = "Transaction ID,Date of Purchase,Time of Purchase,Purchase Type,Payment Method,Railcard,Ticket Class,Ticket Type,Price,Departure Station,Arrival Destination,Date of Journey,Departure Time,Arrival Time,Actual Arrival Time,Journey Status,Reason for Delay,Refund Request\n" +
	"da8a6ba8-b3dc-4677-b176,2023-12-08,12:41:11,Online,Contactless,Adult,Standard,Advance,43,London Paddington,Liverpool Lime Street,2024-01-01,11:00,13:30,13:30,On Time,,No\n" +
	"b0cdd1b0-f214-4197-be53,2023-12-16,11:23:01,Station,Credit Card,None,Standard,Advance,23,London Kings Cross,York,2024-01-01,09:45,11:35,11:40,Delayed,Signal Failure,Yes\n" +
	"f3ba7a96-f713-40d9-9629,2023-12-19,19:51:27,Online,Credit Card,None,First Class,Anytime,abc,Liverpool Lime Street,Manchester Piccadilly,2024-02-02,18:15,18:45,,Cancelled,Weather,YES \n"

// ============================================================================
// NUMBERS AND KEYS
// ============================================================================

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{" 3 ", 3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
	if v := NewNumber("x").Or(-1); v != -1 {
		t.Errorf("Or fallback = %v", v)
	}
}

func TestJourneyKeys(t *testing.T) {
	j := JourneyRow{DepartureStation: "York", ArrivalStation: "Leeds", DateOfJourney: "2024-03-09"}
	if j.Month() != "2024-03" {
		t.Errorf("Month = %q", j.Month())
	}
	if r, ok := j.Route(); !ok || r != "York to Leeds" {
		t.Errorf("Route = %q, %v", r, ok)
	}
	j.ArrivalStation = "undefined"
	if _, ok := j.Route(); ok {
		t.Error("Route with undefined arrival should fail")
	}
	if (JourneyRow{DateOfJourney: "2024"}).Month() != "" {
		t.Error("short date should have empty month")
	}
}

func TestNormalizeReason(t *testing.T) {
	cases := map[string]string{
		"Signal failure":      "Signal Failure",
		"Signal Failure":      "Signal Failure",
		"Staff Shortage":      "Staffing",
		"staffing":            "Staffing",
		"Weather Conditions":  "Weather",
		"Technical Issue":     "Technical Issue",
		"Traffic":             "Traffic",
		"":                    "Unknown",
		"  Industrial Action": "Industrial Action",
	}
	for in, want := range cases {
		if got := NormalizeReason(in); got != want {
			t.Errorf("NormalizeReason(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestExpandCountriesDuplicatesJointRow(t *testing.T) {
	rows := []OperatorRow{
		{Country: "UK/France", Operator: "Eurostar"},
		{Country: "Italy", Operator: "Trenitalia"},
		{Country: "", Operator: "Ghost"},
	}
	got := ExpandCountries(rows)
	if len(got) != 3 {
		t.Fatalf("expected 3 country rows, got %d", len(got))
	}
	if got[0].Country != "UK" || !got[0].Joint || got[1].Country != "France" || !got[1].Joint {
		t.Errorf("joint expansion = %+v, %+v", got[0], got[1])
	}
	if got[2].Country != "Italy" || got[2].Joint {
		t.Errorf("plain row = %+v", got[2])
	}
}

// ============================================================================
// CSV LOADERS
// ============================================================================

func TestReadOperators(t *testing.T) {
	rows, err := ReadOperators(strings.NewReader(operatorCSV))
	if err != nil {
		t.Fatalf("ReadOperators: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Country != "Germany" || rows[0].Punctuality.Value != 64 || !rows[0].Punctuality.Valid {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Country != JointUKFrance || rows[1].Cycling.Value != 3 {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if rows[2].Punctuality.Valid {
		t.Error("empty punctuality should not be valid")
	}
}

func TestReadJourneys(t *testing.T) {
	rows, err := ReadJourneys(strings.NewReader(journeyCSV))
	if err != nil {
		t.Fatalf("ReadJourneys: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].DepartureStation != "London Paddington" || rows[0].Price.Value != 43 || rows[0].RefundRequested {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].ReasonForDelay != "Signal Failure" || !rows[1].RefundRequested || rows[1].PaymentMethod != "Credit Card" {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if rows[2].Price.Valid {
		t.Error("non-numeric price should not be valid")
	}
	if !rows[2].RefundRequested {
		t.Error("\"YES \" should read as a refund request")
	}
}

func TestReadJourneysMissingColumn(t *testing.T) {
	_, err := ReadJourneys(strings.NewReader("Price,Departure Station\n10,York\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "Journey Status") {
		t.Errorf("error should name the missing column: %v", err)
	}
}

func TestReadHeaderOnlyIsEmpty(t *testing.T) {
	header := strings.Split(journeyCSV, "\n")[0] + "\n"
	rows, err := ReadJourneys(strings.NewReader(header))
	if err != nil {
		t.Fatalf("header-only CSV should load: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected 0 rows, got %d", len(rows))
	}

	_, err = ReadJourneys(strings.NewReader("Price,Departure Station\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("header-only CSV still checks columns, got %v", err)
	}
	if _, err := ReadJourneys(strings.NewReader("")); err == nil {
		t.Error("empty input should fail")
	}
}

// ============================================================================
// STORE
// ============================================================================

type mapSource map[string]string

func (m mapSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	s, ok := m[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

func TestLoadPartialFailure(t *testing.T) {
	src := mapSource{"ops.csv": operatorCSV}
	store, err := Load(context.Background(), src, Files{Operators: "ops.csv", Journeys: "railway.csv"})
	if err == nil {
		t.Fatal("expected an error for the missing journeys file")
	}
	if !errors.Is(err, ErrDataLoad) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should match ErrDataLoad and the cause: %v", err)
	}
	var le *LoadError
	if !errors.As(err, &le) || le.Dataset != Journeys {
		t.Errorf("expected a journeys LoadError, got %v", err)
	}

	if !store.Available(Operators) || store.Available(Journeys) {
		t.Error("operators should be available and journeys not")
	}
	if len(store.Operators()) != 3 {
		t.Errorf("expected 3 operators, got %d", len(store.Operators()))
	}
	if len(store.CountryRows()) != 4 {
		t.Errorf("expected 4 country rows after expansion, got %d", len(store.CountryRows()))
	}
}

func TestStoreAccessorsReturnCopies(t *testing.T) {
	store := NewStore(nil, []JourneyRow{{DepartureStation: "York"}})
	rows := store.Journeys()
	rows[0].DepartureStation = "Leeds"
	if store.Journeys()[0].DepartureStation != "York" {
		t.Error("mutating a returned slice changed the store")
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "railway.csv"), []byte(journeyCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := Load(context.Background(), DirSource{Root: dir}, Files{Journeys: "railway.csv"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(store.Journeys()) != 3 {
		t.Errorf("expected 3 journeys, got %d", len(store.Journeys()))
	}
}

// ============================================================================
// ADAPTERS
// ============================================================================

func TestJourneyAdapter(t *testing.T) {
	rows, err := ReadJourneys(strings.NewReader(journeyCSV))
	if err != nil {
		t.Fatal(err)
	}
	view := JourneyAdapter.Bind(rows)

	if got := view.Dimension(1, KeyRoute); got != "London Kings Cross to York" {
		t.Errorf("route = %q", got)
	}
	if d, ok := view.Measure(1, KeyDelay); !ok || d != 5 {
		t.Errorf("delay = %v, %v", d, ok)
	}
	if r, ok := view.Measure(0, KeyRefund); !ok || r != 0 {
		t.Errorf("refund without request = %v, %v", r, ok)
	}
	if r, _ := view.Measure(1, KeyRefund); r != 23 {
		t.Errorf("refund = %v", r)
	}
	if _, ok := view.Measure(2, KeyDelay); ok {
		t.Error("missing actual arrival should give no delay")
	}
	if got := view.Dimension(2, KeyReason); got != "Weather" {
		t.Errorf("reason = %q", got)
	}
}
