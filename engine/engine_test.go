package engine

import (
	"strconv"
	"testing"
)

type sale struct {
	month  string
	region string
	amount string
}

var saleAdapter = NewDomainAdapter[sale]().
	Dimension("month", func(s sale) string { return s.month }).
	Dimension("region", func(s sale) string { return s.region }).
	Measure("amount", func(s sale) (float64, bool) {
		v, err := strconv.ParseFloat(s.amount, 64)
		return v, err == nil
	})

func sales() *DomainView[sale] {
	return saleAdapter.Bind([]sale{
		{"2024-01", "North", "100"},
		{"2024-01", "South", "50"},
		{"2024-02", "North", "300"},
		{"2024-02", "", "20"},
		{"2024-03", "South", "n/a"},
	})
}

// ============================================================================
// AGGREGATION
// ============================================================================

func TestGroupAndAggregate(t *testing.T) {
	tests := []struct {
		name   string
		agg    string
		sort   string
		limit  int
		keys   []string
		values []float64
	}{
		{"sum first-seen", AggSum, SortNone, 0, []string{"North", "South"}, []float64{400, 50}},
		{"count asc", AggCount, SortValueAsc, 0, []string{"North", "South"}, []float64{2, 2}},
		{"avg skips unparsed", AggAvg, SortValueDesc, 0, []string{"North", "South"}, []float64{200, 50}},
		{"max limited", AggMax, SortKeyDesc, 1, []string{"South"}, []float64{50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := GroupAndAggregate(sales(), []string{"region"}, "amount", tt.agg, tt.sort, tt.limit)
			if len(groups) != len(tt.keys) {
				t.Fatalf("groups = %d, want %d", len(groups), len(tt.keys))
			}
			for i, g := range groups {
				if g.Key != tt.keys[i] || g.Value != tt.values[i] {
					t.Errorf("group %d = %s/%v, want %s/%v", i, g.Key, g.Value, tt.keys[i], tt.values[i])
				}
			}
		})
	}
}

func TestGroupAndAggregateSubGroups(t *testing.T) {
	groups := GroupAndAggregate(sales(), []string{"month", "region"}, "amount", AggSum, SortKeyAsc, 0)
	if len(groups) != 3 {
		t.Fatalf("months = %d", len(groups))
	}
	jan := groups[0]
	if jan.Value != 150 || len(jan.SubGroups) != 2 || jan.SubGroups[1].Value != 50 {
		t.Errorf("january = %+v", jan)
	}
	// The empty-region row counts towards the month but forms no subgroup.
	if feb := groups[1]; feb.Value != 320 || len(feb.SubGroups) != 1 {
		t.Errorf("february = %+v", feb)
	}
	if mar := groups[2]; mar.Count != 1 || mar.Samples != 0 {
		t.Errorf("march = %+v", mar)
	}
}

func TestWhere(t *testing.T) {
	north := Where(sales(), Equals("region", "North"))
	if north.Len() != 2 || SumMeasure(north, "amount") != 400 {
		t.Errorf("north = %d rows", north.Len())
	}
	rest := Where(sales(), NotIn("month", "2024-01", "2024-02"))
	if rest.Len() != 1 || rest.Dimension(0, "region") != "South" {
		t.Errorf("rest = %d rows", rest.Len())
	}
	if i, ok := ArgMax(sales(), "amount"); !ok || i != 2 {
		t.Errorf("ArgMax = %d, %v", i, ok)
	}
}

// ============================================================================
// TEXT
// ============================================================================

func TestBuildText(t *testing.T) {
	text := BuildText(sales(), "month", "amount", AggSum, "£")
	if text.RawValue != 470 || text.Value != "£470.00" || text.Period != "2024-01 – 2024-03" {
		t.Errorf("text = %+v", text)
	}
	count := BuildText(sales(), "month", "", AggCount, "")
	if count.Value != "5" {
		t.Errorf("count = %q", count.Value)
	}
}

func TestBuildGrowthText(t *testing.T) {
	growth := BuildGrowthText(sales(), "month", "amount", AggSum, "£")
	// March has no parsed amount, so it sums to 0.
	if growth.Growth == nil || growth.Growth.Direction != "decreased" || growth.RawValue != -100 {
		t.Errorf("growth = %+v", growth)
	}

	single := saleAdapter.Bind([]sale{{"2024-01", "North", "10"}})
	if g := BuildGrowthText(single, "month", "amount", AggSum, "£"); g.Growth.Direction != "insufficient data" {
		t.Errorf("single period = %+v", g.Growth)
	}
}

// ============================================================================
// FORMATTING
// ============================================================================

func TestFormatting(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FormatCurrency(1234567.891, "£"), "£1,234,567.89"},
		{FormatCurrency(-5, "£"), "-£5.00"},
		{FormatInt(1000), "1,000"},
		{FormatInt(999), "999"},
		{FormatPercent(12.345), "12.3%"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestBuildSeriesChart(t *testing.T) {
	cfg := BuildSeriesChart(ChartSpec{Title: "Sales"}, []ChartSeries{
		{Name: "A", Data: Points([]string{"x", "y", "z"}, []float64{1.234, 2})},
		{Name: "B", Color: "#ff0000"},
	})
	if cfg.ChartType != ChartBar || !cfg.ShowLegend {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Series[0].Data) != 2 || cfg.Series[0].Data[0].Value != 1.23 {
		t.Errorf("points = %+v", cfg.Series[0].Data)
	}
	if cfg.Series[0].Color != DefaultColors[0] || cfg.Series[1].Color != "#ff0000" {
		t.Errorf("colors = %s, %s", cfg.Series[0].Color, cfg.Series[1].Color)
	}
}
