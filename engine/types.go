package engine

// ============================================================================
// ENGINE TYPES — Grouping results and render-ready output records
// ============================================================================
// Group is the intermediate result of GroupAndAggregate.
// Result (chart / table / text) is what presentation sinks consume.
// ============================================================================

// Result type values.
const (
	TypeChart = "chart"
	TypeTable = "table"
	TypeText  = "text"
)

// ============================================================================
// RESULT — Render-ready output
// ============================================================================

// Result is one panel's render-ready output.
type Result struct {
	Name    string `json:"name"`
	Type    string `json:"type"` // "chart", "table", "text"
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`

	// Exactly one of these is populated based on Type:
	ChartConfig *ChartConfig `json:"chartConfig,omitempty"`
	TableData   *TableData   `json:"tableData,omitempty"`
	Data        *TextData    `json:"data,omitempty"`

	// Headline figures shown next to the chart.
	Stats []Stat `json:"stats,omitempty"`

	// Reducer output backing the panel, for JSON consumers.
	Detail interface{} `json:"detail,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// Stat is a labelled headline value.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
type Group struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Value     float64    `json:"value"`
	Count     int        `json:"count"`
	Samples   int        `json:"samples"` // records whose measure parsed
	SubGroups []Group    `json:"subGroups,omitempty"`
	View      RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// Chart type values understood by the renderers.
const (
	ChartBar    = "bar"
	ChartLine   = "line"
	ChartPie    = "pie"
	ChartBullet = "bullet"
	ChartGauge  = "gauge"
)

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Color    string  `json:"color,omitempty"`
	Selected bool    `json:"selected,omitempty"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "currency", "percent"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is a single headline figure (type="text").
type TextData struct {
	Value    string      `json:"value"`
	RawValue float64     `json:"rawValue"`
	Unit     string      `json:"unit"`
	Period   string      `json:"period"`
	Count    int         `json:"count"`
	Growth   *GrowthData `json:"growth,omitempty"`
}

// GrowthData contains change-over-time metrics.
type GrowthData struct {
	EarliestValue  float64 `json:"earliestValue"`
	LatestValue    float64 `json:"latestValue"`
	EarliestPeriod string  `json:"earliestPeriod"`
	LatestPeriod   string  `json:"latestPeriod"`
	ChangeAmount   float64 `json:"changeAmount"`
	ChangePercent  float64 `json:"changePercent"`
	Direction      string  `json:"direction"` // "increased", "decreased", "unchanged", "insufficient data"
}
