package render

import (
	"encoding/csv"
	"io"
	"log"

	"github.com/spektr-org/railpulse/engine"
)

// ============================================================================
// CSV OUTPUT — spreadsheet-ready panel data
// ============================================================================

// CSVSink writes each result to <Dir>/<name>.csv.
type CSVSink struct {
	Dir string
}

func (s *CSVSink) Render(result *engine.Result) error {
	f, err := create(s.Dir, result.Name, FormatCSV)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, result); err != nil {
		return err
	}
	log.Printf("💾 railpulse: wrote %s", f.Name())
	return f.Close()
}

// WriteCSV writes a result as CSV: chart series as a label column plus one
// column per series, tables with their column labels as header, and text
// results as summary rows.
func WriteCSV(w io.Writer, result *engine.Result) error {
	cw := csv.NewWriter(w)

	switch {
	case result == nil:
		cw.Write([]string{"Result", "No data"})
	case len(result.Errors) > 0:
		cw.Write([]string{"Error"})
		for _, e := range result.Errors {
			cw.Write([]string{e})
		}
	case result.ChartConfig != nil && len(result.ChartConfig.Series) > 0:
		writeChartCSV(cw, result.ChartConfig)
	case result.TableData != nil:
		writeTableCSV(cw, result.TableData)
	default:
		writeTextCSV(cw, result)
	}

	cw.Flush()
	return cw.Error()
}

func writeChartCSV(cw *csv.Writer, chart *engine.ChartConfig) {
	xLabel := chart.XAxis
	yLabel := chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	// Single series → two columns
	if len(chart.Series) == 1 {
		cw.Write([]string{xLabel, yLabel})
		for _, d := range chart.Series[0].Data {
			cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
		return
	}

	// Multi-series → label + one column per series
	headers := []string{xLabel}
	for _, s := range chart.Series {
		headers = append(headers, s.Name)
	}
	cw.Write(headers)

	for i, d := range chart.Series[0].Data {
		row := []string{d.Label}
		for _, s := range chart.Series {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
}

func writeTableCSV(cw *csv.Writer, table *engine.TableData) {
	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Label
	}
	cw.Write(headers)
	for _, row := range table.Rows {
		cw.Write(row)
	}
	if table.Summary != nil {
		row := make([]string, len(table.Columns))
		if len(row) > 0 {
			row[0] = table.Summary.Label
		}
		for i, c := range table.Columns {
			if v, ok := table.Summary.Values[c.Key]; ok {
				row[i] = v
			}
		}
		cw.Write(row)
	}
}

func writeTextCSV(cw *csv.Writer, result *engine.Result) {
	cw.Write([]string{"Summary", "Value", "Unit"})
	value, unit := "", ""
	if result.Data != nil {
		value, unit = result.Data.Value, result.Data.Unit
	}
	summary := result.Summary
	if summary == "" {
		summary = result.Title
	}
	cw.Write([]string{summary, value, unit})
	for _, s := range result.Stats {
		cw.Write([]string{s.Label, s.Value, ""})
	}
}
