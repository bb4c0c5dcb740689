// Package render writes panel results to files: charts through go-chart,
// plus CSV and JSON for spreadsheets and other consumers.
package render

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spektr-org/railpulse/engine"
)

// ErrNothingToRender marks a result a sink has no output for, such as a
// table given to a chart sink or a chart whose values are all zero.
var ErrNothingToRender = errors.New("nothing to render")

// Sink consumes render-ready results.
type Sink interface {
	Render(result *engine.Result) error
}

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ForFormat returns the sink writing format into dir. Chart formats also
// write CSV so tables and text panels are not lost.
func ForFormat(format, dir string, width, height int) (Sink, error) {
	switch format {
	case FormatSVG, FormatPNG:
		return MultiSink{
			&ChartSink{Dir: dir, Format: format, Width: width, Height: height},
			&CSVSink{Dir: dir},
		}, nil
	case FormatCSV:
		return &CSVSink{Dir: dir}, nil
	case FormatJSON:
		return &JSONSink{Dir: dir, Pretty: true}, nil
	}
	return nil, fmt.Errorf("unknown render format %q", format)
}

// ============================================================================
// MULTI SINK
// ============================================================================

// MultiSink renders every result to each sink in order. A sink reporting
// ErrNothingToRender is skipped; other errors are joined.
type MultiSink []Sink

func (m MultiSink) Render(result *engine.Result) error {
	var errs []error
	for _, s := range m {
		err := s.Render(result)
		switch {
		case err == nil:
		case errors.Is(err, ErrNothingToRender):
			log.Printf("⏭️  railpulse: %s: %v", result.Name, err)
		default:
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ============================================================================
// HELPERS
// ============================================================================

// create opens <dir>/<name>.<ext>, creating dir when needed.
func create(dir, name, ext string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(dir, FileName(name, ext)))
}

// FileName turns a panel name into a safe file name.
func FileName(name, ext string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
	if safe == "" {
		safe = "result"
	}
	return safe + "." + ext
}

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
