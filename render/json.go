package render

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/spektr-org/railpulse/engine"
)

// JSONSink writes each result to <Dir>/<name>.json.
type JSONSink struct {
	Dir    string
	Pretty bool
}

func (s *JSONSink) Render(result *engine.Result) error {
	f, err := create(s.Dir, result.Name, FormatJSON)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeJSON(f, result, s.Pretty); err != nil {
		return err
	}
	log.Printf("💾 railpulse: wrote %s", f.Name())
	return f.Close()
}

// StreamSink writes every result to one writer, one JSON document per line
// (or indented when Pretty).
type StreamSink struct {
	mu     sync.Mutex
	W      io.Writer
	Pretty bool
}

func (s *StreamSink) Render(result *engine.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.W, result, s.Pretty)
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	var out []byte
	var err error

	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
