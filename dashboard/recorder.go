package dashboard

import (
	"sync"

	"github.com/spektr-org/railpulse/engine"
)

// Recorder is a Sink that keeps the latest result of each panel, in the
// order panels first rendered.
type Recorder struct {
	mu      sync.Mutex
	order   []string
	results map[string]*engine.Result
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{results: make(map[string]*engine.Result)}
}

func (r *Recorder) Render(result *engine.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.results[result.Name]; !ok {
		r.order = append(r.order, result.Name)
	}
	r.results[result.Name] = result
	return nil
}

// Get returns the latest result of a panel.
func (r *Recorder) Get(name string) (*engine.Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[name]
	return res, ok
}

// Results returns the latest results in first-rendered order.
func (r *Recorder) Results() []*engine.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*engine.Result, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.results[name])
	}
	return out
}
