// Package dashboard wires the filter store to chart consumers: a click
// updates the shared filter state, then every registered consumer gets the
// journey rows filtered for its own scope.
package dashboard

import (
	"errors"
	"fmt"
	"log"

	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/engine"
	"github.com/spektr-org/railpulse/filter"
)

// Sink is the presentation side of a panel.
type Sink interface {
	Render(result *engine.Result) error
}

// Dashboard owns the loaded data, the filter state and the consumers.
type Dashboard struct {
	data     *dataset.Store
	filters  *filter.Store
	registry *Registry
	opts     *options
}

// New builds a dashboard over a loaded store.
func New(data *dataset.Store, opts ...Option) *Dashboard {
	return &Dashboard{
		data:     data,
		filters:  filter.NewStore(),
		registry: NewRegistry(),
		opts:     applyOptions(opts),
	}
}

// Filters exposes the filter store.
func (d *Dashboard) Filters() *filter.Store { return d.filters }

// Registry exposes the consumer registry.
func (d *Dashboard) Registry() *Registry { return d.registry }

// Settings returns the panel settings.
func (d *Dashboard) Settings() Settings { return d.opts.settings }

// ============================================================================
// CONTROLS
// ============================================================================

// Click toggles a selection, the way a chart element click does, then
// notifies every consumer.
func (d *Dashboard) Click(dim filter.Dimension, value string) error {
	if _, err := d.filters.Toggle(dim, value); err != nil {
		return err
	}
	return d.NotifyAll()
}

// Select sets a selection without toggling, the way the time-bucket
// buttons do, then notifies every consumer.
func (d *Dashboard) Select(dim filter.Dimension, value string) error {
	if _, err := d.filters.Set(dim, value); err != nil {
		return err
	}
	return d.NotifyAll()
}

// Reset clears every selection, then notifies every consumer.
func (d *Dashboard) Reset() error {
	d.filters.Reset()
	return d.NotifyAll()
}

// ============================================================================
// NOTIFY
// ============================================================================

// NotifyAll runs every consumer once, synchronously and in registration
// order, against one snapshot of the filter state. Filtering runs once per
// distinct scope. A failing consumer does not stop the others; their errors
// are joined.
func (d *Dashboard) NotifyAll() error {
	state, version := d.filters.Current()
	entries := d.registry.snapshot()

	var loadErr error
	var journeys []dataset.JourneyRow
	if err := d.data.Err(dataset.Journeys); err != nil {
		loadErr = fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	} else {
		journeys = d.data.Journeys()
	}

	filtered := make(map[string][]dataset.JourneyRow)
	var errs []error
	for _, e := range entries {
		u := Update{State: state, Version: version, Err: loadErr}
		if loadErr == nil {
			key := e.scope.Key()
			rows, ok := filtered[key]
			if !ok {
				rows = filter.Apply(journeys, state, e.scope)
				filtered[key] = rows
			}
			u.Rows = append([]dataset.JourneyRow(nil), rows...)
		}
		if err := e.fn(u); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.handle.Name, err))
		}
	}

	log.Printf("🔔 railpulse: notified %d consumers (%d scopes), filters %s", len(entries), len(filtered), state)
	return errors.Join(errs...)
}

// ============================================================================
// PANELS
// ============================================================================

// ComputeFunc turns filtered journeys into a render-ready result.
type ComputeFunc func(rows []dataset.JourneyRow, state filter.State) (*engine.Result, error)

// Panel is a filter-driven view over the journeys.
type Panel struct {
	Name    string
	Scope   filter.Scope
	Compute ComputeFunc
}

// StaticPanel is computed once over the operator rows.
type StaticPanel struct {
	Name    string
	Compute func(rows []dataset.CountryOperator) (*engine.Result, error)
}

// Chart composes a compute step and a sink into a consumer. A dataset
// failure is rendered as an error result and returned.
func Chart(name string, compute ComputeFunc, sink Sink) Consumer {
	return func(u Update) error {
		if u.Err != nil {
			if err := sink.Render(errorResult(name, u.Err)); err != nil {
				return errors.Join(u.Err, err)
			}
			return u.Err
		}
		result, err := compute(u.Rows, u.State)
		if err != nil {
			return err
		}
		result.Name = name
		return sink.Render(result)
	}
}

// Mount registers panels against sink.
func (d *Dashboard) Mount(sink Sink, panels ...Panel) ([]Handle, error) {
	handles := make([]Handle, 0, len(panels))
	for _, p := range panels {
		h, err := d.registry.Register(p.Name, p.Scope, Chart(p.Name, p.Compute, sink))
		if err != nil {
			return handles, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// MountDefaults registers every filter-driven built-in panel against the
// sink set with WithSink.
func (d *Dashboard) MountDefaults() ([]Handle, error) {
	if d.opts.sink == nil {
		return nil, errors.New("mount defaults: no sink configured")
	}
	s := d.opts.settings
	var panels []Panel
	panels = append(panels, JourneyPanels(s)...)
	panels = append(panels, RevenuePanels(s)...)
	panels = append(panels, PerformancePanels(s)...)
	return d.Mount(d.opts.sink, panels...)
}

// RenderStatic computes the operator panels once and renders them to sink.
// When the operator dataset failed, each panel renders an error result and
// the joined error is returned.
func (d *Dashboard) RenderStatic(sink Sink) error {
	var errs []error
	rows := d.data.CountryRows()
	loadErr := d.data.Err(dataset.Operators)

	for _, p := range OperatorPanels(d.opts.settings) {
		var result *engine.Result
		if loadErr != nil {
			err := fmt.Errorf("%w: %v", ErrDatasetUnavailable, loadErr)
			result = errorResult(p.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
		} else {
			r, err := p.Compute(rows)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
				continue
			}
			r.Name = p.Name
			result = r
		}
		if err := sink.Render(result); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
		}
	}
	return errors.Join(errs...)
}

func errorResult(name string, err error) *engine.Result {
	return &engine.Result{
		Name:   name,
		Type:   engine.TypeText,
		Title:  name,
		Errors: []string{err.Error()},
	}
}
