package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
)

var (
	// ErrDataLoad marks a dataset that could not be fetched or parsed.
	ErrDataLoad = errors.New("data load failed")
	// ErrMissingColumn marks a CSV without a required header.
	ErrMissingColumn = errors.New("missing required column")
)

// Name identifies one of the two datasets.
type Name string

const (
	Operators Name = "operators"
	Journeys  Name = "journeys"
)

// LoadError reports a dataset that failed to load. It matches ErrDataLoad
// under errors.Is and unwraps to the underlying cause.
type LoadError struct {
	Dataset Name
	Source  string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %s: %v", e.Dataset, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrDataLoad }

// Files names the file of each dataset within a Source. An empty name skips
// that dataset.
type Files struct {
	Operators string
	Journeys  string
}

// ============================================================================
// STORE — immutable after Load
// ============================================================================

// Store holds the loaded rows. It is never mutated after construction, so
// any number of readers may share it.
type Store struct {
	operators []OperatorRow
	countries []CountryOperator
	journeys  []JourneyRow
	errs      map[Name]error
}

// NewStore builds a store from rows already in memory.
func NewStore(operators []OperatorRow, journeys []JourneyRow) *Store {
	return &Store{
		operators: operators,
		countries: ExpandCountries(operators),
		journeys:  journeys,
		errs:      make(map[Name]error),
	}
}

// Operators returns a copy of the operator rows.
func (s *Store) Operators() []OperatorRow {
	return append([]OperatorRow(nil), s.operators...)
}

// CountryRows returns a copy of the operator rows attributed per country.
func (s *Store) CountryRows() []CountryOperator {
	return append([]CountryOperator(nil), s.countries...)
}

// Journeys returns a copy of the journey rows.
func (s *Store) Journeys() []JourneyRow {
	return append([]JourneyRow(nil), s.journeys...)
}

// Err returns the load error of a dataset, nil when it loaded.
func (s *Store) Err(name Name) error {
	return s.errs[name]
}

// Available reports whether a dataset loaded.
func (s *Store) Available(name Name) bool {
	return s.errs[name] == nil
}

// Load fetches both datasets concurrently. A dataset that fails leaves the
// other usable: the returned store is always non-nil and the error joins
// one *LoadError per failed dataset.
func Load(ctx context.Context, src Source, files Files) (*Store, error) {
	store := NewStore(nil, nil)

	var (
		wg       sync.WaitGroup
		opErr    error
		jrErr    error
		ops      []OperatorRow
		journeys []JourneyRow
	)

	if files.Operators != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ops, opErr = loadFile(ctx, src, files.Operators, ReadOperators)
		}()
	}
	if files.Journeys != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			journeys, jrErr = loadFile(ctx, src, files.Journeys, ReadJourneys)
		}()
	}
	wg.Wait()

	var errs []error
	if opErr != nil {
		e := &LoadError{Dataset: Operators, Source: files.Operators, Err: opErr}
		store.errs[Operators] = e
		errs = append(errs, e)
		log.Printf("❌ railpulse: %v", e)
	} else if files.Operators != "" {
		store.operators = ops
		store.countries = ExpandCountries(ops)
		log.Printf("📥 railpulse: loaded %d operator rows (%d country rows)", len(ops), len(store.countries))
	}

	if jrErr != nil {
		e := &LoadError{Dataset: Journeys, Source: files.Journeys, Err: jrErr}
		store.errs[Journeys] = e
		errs = append(errs, e)
		log.Printf("❌ railpulse: %v", e)
	} else if files.Journeys != "" {
		store.journeys = journeys
		log.Printf("📥 railpulse: loaded %d journey rows", len(journeys))
	}

	return store, errors.Join(errs...)
}

func loadFile[T any](ctx context.Context, src Source, name string, read func(io.Reader) ([]T, error)) ([]T, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return read(rc)
}
