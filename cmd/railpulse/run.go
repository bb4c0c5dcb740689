package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/railpulse/config"
	"github.com/spektr-org/railpulse/dashboard"
	"github.com/spektr-org/railpulse/dataset"
	"github.com/spektr-org/railpulse/filter"
	"github.com/spektr-org/railpulse/render"
)

// ============================================================================
// FILTER FLAGS
// ============================================================================

// filterFlags holds the initial selection given on the command line.
type filterFlags struct {
	Time, Class, Type, Station, Month, Delay, Status, Reason string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.Time, "time", "", "time bucket: ALL, AM, PM, Peak, Off-Peak")
	pf.StringVar(&f.Class, "class", "", "ticket class: Standard, First Class")
	pf.StringVar(&f.Type, "type", "", "ticket type: Advance, Off-Peak, Anytime")
	pf.StringVar(&f.Station, "station", "", "station, matched by departure or arrival per panel")
	pf.StringVar(&f.Month, "month", "", "month as YYYY-MM")
	pf.StringVar(&f.Delay, "delay", "", `delay bucket, e.g. "5 - 15 Mins" or "> 60 Mins"`)
	pf.StringVar(&f.Status, "status", "", "journey status: On Time, Delayed, Cancelled")
	pf.StringVar(&f.Reason, "reason", "", "delay reason")
}

// apply sets every non-empty flag on store.
func (f filterFlags) apply(store *filter.Store) error {
	pairs := []struct {
		dim filter.Dimension
		v   string
	}{
		{filter.DimTime, f.Time},
		{filter.DimTicketClass, f.Class},
		{filter.DimTicketType, f.Type},
		{filter.DimStation, f.Station},
		{filter.DimMonth, f.Month},
		{filter.DimDelayBucket, f.Delay},
		{filter.DimJourneyStatus, f.Status},
		{filter.DimDelayReason, f.Reason},
	}
	for _, p := range pairs {
		if p.v == "" {
			continue
		}
		if _, err := store.Set(p.dim, p.v); err != nil {
			return err
		}
	}
	return nil
}

type renderFlags struct {
	Format string
	OutDir string
	Width  int
	Height int
}

// ============================================================================
// SHARED SETUP
// ============================================================================

// load reads the configuration and both datasets. A failed dataset is
// logged and left to the panels, which render it as an error result.
func load(ctx context.Context, configPath string) (config.AppConfig, *dataset.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Data.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Data.Timeout)
		defer cancel()
	}

	store, err := dataset.Load(ctx, cfg.Source(), cfg.Files())
	if err != nil {
		log.Printf("⚠️ railpulse: continuing with partial data: %v", err)
	}
	return cfg, store, nil
}

// runDashboard mounts the built-in panels against sink, applies the initial
// selection and renders everything once.
func runDashboard(cfg config.AppConfig, store *dataset.Store, selection filterFlags, sink dashboard.Sink) error {
	opts := append(cfg.DashboardOptions(), dashboard.WithSink(sink))
	dash := dashboard.New(store, opts...)
	if _, err := dash.MountDefaults(); err != nil {
		return err
	}
	if err := selection.apply(dash.Filters()); err != nil {
		return err
	}
	return errors.Join(dash.RenderStatic(sink), dash.NotifyAll())
}

// ============================================================================
// COMMANDS
// ============================================================================

func runSummary(ctx context.Context, configPath string, selection filterFlags, pretty bool) error {
	cfg, store, err := load(ctx, configPath)
	if err != nil {
		return err
	}
	return runDashboard(cfg, store, selection, &render.StreamSink{W: os.Stdout, Pretty: pretty})
}

func runRender(ctx context.Context, configPath string, selection filterFlags, flags renderFlags) error {
	cfg, store, err := load(ctx, configPath)
	if err != nil {
		return err
	}
	if flags.Format != "" {
		cfg.Render.Format = flags.Format
	}
	if flags.OutDir != "" {
		cfg.Render.OutDir = flags.OutDir
	}
	if flags.Width > 0 {
		cfg.Render.Width = flags.Width
	}
	if flags.Height > 0 {
		cfg.Render.Height = flags.Height
	}

	sink, err := render.ForFormat(cfg.Render.Format, cfg.Render.OutDir, cfg.Render.Width, cfg.Render.Height)
	if err != nil {
		return err
	}
	if err := runDashboard(cfg, store, selection, sink); err != nil {
		return err
	}
	log.Printf("✅ railpulse: rendered %s output to %s", cfg.Render.Format, cfg.Render.OutDir)
	return nil
}

func runCheck(ctx context.Context, configPath string) error {
	cfg, store, err := load(ctx, configPath)
	if err != nil {
		return err
	}
	printCheckReport(os.Stdout, cfg, store)
	if !store.Available(dataset.Operators) || !store.Available(dataset.Journeys) {
		return fmt.Errorf("one or more datasets failed to load")
	}
	return nil
}
