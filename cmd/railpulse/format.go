package main

import (
	"fmt"
	"io"

	"github.com/spektr-org/railpulse/config"
	"github.com/spektr-org/railpulse/dataset"
)

func printCheckReport(w io.Writer, cfg config.AppConfig, store *dataset.Store) {
	fmt.Fprintf(w, "CONFIG\n")
	fmt.Fprintf(w, "  reference country: %s\n", cfg.Dashboard.ReferenceCountry)
	fmt.Fprintf(w, "  render: %s -> %s\n", cfg.Render.Format, cfg.Render.OutDir)
	if cfg.Data.BaseURL != "" {
		fmt.Fprintf(w, "  source: %s\n", cfg.Data.BaseURL)
	} else {
		fmt.Fprintf(w, "  source: %s\n", cfg.Data.Root)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "DATASETS\n")
	printDataset(w, "operators", cfg.Data.Operators, len(store.Operators()), store.Err(dataset.Operators))
	if store.Available(dataset.Operators) {
		fmt.Fprintf(w, "    %d country rows after expanding joint operators\n", len(store.CountryRows()))
	}
	printDataset(w, "journeys", cfg.Data.Journeys, len(store.Journeys()), store.Err(dataset.Journeys))
}

func printDataset(w io.Writer, name, file string, rows int, err error) {
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %-9s %s\n", name, file)
		fmt.Fprintf(w, "    %v\n", err)
		return
	}
	fmt.Fprintf(w, "  [OK]   %-9s %s (%d rows)\n", name, file, rows)
}
