package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/railpulse"
	"github.com/spektr-org/railpulse/config"
)

func main() {
	config.InitLogging()

	var (
		configPath string
		selection  filterFlags
	)

	rootCmd := &cobra.Command{
		Use:     "railpulse",
		Short:   "Rail punctuality and journey analytics dashboard",
		Version: railpulse.Version,
		Long: `railpulse loads the European operator punctuality dataset and the UK
journey dataset, applies the selected filters and computes every dashboard
panel.

Examples:
  railpulse summary --station York --class "First Class"
  railpulse render --format png --out report
  railpulse replay clicks.yaml
  railpulse check --config railpulse.yml`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	selection.register(rootCmd)

	rootCmd.AddCommand(summaryCmd(&configPath, &selection))
	rootCmd.AddCommand(renderCmd(&configPath, &selection))
	rootCmd.AddCommand(replayCmd(&configPath))
	rootCmd.AddCommand(checkCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func summaryCmd(configPath *string, selection *filterFlags) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Compute every panel and print the results as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd.Context(), *configPath, *selection, !compact)
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "one JSON document per line")
	return cmd
}

func renderCmd(configPath *string, selection *filterFlags) *cobra.Command {
	var format, outDir string
	var width, height int

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write every panel to files (svg, png, csv or json)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd.Context(), *configPath, *selection, renderFlags{
				Format: format,
				OutDir: outDir,
				Width:  width,
				Height: height,
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: svg, png, csv, json (default from config)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	cmd.Flags().IntVar(&width, "width", 0, "chart width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "chart height in pixels")
	return cmd
}

func replayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "replay [script.yaml]",
		Short: "Apply a scripted sequence of clicks and print the panels after each",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), *configPath, args[0])
		},
	}
}

func checkCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and load both datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), *configPath)
		},
	}
}
