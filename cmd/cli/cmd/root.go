// Package cmd provides the CLI commands for observatory.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"observatory/core/engine"
	"observatory/core/filter"
	"observatory/core/output"
	"observatory/internal/config"
	"observatory/internal/loader"
	"observatory/internal/logging"
	"observatory/internal/metrics"
)

const version = "0.1.0"

var (
	cfgFile string
	verbose bool
	dataDir string

	layerFlag    string
	statusFlag   string
	yearFlag     int
	cumulative   bool
	showUndated  bool
	outputFormat string
	loadedConfig *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "observatory",
	Short: "Aggregate Mexican subnational policy data by state",
	Long: `observatory loads the industrial policy, investment, energy and
development-pole datasets, normalizes their state names, and aggregates
them per state under a layer, year and status filter.

Examples:
  observatory summary Jalisco "Nuevo León"
  observatory value Jalisco --layer instruments
  observatory linkages --region Jalisco --year 2020
  observatory serve --addr :9000`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (JSON or YAML)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVarP(&dataDir, "data", "d", "", "dataset directory (overrides data.dir)")

	flags.StringVarP(&layerFlag, "layer", "l", "", "active layer")
	flags.StringVarP(&statusFlag, "status", "s", "", "only records with this status")
	flags.IntVarP(&yearFlag, "year", "y", 0, "year bound")
	flags.BoolVar(&cumulative, "cumulative", true, "include every year up to --year")
	flags.BoolVar(&showUndated, "undated", true, "include records without a year")
	flags.StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")

	// Add subcommands
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(linkagesCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(distributionCmd)
	rootCmd.AddCommand(pieCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(layersCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig loads the config file and applies the flags the user set on top
func initConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Dir = dataDir
	}
	if flags.Changed("layer") {
		cfg.Filter.Layer = filter.Layer(layerFlag)
	}
	if flags.Changed("status") {
		cfg.Filter.Status = statusFlag
	}
	if flags.Changed("year") {
		cfg.Filter.Year = yearFlag
	}
	if flags.Changed("cumulative") {
		cfg.Filter.Cumulative = cumulative
	}
	if flags.Changed("undated") {
		cfg.Filter.IncludeUndated = showUndated
	}
	if flags.Changed("format") {
		cfg.Output.DefaultFormat = outputFormat
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	loadedConfig = cfg
	return nil
}

// openEngine loads the datasets and computes the initial snapshot
func openEngine(ctx context.Context, m *metrics.Metrics) (*engine.Engine, error) {
	cfg := loadedConfig
	store, err := loader.New(logging.Named("loader")).Load(ctx, loader.Options{
		Dir:       cfg.Data.Dir,
		GeoJSON:   cfg.GeoJSONPath(),
		AliasFile: cfg.Data.AliasFile,
	})
	if err != nil {
		return nil, err
	}
	return engine.New(store, cfg.Filter,
		engine.WithLogger(logging.Named("engine")),
		engine.WithMetrics(m),
	)
}

// render writes doc to the command's output in the configured format
func render(cmd *cobra.Command, doc *output.Document) error {
	f, err := output.NewRegistry().Get(output.Format(loadedConfig.Output.DefaultFormat))
	if err != nil {
		return err
	}
	return f.Render(cmd.OutOrStdout(), doc)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "observatory version %s\n", version)
	},
}
