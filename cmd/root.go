// =============================================================================
// whalewatch - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (whalewatch)
//   ├── processCmd  (whalewatch process)
//   ├── analyzeCmd  (whalewatch analyze)
//   ├── lookupCmd   (whalewatch lookup [txid])
//   ├── configCmd   (whalewatch config)
//   └── versionCmd  (whalewatch version)
//
// STARTUP (PersistentPreRunE, for every command except version):
//   1. Load configuration (file, .env, environment, then flags)
//   2. Set up logging
//   3. Set up tracing
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ginjaninja78/whalewatch/internal/analysis"
	"github.com/ginjaninja78/whalewatch/internal/config"
	"github.com/ginjaninja78/whalewatch/internal/logger"
	"github.com/ginjaninja78/whalewatch/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging regardless of log_level.
var verbose bool

// Flag overrides, applied only when the flag was given.
var (
	inputDirFlag  string
	outputDirFlag string
	simulateFlag  bool
)

// runtimeEnv is what PersistentPreRunE builds for the command being run.
type runtimeEnv struct {
	cfg      config.Config
	log      zerolog.Logger
	closers  []io.Closer
	shutdown func(context.Context) error
}

var env runtimeEnv

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "whalewatch",
	Short: "whalewatch - Find and inspect large Bitcoin transactions",
	Long: `whalewatch scans a directory of tab-separated transaction exports, keeps the
transactions moving at least 10 BTC ("whales") and appends their hash and time
to a single CSV file. The analyze command then looks up the first few whales
through a Bitcoin Core node, or through a built-in simulator.

Example Usage:
  whalewatch process                      # Rebuild the whale list from ./data
  whalewatch process --input-dir ./dumps  # Use another input directory
  whalewatch analyze                      # Inspect the first 5 whales
  whalewatch analyze --xlsx whales.xlsx   # ...and save them as a workbook
  whalewatch lookup <txid>                # Look up a single transaction`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
// Ctrl-C cancels the command context; a batch run stops after the current
// file.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	teardown()
	if errors.Is(err, analysis.ErrNoProcessedData) {
		fmt.Fprintf(os.Stderr, "%v\nRun 'whalewatch process' first to generate the data.\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().StringVar(
		&inputDirFlag,
		"input-dir",
		"",
		"Directory scanned for input files (overrides input_dir)",
	)

	rootCmd.PersistentFlags().StringVar(
		&outputDirFlag,
		"output-dir",
		"",
		"Directory holding the output file (overrides output_dir)",
	)

	rootCmd.PersistentFlags().BoolVar(
		&simulateFlag,
		"simulate",
		false,
		"Use the built-in transaction simulator instead of a node (overrides simulation)",
	)
}

// =============================================================================
// SETUP AND TEARDOWN
// =============================================================================

// setup loads the configuration and builds the logger and tracer.
func setup(cmd *cobra.Command) error {
	switch cmd.Name() {
	case versionCmd.Name(), "help":
		return nil
	}

	cfg, err := config.LoadFromEnv(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log, closer, err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	env = runtimeEnv{cfg: cfg, log: log}
	if closer != nil {
		env.closers = append(env.closers, closer)
	}

	shutdown, err := telemetry.InitTracer(cmd.Context(), cfg.OtelEndpoint)
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}
	env.shutdown = shutdown

	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	log.Debug().Str("config", cfgFile).Bool("simulation", cfg.SimulationMode()).Msg("configuration loaded")
	return nil
}

// applyFlags overlays explicitly given flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input-dir") {
		// A derived output directory follows the new input directory.
		derived := cfg.OutputDir == config.DefaultOutputDir(cfg.InputDir)
		cfg.InputDir = inputDirFlag
		if derived {
			cfg.OutputDir = config.DefaultOutputDir(cfg.InputDir)
		}
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDirFlag
	}
	if flags.Changed("simulate") {
		enabled := simulateFlag
		cfg.Simulation = &enabled
	}
	return cfg.Validate()
}

// teardown flushes spans and closes log files. Safe to call twice.
func teardown() {
	if env.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := env.shutdown(ctx); err != nil {
			env.log.Warn().Err(err).Msg("failed to flush traces")
		}
		env.shutdown = nil
	}
	for _, closer := range env.closers {
		closer.Close()
	}
	env.closers = nil
}
