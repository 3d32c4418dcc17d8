// =============================================================================
// whalewatch - Process Command
// =============================================================================
//
// This file defines the 'process' command, the batch transformer entry point.
//
// COMMAND USAGE:
//   whalewatch process [flags]
//
// FLAGS:
//   --dry-run     : List the files that would be processed, write nothing
//
// PROCESSING PIPELINE:
//   1. Make sure the output directory exists
//   2. Delete the previous output file, so every run starts clean
//   3. Discover input files (sorted by name)
//   4. For each file, in order:
//      a. Parse the tab-separated table
//      b. Check for input_total, filter whales, check for hash and time
//      c. Append hash and time to the output
//   5. Print the summary (and write it to a file when summary_log is set)
//
// A file that cannot be processed is reported and skipped; it never stops
// the run. Running twice over the same inputs gives the same output.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ginjaninja78/whalewatch/internal/converter"
	"github.com/ginjaninja78/whalewatch/internal/csvwriter"
	"github.com/ginjaninja78/whalewatch/internal/logger"
	"github.com/ginjaninja78/whalewatch/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun lists the input files without deleting or writing anything.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Rebuild the whale list from the input directory",
	Long: `The process command scans the input directory for tab-separated transaction
exports and writes every transaction with input_total of at least 10 BTC
(1,000,000,000 satoshi) to the output CSV, keeping only its hash and time.

The output file is deleted first, so it always reflects exactly the files that
are present now. Files missing a required column, empty files and unreadable
files are reported and skipped.`,

	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"List the files that would be processed without writing output",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the batch transformer.
func runProcess(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := env.cfg
	log := logger.FromContext(ctx)
	out := cmd.OutOrStdout()
	outputPath := cfg.OutputPath()

	fmt.Fprintln(out, "=== whalewatch: batch transform ===")

	// =========================================================================
	// STEPS 1-2: PREPARE OUTPUT
	// =========================================================================

	if !dryRun {
		if err := cfg.EnsureOutputDir(); err != nil {
			return err
		}
		removed, err := csvwriter.Remove(outputPath)
		if err != nil {
			return err
		}
		if removed {
			log.Info().Str("path", outputPath).Msg("removed previous output")
		}
	}

	// =========================================================================
	// STEP 3: DISCOVER INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputExtension, log)
	files, err := fm.DiscoverInputFiles()
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}

	if len(files) == 0 {
		fmt.Fprintf(out, "No %s files found in %s.\n", cfg.InputExtension, cfg.InputDir)
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(files))

	if dryRun {
		for _, file := range files {
			fmt.Fprintf(out, "  - %s\n", filepath.Base(file))
		}
		fmt.Fprintf(out, "Dry run: %s was not modified.\n", outputPath)
		return nil
	}

	// =========================================================================
	// STEP 4: PROCESS FILES SEQUENTIALLY
	// =========================================================================

	summary := converter.RunBatch(ctx, converter.BatchOptions{
		Files:      files,
		OutputPath: outputPath,
		Converter:  converter.New(),
	})

	for _, result := range summary.Results {
		switch result.Status {
		case converter.StatusAppended:
			fmt.Fprintf(out, "  ✓ %s: %d row(s)\n", result.FileName(), result.RowsAppended)
		case converter.StatusSkipped:
			fmt.Fprintf(out, "  - %s: skipped (%v)\n", result.FileName(), result.Err)
		default:
			fmt.Fprintf(out, "  ✗ %s: %v\n", result.FileName(), result.Err)
		}
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(files))
	fmt.Fprintf(out, "Appended:        %d\n", summary.FilesAppended)
	fmt.Fprintf(out, "Skipped:         %d\n", summary.FilesSkipped)
	fmt.Fprintf(out, "Failed:          %d\n", summary.FilesFailed)
	fmt.Fprintf(out, "Rows written:    %d\n", summary.RowsAppended)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.Duration())
	if summary.Cancelled {
		fmt.Fprintf(out, "Interrupted after %d of %d file(s).\n", summary.TotalFiles(), len(files))
	}
	if utils.FileExists(outputPath) {
		fmt.Fprintf(out, "Output:          %s\n", outputPath)
	}

	log.Info().
		Str("run_id", summary.RunID).
		Int("appended", summary.FilesAppended).
		Int("skipped", summary.FilesSkipped).
		Int("failed", summary.FilesFailed).
		Int("rows", summary.RowsAppended).
		Msg("batch finished")

	if cfg.SummaryLog {
		path, err := utils.WriteSummaryLog(toProcessingSummary(summary, outputPath, len(files)), cfg.OutputDir)
		if err != nil {
			log.Warn().Err(err).Msg("failed to write summary log")
		} else {
			fmt.Fprintf(out, "Summary:         %s\n", path)
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// toProcessingSummary converts a batch summary for the summary log.
func toProcessingSummary(summary converter.Summary, outputPath string, discovered int) utils.ProcessingSummary {
	ps := utils.ProcessingSummary{
		RunID:        summary.RunID,
		StartTime:    summary.StartTime,
		EndTime:      summary.EndTime,
		OutputFile:   outputPath,
		TotalFiles:   discovered,
		Appended:     summary.FilesAppended,
		Skipped:      summary.FilesSkipped,
		Failed:       summary.FilesFailed,
		RowsAppended: summary.RowsAppended,
	}
	for _, result := range summary.Results {
		outcome := utils.FileOutcome{
			InputFile:   result.FileName(),
			Status:      string(result.Status),
			Rows:        result.RowsAppended,
			ProcessTime: result.Duration,
		}
		if result.Err != nil {
			outcome.Message = result.Err.Error()
		}
		ps.Files = append(ps.Files, outcome)
	}
	return ps
}
