// =============================================================================
// whalewatch - Converter Module
// =============================================================================
//
// This module contains the per-file conversion logic: one transaction export
// in, zero or more whale records appended to the accumulated output.
//
// CONVERSION PIPELINE:
//   1. Parse the input as a tab-separated table (header row = field names)
//   2. Require the input_total column, else skip the file
//   3. Convert input_total to the major unit (unparseable -> Missing)
//   4. Keep rows with amount >= 10 (Missing never passes)
//   5. Require the hash and time columns, else skip the file
//   6. Project to hash and time, preserving row order
//   7. Append to the output (header only when the file is new)
//
// Any failure inside one file is reported and counted as zero rows for that
// file. ProcessFile never returns an error and never lets a panic escape.
// Progress is logged through the logger carried by the context.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/whalewatch/internal/csvparser"
	"github.com/ginjaninja78/whalewatch/internal/csvwriter"
	"github.com/ginjaninja78/whalewatch/internal/logger"
	"github.com/ginjaninja78/whalewatch/internal/telemetry"
	"github.com/ginjaninja78/whalewatch/internal/validation"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrMissingColumn is matched by every skip caused by an absent column.
var ErrMissingColumn = errors.New("missing required column")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Status classifies the outcome of one file.
type Status string

const (
	// StatusAppended means the file passed every check; it may still have
	// contributed zero rows.
	StatusAppended Status = "appended"

	// StatusSkipped means a required column was absent.
	StatusSkipped Status = "skipped"

	// StatusFailed means the file could not be read, decoded or written.
	StatusFailed Status = "failed"
)

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Status is the outcome class.
	Status Status

	// RowsRead is the number of data rows in the input.
	RowsRead int

	// RowsAppended is the number of records written to the output.
	RowsAppended int

	// Err explains a skip or failure. Nil when Status is StatusAppended.
	Err error

	// Duration is the time taken to process the file.
	Duration time.Duration
}

// FileName returns the base name of the input file.
func (r Result) FileName() string {
	return filepath.Base(r.FilePath)
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter appends whale records from transaction exports to an output file.
type Converter struct {
	tracer trace.Tracer
}

// New creates a Converter.
func New() *Converter {
	return &Converter{
		tracer: telemetry.Tracer("whalewatch/converter"),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// ProcessFile converts the export at inputPath and appends the result to
// outputPath. See the package comment for the steps.
func (c *Converter) ProcessFile(ctx context.Context, inputPath, outputPath string) (result Result) {
	start := time.Now()
	name := filepath.Base(inputPath)
	result = Result{FilePath: inputPath}
	log := logger.FromContext(ctx).With().Str("file", name).Logger()

	_, span := c.tracer.Start(ctx, "whalewatch.process_file",
		trace.WithAttributes(attribute.String("file", name)))

	defer func() {
		if recovered := recover(); recovered != nil {
			result.Status = StatusFailed
			result.RowsAppended = 0
			result.Err = fmt.Errorf("unexpected error: %v", recovered)
		}
		result.Duration = time.Since(start)
		report(log, result)

		span.SetAttributes(
			attribute.String("status", string(result.Status)),
			attribute.Int("rows", result.RowsAppended),
		)
		if result.Status == StatusFailed {
			span.SetStatus(codes.Error, result.Err.Error())
		}
		span.End()
	}()

	rows, appended, err := c.convert(log, inputPath, outputPath)
	result.RowsRead = rows
	result.RowsAppended = appended
	switch {
	case err == nil:
		result.Status = StatusAppended
	case errors.Is(err, ErrMissingColumn):
		result.Status = StatusSkipped
		result.Err = err
	default:
		result.Status = StatusFailed
		result.Err = err
	}
	return result
}

// convert runs steps 1-7 and returns the rows read and appended.
func (c *Converter) convert(log zerolog.Logger, inputPath, outputPath string) (int, int, error) {
	name := filepath.Base(inputPath)

	// =========================================================================
	// STEP 1: PARSE INPUT
	// =========================================================================

	table, err := csvparser.ParseFile(inputPath, csvparser.Settings{Delimiter: csvparser.Tab})
	if err != nil {
		return 0, 0, err
	}

	// =========================================================================
	// STEP 2: REQUIRE THE AMOUNT COLUMN
	// =========================================================================

	if err := validation.CheckColumns(table, ColumnInputTotal).Err(name); err != nil {
		return len(table.Rows), 0, fmt.Errorf("%w: %w", ErrMissingColumn, err)
	}

	// =========================================================================
	// STEPS 3-4: CONVERT AND FILTER
	// =========================================================================

	whales := FilterWhales(table.Rows)
	log.Debug().
		Int("rows", len(table.Rows)).
		Int("whales", len(whales)).
		Msg("filtered rows")

	// =========================================================================
	// STEP 5: REQUIRE THE OUTPUT COLUMNS
	// =========================================================================
	// Checked after the filter. When both kinds of column are missing the
	// amount column is the one reported.

	if err := validation.CheckColumns(table, ColumnHash, ColumnTime).Err(name); err != nil {
		return len(table.Rows), 0, fmt.Errorf("%w: %w", ErrMissingColumn, err)
	}

	// =========================================================================
	// STEPS 6-7: PROJECT AND APPEND
	// =========================================================================

	records := Project(whales)
	if _, err := csvwriter.Append(outputPath, records); err != nil {
		return len(table.Rows), 0, err
	}

	return len(table.Rows), len(records), nil
}

// report logs the outcome of one file.
func report(log zerolog.Logger, result Result) {
	switch result.Status {
	case StatusAppended:
		log.Info().
			Int("rows", result.RowsRead).
			Int("appended", result.RowsAppended).
			Dur("took", result.Duration).
			Msg("processed file")
	case StatusSkipped:
		log.Warn().
			Err(result.Err).
			Msg("skipping file")
	default:
		log.Error().
			Err(result.Err).
			Msg("failed to process file")
	}
}
