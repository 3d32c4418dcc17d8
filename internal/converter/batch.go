// =============================================================================
// whalewatch - Batch Runner
// =============================================================================
//
// RunBatch processes discovered files one after another against a single
// accumulated output. Files are handled strictly in the order given so the
// output order is deterministic. A failing file never stops the batch.
//
// =============================================================================

package converter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BatchOptions configures one batch run.
type BatchOptions struct {
	// Files are the input paths, in processing order.
	Files []string

	// OutputPath is the accumulated output file.
	OutputPath string

	// Converter processes each file.
	Converter *Converter
}

// Summary aggregates the results of a batch run.
type Summary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Results   []Result

	FilesAppended int
	FilesSkipped  int
	FilesFailed   int
	RowsAppended  int

	// Cancelled is set when the context ended before every file was seen.
	Cancelled bool
}

// Duration returns the wall time of the run.
func (s Summary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// TotalFiles returns the number of files that were processed.
func (s Summary) TotalFiles() int {
	return len(s.Results)
}

// RunBatch processes every file in opts.Files sequentially.
//
// The context is checked between files; an in-flight file always finishes
// so the output never ends mid-file.
func RunBatch(ctx context.Context, opts BatchOptions) Summary {
	summary := Summary{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
		Results:   make([]Result, 0, len(opts.Files)),
	}

	for _, path := range opts.Files {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		result := opts.Converter.ProcessFile(ctx, path, opts.OutputPath)
		summary.Results = append(summary.Results, result)

		switch result.Status {
		case StatusAppended:
			summary.FilesAppended++
			summary.RowsAppended += result.RowsAppended
		case StatusSkipped:
			summary.FilesSkipped++
		default:
			summary.FilesFailed++
		}
	}

	summary.EndTime = time.Now()
	return summary
}
