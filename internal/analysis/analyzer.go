// =============================================================================
// whalewatch - Whale Sample Analysis
// =============================================================================
//
// The analyzer reads the first few records of the accumulated output, looks
// each one up and prints a short report per transaction:
//
//   --- Analyzing Transaction: abc123... ---
//     - Total Output Value: 17.5300 BTC
//     - Number of Outputs: 2
//     - Output Details:
//       -> Address: 1MockAddress1_..., Value: 15.06
//
// A failed lookup is reported and the analyzer moves on to the next record.
// The whole file is read so the banner can state how many records it holds.
//
// =============================================================================

package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/whalewatch/internal/csvparser"
	"github.com/ginjaninja78/whalewatch/internal/logger"
	"github.com/ginjaninja78/whalewatch/internal/rpcclient"
	"github.com/ginjaninja78/whalewatch/internal/types"
	"github.com/ginjaninja78/whalewatch/internal/validation"
	"github.com/ginjaninja78/whalewatch/pkg/utils"
	"github.com/shopspring/decimal"
)

// SampleSize is the number of leading records analyzed.
const SampleSize = 5

// hashPrefixLen is how much of a hash the report header shows.
const hashPrefixLen = 15

// ErrNoProcessedData is returned when the accumulated output does not exist.
var ErrNoProcessedData = errors.New("processed data file not found")

// Sample is the analysis of one record.
type Sample struct {
	Hash        string
	Time        string
	Detail      *types.TransactionDetail
	TotalValue  decimal.Decimal
	OutputCount int

	// Err is set when the lookup failed. Detail is nil in that case.
	Err error
}

// Report holds the samples in output order.
type Report struct {
	Source string
	Mode   rpcclient.Mode

	// TotalRecords counts every record in the source, not only the sampled
	// ones.
	TotalRecords int

	Samples []Sample
}

// Analyzer prints sample reports for the accumulated output.
type Analyzer struct {
	lookup rpcclient.Lookup
	out    io.Writer
}

// New creates an Analyzer that looks records up with lookup and prints to out.
// Diagnostics go to the logger carried by the context passed to Run.
func New(lookup rpcclient.Lookup, out io.Writer) *Analyzer {
	return &Analyzer{lookup: lookup, out: out}
}

// Run analyzes the first SampleSize records of the file at outputPath.
//
// RETURNS:
//   - The report, also when some lookups failed.
//   - ErrNoProcessedData when the file is missing; any other read error
//     wrapped.
func (a *Analyzer) Run(ctx context.Context, outputPath string) (Report, error) {
	log := logger.FromContext(ctx)
	report := Report{Source: outputPath, Mode: a.lookup.Mode()}

	scan, err := scanOutput(outputPath, SampleSize)
	if errors.Is(err, fs.ErrNotExist) {
		log.Error().Str("path", outputPath).Msg("processed data file not found, run 'whalewatch process' first")
		return report, fmt.Errorf("%w: %s", ErrNoProcessedData, outputPath)
	}
	if err != nil {
		return report, fmt.Errorf("failed to read %s: %w", filepath.Base(outputPath), err)
	}
	report.TotalRecords = scan.total

	size, _ := utils.GetFileSize(outputPath)
	log.Debug().
		Str("path", outputPath).
		Int64("bytes", size).
		Int("records", scan.total).
		Msg("loaded processed data")

	rule := strings.Repeat("=", 50)
	fmt.Fprintf(a.out, "%s\nStarting Whale Transaction Analysis...\n%s\n", rule, rule)
	fmt.Fprintf(a.out, "Loaded %d transactions from '%s' (%d bytes, %s mode).\n",
		scan.total, filepath.Base(outputPath), size, report.Mode)
	if len(scan.rows) < scan.total {
		fmt.Fprintf(a.out, "Analyzing the first %d.\n", len(scan.rows))
	}

	for _, row := range scan.rows {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		sample := a.analyze(ctx, row)
		a.print(sample)
		report.Samples = append(report.Samples, sample)
	}

	fmt.Fprintf(a.out, "\n%s\nWhale Transaction Analysis Finished.\n%s\n", rule, rule)
	return report, nil
}

func (a *Analyzer) analyze(ctx context.Context, row csvparser.Row) Sample {
	sample := Sample{Hash: row["hash"], Time: row["time"]}

	detail, err := a.lookup.GetRawTransaction(ctx, sample.Hash)
	if err == nil && detail == nil {
		err = errors.New("empty lookup result")
	}
	if err != nil {
		sample.Err = err
		return sample
	}

	sample.Detail = detail
	sample.OutputCount = len(detail.Vout)
	sample.TotalValue = TotalOutputValue(detail.Vout)
	return sample
}

func (a *Analyzer) print(s Sample) {
	fmt.Fprintf(a.out, "\n--- Analyzing Transaction: %s... ---\n", prefix(s.Hash, hashPrefixLen))
	if s.Err != nil {
		fmt.Fprintln(a.out, "Could not retrieve transaction data.")
		return
	}

	fmt.Fprintf(a.out, "  - Total Output Value: %s BTC\n", s.TotalValue.StringFixed(4))
	fmt.Fprintf(a.out, "  - Number of Outputs: %d\n", s.OutputCount)
	fmt.Fprintln(a.out, "  - Output Details:")
	for _, vout := range s.Detail.Vout {
		fmt.Fprintf(a.out, "    -> Address: %s, Value: %s\n", vout.DisplayAddress(), FormatValue(vout.Value))
	}
}

// TotalOutputValue sums the output values. Outputs without a value count as
// zero.
func TotalOutputValue(outputs []types.Vout) decimal.Decimal {
	total := decimal.Zero
	for _, vout := range outputs {
		if vout.Value != nil {
			total = total.Add(decimal.NewFromFloat(*vout.Value))
		}
	}
	return total
}

// FormatValue renders an output value in its shortest form, or the
// placeholder when absent.
func FormatValue(value *float64) string {
	if value == nil {
		return types.AddressPlaceholder
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

// outputScan is what one pass over the output file yields.
type outputScan struct {
	rows  []csvparser.Row
	total int
}

// scanOutput keeps up to limit leading rows of the CSV at path and counts the
// rest. A header-only or empty file yields nothing; a file without a hash
// column is an error.
func scanOutput(path string, limit int) (outputScan, error) {
	var scan outputScan

	parser, err := csvparser.NewStreamingParser(path, csvparser.Settings{Delimiter: csvparser.Comma})
	if errors.Is(err, csvparser.ErrEmpty) {
		return scan, nil
	}
	if err != nil {
		return scan, err
	}
	defer parser.Close()

	headers := validation.Headers(parser.Headers())
	if err := validation.CheckColumns(headers, "hash").Err(filepath.Base(path)); err != nil {
		return scan, err
	}

	for parser.Next() {
		if len(scan.rows) < limit {
			scan.rows = append(scan.rows, parser.Row())
		}
	}
	if err := parser.Err(); err != nil {
		return scan, err
	}
	// RowNumber includes the header row.
	scan.total = parser.RowNumber() - 1
	return scan, nil
}

// FirstHash returns the hash of the first record in the file at path.
// It reports false when the file is missing, unreadable or has no records.
func FirstHash(path string) (string, bool) {
	scan, err := scanOutput(path, 1)
	if err != nil || len(scan.rows) == 0 || scan.rows[0]["hash"] == "" {
		return "", false
	}
	return scan.rows[0]["hash"], true
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
