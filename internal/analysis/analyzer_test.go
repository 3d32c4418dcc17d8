package analysis

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ginjaninja78/whalewatch/internal/logger"
	"github.com/ginjaninja78/whalewatch/internal/rpcclient"
	"github.com/ginjaninja78/whalewatch/internal/types"
	"github.com/ginjaninja78/whalewatch/internal/validation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// failingLookup fails for the listed identifiers and defers to the mock for
// the rest.
type failingLookup struct {
	mock  *rpcclient.MockClient
	fail  map[string]bool
	calls []string
}

func (f *failingLookup) GetRawTransaction(ctx context.Context, txid string) (*types.TransactionDetail, error) {
	f.calls = append(f.calls, txid)
	if f.fail[txid] {
		return nil, errors.New("not found")
	}
	return f.mock.GetRawTransaction(ctx, txid)
}

func (f *failingLookup) Mode() rpcclient.Mode { return rpcclient.ModeLive }

// quietContext carries a discarding logger.
func quietContext() context.Context {
	return logger.WithContext(context.Background(), zerolog.Nop())
}

func writeOutput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed_transactions.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_PrintsReport(t *testing.T) {
	path := writeOutput(t, "hash,time\nabc1234567890abcdef,1000\n")
	var out bytes.Buffer

	report, err := New(rpcclient.NewMockClient(zerolog.Nop()), &out).Run(quietContext(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Samples) != 1 {
		t.Fatalf("len(Samples) = %d", len(report.Samples))
	}

	sample := report.Samples[0]
	if sample.OutputCount != 2 || !sample.TotalValue.Equal(decimal.RequireFromString("17.53")) {
		t.Errorf("sample = %+v", sample)
	}

	text := out.String()
	for _, want := range []string{
		"--- Analyzing Transaction: abc1234567890ab... ---",
		"Total Output Value: 17.5300 BTC",
		"Number of Outputs: 2",
		"-> Address: 1MockAddress1_xxxxxxxxxxxxxxxxx, Value: 15.06",
		"-> Address: 1MockAddress2_yyyyyyyyyyyyyyyyy, Value: 2.47",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q\n%s", want, text)
		}
	}
}

// fixedLookup returns the same detail for every identifier.
type fixedLookup struct{ detail *types.TransactionDetail }

func (f fixedLookup) GetRawTransaction(context.Context, string) (*types.TransactionDetail, error) {
	return f.detail, nil
}

func (f fixedLookup) Mode() rpcclient.Mode { return rpcclient.ModeLive }

func TestRun_PlaceholdersForMissingFields(t *testing.T) {
	path := writeOutput(t, "hash,time\nx,1\n")
	value := 1.5
	lookup := fixedLookup{detail: &types.TransactionDetail{
		TxID: "x",
		Vout: []types.Vout{
			{N: 0},
			{N: 1, Value: &value, ScriptPubKey: types.ScriptPubKey{Address: "bc1qexample"}},
		},
	}}
	var out bytes.Buffer

	report, err := New(lookup, &out).Run(quietContext(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Samples[0].TotalValue.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("TotalValue = %s", report.Samples[0].TotalValue)
	}
	for _, want := range []string{
		"-> Address: N/A, Value: N/A",
		"-> Address: bc1qexample, Value: 1.5",
		"Total Output Value: 1.5000 BTC",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q\n%s", want, out.String())
		}
	}
}

func TestRun_SamplesFirstFive(t *testing.T) {
	var body strings.Builder
	body.WriteString("hash,time\n")
	for _, h := range []string{"h1", "h2", "h3", "h4", "h5", "h6", "h7"} {
		body.WriteString(h + ",1\n")
	}
	path := writeOutput(t, body.String())

	lookup := &failingLookup{mock: rpcclient.NewMockClient(zerolog.Nop())}
	report, err := New(lookup, &bytes.Buffer{}).Run(quietContext(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Samples) != SampleSize {
		t.Errorf("len(Samples) = %d, want %d", len(report.Samples), SampleSize)
	}
	want := []string{"h1", "h2", "h3", "h4", "h5"}
	if strings.Join(lookup.calls, ",") != strings.Join(want, ",") {
		t.Errorf("looked up %v, want %v", lookup.calls, want)
	}
}

func TestRun_CountsEveryRecord(t *testing.T) {
	var body strings.Builder
	body.WriteString("hash,time\n")
	for _, h := range []string{"h1", "h2", "h3", "h4", "h5", "h6", "h7"} {
		body.WriteString(h + ",1\n")
	}
	path := writeOutput(t, body.String())
	var out bytes.Buffer

	report, err := New(rpcclient.NewMockClient(zerolog.Nop()), &out).Run(quietContext(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.TotalRecords != 7 {
		t.Errorf("TotalRecords = %d, want 7", report.TotalRecords)
	}

	size := len(body.String())
	for _, want := range []string{
		"Loaded 7 transactions from 'processed_transactions.csv' (" + strconv.Itoa(size) + " bytes, simulation mode).",
		"Analyzing the first 5.",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q\n%s", want, out.String())
		}
	}
}

func TestRun_OutputWithoutHashColumn(t *testing.T) {
	path := writeOutput(t, "txid,time\nabc,1\n")

	_, err := New(rpcclient.NewMockClient(zerolog.Nop()), &bytes.Buffer{}).Run(quietContext(), path)
	var schemaErr *validation.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != "hash" {
		t.Errorf("Missing = %v, want [hash]", schemaErr.Missing)
	}
}

func TestRun_LogsThroughContextLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	var logged bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&logged))

	_, err := New(rpcclient.NewMockClient(zerolog.Nop()), &bytes.Buffer{}).Run(ctx, path)
	if !errors.Is(err, ErrNoProcessedData) {
		t.Fatalf("err = %v, want ErrNoProcessedData", err)
	}
	if !strings.Contains(logged.String(), "processed data file not found") {
		t.Errorf("log = %q", logged.String())
	}
}

func TestRun_FailedLookupContinues(t *testing.T) {
	path := writeOutput(t, "hash,time\nbad,1\ngood,2\n")
	lookup := &failingLookup{mock: rpcclient.NewMockClient(zerolog.Nop()), fail: map[string]bool{"bad": true}}
	var out bytes.Buffer

	report, err := New(lookup, &out).Run(quietContext(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Samples) != 2 || report.Samples[0].Err == nil || report.Samples[1].Err != nil {
		t.Fatalf("samples = %+v", report.Samples)
	}
	if !strings.Contains(out.String(), "Could not retrieve transaction data.") {
		t.Error("missing failure line")
	}
	if strings.Count(out.String(), "--- Analyzing Transaction:") != 2 {
		t.Error("expected a header for each record")
	}
}

func TestRun_MissingOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	var out bytes.Buffer

	_, err := New(rpcclient.NewMockClient(zerolog.Nop()), &out).Run(quietContext(), path)
	if !errors.Is(err, ErrNoProcessedData) {
		t.Fatalf("err = %v, want ErrNoProcessedData", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestRun_HeaderOnly(t *testing.T) {
	path := writeOutput(t, "hash,time\n")

	report, err := New(rpcclient.NewMockClient(zerolog.Nop()), &bytes.Buffer{}).Run(quietContext(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Samples) != 0 {
		t.Errorf("len(Samples) = %d, want 0", len(report.Samples))
	}
}

func TestTotalOutputValue(t *testing.T) {
	a, b := 0.1, 0.2
	got := TotalOutputValue([]types.Vout{{Value: &a}, {Value: &b}, {}})
	if !got.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("TotalOutputValue = %s, want 0.3", got)
	}
}

func TestFormatValue(t *testing.T) {
	v := 15.06
	if got := FormatValue(&v); got != "15.06" {
		t.Errorf("FormatValue = %q", got)
	}
	if got := FormatValue(nil); got != types.AddressPlaceholder {
		t.Errorf("FormatValue(nil) = %q", got)
	}
}

func TestFirstHash(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want string
		ok   bool
	}{
		{"first record", func(t *testing.T) string { return writeOutput(t, "hash,time\nfirst,1\nsecond,2\n") }, "first", true},
		{"header only", func(t *testing.T) string { return writeOutput(t, "hash,time\n") }, "", false},
		{"no hash column", func(t *testing.T) string { return writeOutput(t, "txid,time\nabc,1\n") }, "", false},
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") }, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstHash(tt.path(t))
			if got != tt.want || ok != tt.ok {
				t.Errorf("FirstHash = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
