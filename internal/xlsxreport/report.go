// =============================================================================
// whalewatch - Excel Report Export
// =============================================================================
//
// Writes an analysis report as a workbook with a single "Whales" sheet:
//
//   | Hash | Time | Status | Confirmations | Output | Address | Value | Total Output Value |
//
// One row per sampled output. A sample whose lookup failed gets one row with
// the status "lookup failed" and empty output columns.
//
// =============================================================================

package xlsxreport

import (
	"fmt"

	"github.com/ginjaninja78/whalewatch/internal/analysis"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the report sheet.
const SheetName = "Whales"

// Header is the first row of the sheet.
var Header = []any{"Hash", "Time", "Status", "Confirmations", "Output", "Address", "Value", "Total Output Value"}

// Write saves report as a workbook at path, replacing any existing file.
func Write(path string, report analysis.Report) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]any{Header}
	for _, sample := range report.Samples {
		rows = append(rows, sampleRows(sample)...)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func sampleRows(sample analysis.Sample) [][]any {
	if sample.Err != nil || sample.Detail == nil {
		return [][]any{{sample.Hash, sample.Time, "lookup failed", "", "", "", "", ""}}
	}

	total := sample.TotalValue.InexactFloat64()
	if len(sample.Detail.Vout) == 0 {
		return [][]any{{sample.Hash, sample.Time, "ok", sample.Detail.Confirmations, "", "", "", total}}
	}

	rows := make([][]any, 0, len(sample.Detail.Vout))
	for _, vout := range sample.Detail.Vout {
		var value any = analysis.FormatValue(vout.Value)
		if vout.Value != nil {
			value = *vout.Value
		}
		rows = append(rows, []any{
			sample.Hash,
			sample.Time,
			"ok",
			sample.Detail.Confirmations,
			vout.N,
			vout.DisplayAddress(),
			value,
			total,
		})
	}
	return rows
}
