// =============================================================================
// whalewatch - Transformation Engine
// =============================================================================
//
// This module holds the row-level transformations of the batch transformer:
//
//   1. Unit conversion   input_total (smallest unit) -> major unit (/ 10^8)
//   2. Threshold filter  keep rows whose major-unit amount is >= 10
//   3. Projection        keep only the hash and time columns
//
// NUMERIC SEMANTICS:
//   Amounts are decimals, not floats, so 1000000000 / 10^8 is exactly 10 and
//   passes the inclusive threshold. Unparseable or empty input becomes the
//   Missing amount, which never passes the threshold and is distinct from 0.
//
// =============================================================================

package converter

import (
	"strings"

	"github.com/ginjaninja78/whalewatch/internal/csvparser"
	"github.com/ginjaninja78/whalewatch/internal/types"
	"github.com/shopspring/decimal"
)

// Column names read from transaction exports.
const (
	ColumnInputTotal = "input_total"
	ColumnHash       = "hash"
	ColumnTime       = "time"
)

// SmallestUnitExponent is the number of decimal places between the smallest
// unit and the major unit.
const SmallestUnitExponent = 8

// WhaleThreshold is the inclusive major-unit lower bound for a whale
// transaction.
var WhaleThreshold = decimal.NewFromInt(10)

// =============================================================================
// AMOUNT
// =============================================================================

// Amount is a major-unit value that may be missing.
// The zero value is Missing.
type Amount struct {
	value decimal.Decimal
	valid bool
}

// Missing is the amount of an empty or unparseable cell.
var Missing = Amount{}

// NewAmount wraps a major-unit value.
func NewAmount(value decimal.Decimal) Amount {
	return Amount{value: value, valid: true}
}

// IsMissing reports whether the amount could not be parsed.
func (a Amount) IsMissing() bool {
	return !a.valid
}

// AtLeast reports whether the amount is present and >= threshold.
func (a Amount) AtLeast(threshold decimal.Decimal) bool {
	return a.valid && a.value.GreaterThanOrEqual(threshold)
}

// String renders the amount, or "NaN" when missing.
func (a Amount) String() string {
	if !a.valid {
		return "NaN"
	}
	return a.value.String()
}

// ParseAmount converts a smallest-unit cell to a major-unit Amount.
//
// Accepted forms are integers, decimals and exponent notation, with
// surrounding whitespace ignored:
//   "1500000000" -> 15
//   "1.5e9"      -> 15
//   "abc", ""    -> Missing
func ParseAmount(raw string) Amount {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Missing
	}
	smallest, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Missing
	}
	return NewAmount(smallest.Shift(-SmallestUnitExponent))
}

// =============================================================================
// FILTER AND PROJECTION
// =============================================================================

// FilterWhales returns the rows whose input_total converts to at least
// WhaleThreshold, in their original order.
func FilterWhales(rows []csvparser.Row) []csvparser.Row {
	var filtered []csvparser.Row
	for _, row := range rows {
		if ParseAmount(row[ColumnInputTotal]).AtLeast(WhaleThreshold) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// Project keeps the hash and time of each row, preserving order.
func Project(rows []csvparser.Row) []types.FilteredRecord {
	records := make([]types.FilteredRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, types.FilteredRecord{
			Hash: row[ColumnHash],
			Time: row[ColumnTime],
		})
	}
	return records
}
