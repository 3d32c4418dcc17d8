// =============================================================================
// whalewatch - Schema Validation
// =============================================================================
//
// Input files declare their columns in their header row; nothing in code fixes
// a schema. Before any transformation runs, the converter asks this package
// whether the columns it needs are present, and gets back an explicit result
// instead of discovering absent values row by row.
//
// VALIDATION SCOPE:
//   Presence of named columns only. Cell contents are not validated here;
//   unparseable amounts are handled by the converter, row by row.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// SchemaError reports required columns missing from a file.
type SchemaError struct {
	// File is the base name of the file that failed validation.
	File string

	// Missing lists the absent columns in the order they were required.
	Missing []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, name := range e.Missing {
		quoted[i] = "'" + name + "'"
	}
	if e.File == "" {
		return fmt.Sprintf("missing column %s", strings.Join(quoted, ", "))
	}
	return fmt.Sprintf("%s: missing column %s", e.File, strings.Join(quoted, ", "))
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result is the outcome of a column check.
type Result struct {
	// Required lists the columns that were checked.
	Required []string

	// Missing lists the required columns not found.
	Missing []string
}

// OK reports whether every required column is present.
func (r Result) OK() bool {
	return len(r.Missing) == 0
}

// Err returns nil when the check passed, else a *SchemaError for file.
func (r Result) Err(file string) error {
	if r.OK() {
		return nil
	}
	return &SchemaError{File: file, Missing: r.Missing}
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// ColumnSet is anything that can answer whether it has a column.
// *csvparser.Table satisfies it.
type ColumnSet interface {
	HasColumn(name string) bool
}

// CheckColumns checks that every required column is present in columns.
func CheckColumns(columns ColumnSet, required ...string) Result {
	result := Result{Required: required}
	for _, name := range required {
		if !columns.HasColumn(name) {
			result.Missing = append(result.Missing, name)
		}
	}
	return result
}

// Headers adapts a plain header slice to ColumnSet.
type Headers []string

func (h Headers) HasColumn(name string) bool {
	for _, header := range h {
		if header == name {
			return true
		}
	}
	return false
}
