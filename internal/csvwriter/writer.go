// =============================================================================
// whalewatch - Accumulated Output Writer
// =============================================================================
//
// This module writes filtered records to the single accumulated output file.
//
// FILE CONTRACT:
//   hash,time            <- header, written once when the file is created
//   abc123,1000          <- rows, appended per input file in processing order
//   ...
//
// Each call renders its whole contribution in memory first and hands it to
// the file in one write, so a failed call never leaves half a row behind.
// The file is opened and closed within the call.
//
// =============================================================================

package csvwriter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ginjaninja78/whalewatch/internal/types"
)

// Render encodes records as CSV, preceded by the header when withHeader is
// set.
func Render(records []types.FilteredRecord, withHeader bool) ([]byte, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	if withHeader {
		if err := writer.Write(types.OutputHeader); err != nil {
			return nil, err
		}
	}
	for _, record := range records {
		if err := writer.Write(record.Fields()); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Append adds records to the output file at path.
//
// If the file does not exist it is created and the header is written before
// the rows; otherwise the rows are appended without a header. Calling Append
// with no records on a missing file creates a header-only file.
//
// RETURNS:
//   - Whether the file was created by this call.
//   - An error if the file cannot be opened or written.
func Append(path string, records []types.FilteredRecord) (created bool, err error) {
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
	case errors.Is(statErr, fs.ErrNotExist):
		created = true
	default:
		return false, fmt.Errorf("failed to stat output: %w", statErr)
	}

	payload, err := Render(records, created)
	if err != nil {
		return false, fmt.Errorf("failed to encode records: %w", err)
	}

	flags := os.O_WRONLY | os.O_APPEND
	if created {
		flags |= os.O_CREATE | os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return false, fmt.Errorf("failed to open output: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", closeErr)
		}
	}()

	if len(payload) == 0 {
		return created, nil
	}
	if _, err := file.Write(payload); err != nil {
		return created, fmt.Errorf("failed to write output: %w", err)
	}
	return created, nil
}

// Remove deletes the output file. A missing file is not an error.
//
// RETURNS:
//   - Whether a file was removed.
func Remove(path string) (bool, error) {
	err := os.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to remove previous output: %w", err)
	}
}
