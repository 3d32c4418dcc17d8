// =============================================================================
// whalewatch - Delimited Table Parser
// =============================================================================
//
// This module reads delimited text tables with a single header row. It serves
// two readers:
//   - Transaction exports: tab-separated, read whole (ParseFile)
//   - The accumulated output: comma-separated, read row by row
//     (StreamingParser), so sampling the first rows never loads the file
//
// PARSING RULES:
//   - Input must be valid UTF-8; a leading byte-order mark is dropped
//   - The first non-blank row is the header; blank rows are skipped
//   - Rows shorter than the header get empty values for missing columns
//   - Rows longer than the header are a parse error
//   - Duplicate header names become name, name.1, name.2, ...
//   - Header names and cell values are kept verbatim (no trimming), so a
//     column is only found under its exact name
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// Tab and Comma are the two delimiters the pipeline uses.
const (
	Tab   = '\t'
	Comma = ','
)

var (
	// ErrEmpty is returned when the input holds no header row.
	ErrEmpty = errors.New("file has no header row")

	// ErrInvalidUTF8 is returned when the input is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("file is not valid UTF-8")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Settings contains settings for parsing a table.
type Settings struct {
	// Delimiter separates fields. Default: ','
	Delimiter rune
}

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Row maps header name to cell value.
type Row map[string]string

// Table represents a parsed file.
type Table struct {
	// Headers contains the column headers, de-duplicated.
	Headers []string

	// Rows contains the data rows in file order.
	Rows []Row

	// SourceFile is the path the table was read from, if any.
	SourceFile string
}

// HasColumn reports whether the table has a column named name.
func (t *Table) HasColumn(name string) bool {
	for _, header := range t.Headers {
		if header == name {
			return true
		}
	}
	return false
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads the whole file at filePath into a Table.
//
// The file handle is closed before ParseFile returns, on every path.
func ParseFile(filePath string, settings Settings) (*Table, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	table, err := Parse(data, settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// Parse reads a table from memory.
//
// RETURNS:
//   - The parsed table.
//   - ErrInvalidUTF8, ErrEmpty, or a wrapped csv.ParseError.
func Parse(data []byte, settings Settings) (*Table, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := newReader(bytes.NewReader(data), settings)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	headers := cleanHeaders(header)

	table := &Table{Headers: headers}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		row, err := toRow(headers, record)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// newReader configures a csv.Reader for the settings.
//
// encoding/csv already skips blank lines and accepts quoted fields.
func newReader(r io.Reader, settings Settings) *csv.Reader {
	reader := csv.NewReader(r)

	reader.Comma = settings.Delimiter
	if reader.Comma == 0 {
		reader.Comma = Comma
	}

	// Row width is checked against the header in toRow.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	return reader
}

// cleanHeaders names empty headers after their position and de-duplicates
// repeats. Other names are left exactly as written.
//
// Example:
//   "hash", "", "hash"  ->  "hash", "Column_2", "hash.1"
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	taken := make(map[string]bool, len(headers))
	repeats := make(map[string]int)

	for i, header := range headers {
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}

		name := header
		for taken[name] {
			repeats[header]++
			name = fmt.Sprintf("%s.%d", header, repeats[header])
		}
		taken[name] = true

		cleaned[i] = name
	}

	return cleaned
}

// toRow converts a record to a Row keyed by header.
func toRow(headers, record []string) (Row, error) {
	if len(record) > len(headers) {
		return nil, fmt.Errorf("expected %d fields, saw %d", len(headers), len(record))
	}

	row := make(Row, len(headers))
	for i, header := range headers {
		if i < len(record) {
			row[header] = record[i]
		} else {
			row[header] = ""
		}
	}
	return row, nil
}

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser reads a table one row at a time.
//
// USAGE:
//   parser, err := NewStreamingParser(filePath, settings)
//   if err != nil {
//       return err
//   }
//   defer parser.Close()
//
//   for parser.Next() {
//       row := parser.Row()
//       // Process the row...
//   }
//
//   if err := parser.Err(); err != nil {
//       return err
//   }
type StreamingParser struct {
	file       *os.File
	reader     *csv.Reader
	headers    []string
	currentRow Row
	rowNumber  int
	err        error
}

// NewStreamingParser opens filePath and reads its header row.
//
// The caller must Close the parser. Unlike Parse, the stream is not checked
// for UTF-8 validity up front.
func NewStreamingParser(filePath string, settings Settings) (*StreamingParser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	buffered := bufio.NewReader(file)
	if prefix, err := buffered.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = buffered.Discard(len(utf8BOM))
	}

	parser := &StreamingParser{
		file:   file,
		reader: newReader(buffered, settings),
	}

	header, err := parser.reader.Read()
	if err != nil {
		file.Close()
		if err == io.EOF {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	parser.headers = cleanHeaders(header)
	parser.rowNumber = 1

	return parser, nil
}

// Next advances to the next row. Returns false when there are no more rows
// or a row could not be read.
func (p *StreamingParser) Next() bool {
	if p.err != nil {
		return false
	}

	record, err := p.reader.Read()
	if err == io.EOF {
		return false
	}
	if err != nil {
		p.err = fmt.Errorf("error reading row %d: %w", p.rowNumber+1, err)
		return false
	}
	p.rowNumber++

	row, err := toRow(p.headers, record)
	if err != nil {
		p.err = fmt.Errorf("row %d: %w", p.rowNumber, err)
		return false
	}
	p.currentRow = row
	return true
}

// Row returns the current row.
func (p *StreamingParser) Row() Row {
	return p.currentRow
}

// Headers returns the parsed headers.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// RowNumber returns the number of records read so far, header included.
func (p *StreamingParser) RowNumber() int {
	return p.rowNumber
}

// Err returns any error that occurred during parsing.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file.
func (p *StreamingParser) Close() error {
	return p.file.Close()
}
