// Package table reads, annotates and writes bill-of-materials component tables.
// A table is a header row plus data rows of string cells, loaded from CSV or from
// the first sheet of an XLSX workbook.
package table

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the on-disk format of a table.
type Kind string

const (
	KindCSV  Kind = "csv"
	KindXLSX Kind = "xlsx"
)

// ErrUnsupportedFormat is returned for files that are neither .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing column")

// Table is an in-memory component table.
type Table struct {
	Header []string
	Rows   [][]string

	Source string // path the table was read from, if any
	Kind   Kind
	Sheet  string // worksheet name for XLSX tables
}

// KindOf returns the table kind for a file path based on its extension.
func KindOf(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return KindCSV, nil
	case ".xlsx":
		return KindXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s (expected .csv or .xlsx)", ErrUnsupportedFormat, path)
	}
}

// Read loads a table from a .csv or .xlsx file.
func Read(path string) (*Table, error) {
	kind, err := KindOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	var t *Table
	switch kind {
	case KindCSV:
		t, err = ReadCSV(f)
	case KindXLSX:
		t, err = ReadXLSX(f)
	}
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}

	t.Source = path
	return t, nil
}

// OutputPath returns the default output path for an annotated copy of src:
// "bom.xlsx" -> "bom_updated.xlsx".
func OutputPath(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + "_updated" + ext
}

// Index returns the column index of name, or of the first alias present.
// Header names are compared after trimming, exact match first, then case-insensitively.
// Returns -1 when no column matches.
func (t *Table) Index(name string, aliases ...string) int {
	candidates := append([]string{name}, aliases...)

	for _, c := range candidates {
		for i, h := range t.Header {
			if strings.TrimSpace(h) == c {
				return i
			}
		}
	}
	for _, c := range candidates {
		for i, h := range t.Header {
			if strings.EqualFold(strings.TrimSpace(h), c) {
				return i
			}
		}
	}
	return -1
}

// EnsureColumn returns the index of name (or an alias), appending a new column
// called name when none exists.
func (t *Table) EnsureColumn(name string, aliases ...string) int {
	if idx := t.Index(name, aliases...); idx != -1 {
		return idx
	}
	t.Header = append(t.Header, name)
	return len(t.Header) - 1
}

// Cell returns the value at row, col; missing cells read as "".
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Set writes value at row, col, padding the row with empty cells as needed.
func (t *Table) Set(row, col int, value string) {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return
	}
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = value
}

// Column returns every value of column col in row order.
func (t *Table) Column(col int) []string {
	values := make([]string, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Cell(i, col)
	}
	return values
}

// Width returns the number of columns of the widest row or the header.
func (t *Table) Width() int {
	width := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
