package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTable indicates raw table data that could not be shaped into a
// rectangular table (e.g. a row with the wrong number of cells).
var ErrMalformedTable = errors.New("malformed table")

// Table is a rectangular table with named, ordered columns and ordered rows.
// Column names are unique within a table. Every row has exactly one cell per
// column; constructors enforce this, so consumers never see ragged data.
//
// Cells are stored as strings. Typed interpretation (numeric, datetime) is
// left to column-kind inference and the cleaning engine.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable builds a table from a header and data rows. It fails with
// ErrMalformedTable when any row's cell count differs from the column count.
// Duplicate column names are made unique with numeric suffixes.
func NewTable(columns []string, rows [][]string) (*Table, error) {
	cols := dedupeColumns(columns)
	for i, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrMalformedTable, i+1, len(row), len(cols))
		}
	}
	return &Table{Columns: cols, Rows: rows}, nil
}

// FromRecords builds a table from raw records where the first record is the
// header. Short rows are padded with empty cells and rows wider than the
// header extend it with generated names, so the result is always
// rectangular. Used by extractors whose sources are forgiving by nature
// (delimited text, spreadsheets).
func FromRecords(records [][]string) *Table {
	if len(records) == 0 {
		return &Table{}
	}

	header := records[0]
	width := len(header)
	for _, row := range records[1:] {
		if len(row) > width {
			width = len(row)
		}
	}

	cols := make([]string, width)
	copy(cols, header)
	for i := len(header); i < width; i++ {
		cols[i] = fmt.Sprintf("Unnamed_%d", i)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, row := range records[1:] {
		padded := make([]string, width)
		copy(padded, row)
		rows = append(rows, padded)
	}

	return &Table{Columns: dedupeColumns(cols), Rows: rows}
}

// dedupeColumns makes column names unique by suffixing repeats with _2, _3...
func dedupeColumns(columns []string) []string {
	seen := make(map[string]int, len(columns))
	out := make([]string, len(columns))
	for i, name := range columns {
		seen[name]++
		if seen[name] == 1 {
			out[i] = name
			continue
		}
		candidate := fmt.Sprintf("%s_%d", name, seen[name])
		for seen[candidate] > 0 {
			seen[name]++
			candidate = fmt.Sprintf("%s_%d", name, seen[name])
		}
		seen[candidate]++
		out[i] = candidate
	}
	return out
}

// RowCount returns the number of data rows (header excluded).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.Columns)
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ColumnValues returns the cells of one column in row order.
func (t *Table) ColumnValues(idx int) []string {
	vals := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		vals[i] = row[idx]
	}
	return vals
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cols := append([]string(nil), t.Columns...)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
	}
	return &Table{Columns: cols, Rows: rows}
}

// String renders the table as fixed-width plain text, columns right-aligned,
// in the style of a dataframe dump without the index.
func (t *Table) String() string {
	if len(t.Columns) == 0 {
		return ""
	}

	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len([]rune(c))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			pad := widths[i] - len([]rune(cell))
			sb.WriteString(strings.Repeat(" ", pad))
			sb.WriteString(cell)
		}
		sb.WriteString("\n")
	}

	writeRow(t.Columns)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ToCSV converts the table to CSV text, header first.
func (t *Table) ToCSV() string {
	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString(",")
			}
			if strings.ContainsAny(cell, ",\"\n") {
				cell = "\"" + strings.ReplaceAll(cell, "\"", "\"\"") + "\""
			}
			sb.WriteString(cell)
		}
		sb.WriteString("\n")
	}
	writeRow(t.Columns)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return sb.String()
}
