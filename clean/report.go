package clean

import (
	"fmt"
	"sort"
	"strings"
)

// Shape is a table's (rows, columns) pair, data rows only.
type Shape struct {
	Rows    int
	Columns int
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Columns)
}

// Report records what a single cleaning pass did to one table. It is built
// up during the pass and never mutated afterwards.
type Report struct {
	OriginalShape Shape
	FinalShape    Shape

	DuplicatesRemoved int
	NullsFilled       map[string]int    // column -> filled count
	ColumnsDropped    []string          // columns over the null threshold
	TypesConverted    map[string]string // column -> "old -> new"
	ColumnsRenamed    map[string]string // old name -> new name, changed only
	OutliersDetected  int
}

func newReport(rows, cols int) *Report {
	return &Report{
		OriginalShape:  Shape{Rows: rows, Columns: cols},
		NullsFilled:    make(map[string]int),
		TypesConverted: make(map[string]string),
		ColumnsRenamed: make(map[string]string),
	}
}

// String renders the report as a fixed-format human-readable block.
func (r *Report) String() string {
	rule := strings.Repeat("=", 60)
	lines := []string{
		rule,
		"Data Cleaning Report",
		rule,
		fmt.Sprintf("Shape: %s -> %s", r.OriginalShape, r.FinalShape),
		"",
	}

	if r.DuplicatesRemoved > 0 {
		lines = append(lines, fmt.Sprintf("Removed %d duplicate rows", r.DuplicatesRemoved))
	}
	if len(r.NullsFilled) > 0 {
		lines = append(lines, fmt.Sprintf("Filled nulls in %d columns:", len(r.NullsFilled)))
		for _, col := range sortedKeys(r.NullsFilled) {
			lines = append(lines, fmt.Sprintf("  - %s: %d values", col, r.NullsFilled[col]))
		}
	}
	if len(r.ColumnsDropped) > 0 {
		lines = append(lines, fmt.Sprintf("Dropped %d columns:", len(r.ColumnsDropped)))
		for _, col := range r.ColumnsDropped {
			lines = append(lines, fmt.Sprintf("  - %s", col))
		}
	}
	if len(r.TypesConverted) > 0 {
		lines = append(lines, fmt.Sprintf("Converted data types in %d columns:", len(r.TypesConverted)))
		for _, col := range sortedKeys(r.TypesConverted) {
			lines = append(lines, fmt.Sprintf("  - %s: %s", col, r.TypesConverted[col]))
		}
	}
	if len(r.ColumnsRenamed) > 0 {
		lines = append(lines, fmt.Sprintf("Renamed %d columns", len(r.ColumnsRenamed)))
	}
	if r.OutliersDetected > 0 {
		lines = append(lines, fmt.Sprintf("Detected %d outliers", r.OutliersDetected))
	}

	lines = append(lines, rule)
	return strings.Join(lines, "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
