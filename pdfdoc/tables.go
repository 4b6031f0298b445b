package pdfdoc

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/docfuse/model"
)

// Grouping tolerances, in PDF points. Fragments within yTolerance of each
// other vertically belong to one visual line; a horizontal gap wider than
// cellGap starts a new cell.
const (
	yTolerance = 2.0
	cellGap    = 10.0
)

// line is one visual line of cells, each cell with its starting X position.
type line struct {
	y     float64
	cells []string
}

// groupLines clusters positioned fragments into visual lines and splits each
// line into cells on horizontal gaps. Lines come back in reading order (top
// of page first).
func groupLines(fragments []pdf.Text) []line {
	if len(fragments) == 0 {
		return nil
	}

	sorted := append([]pdf.Text(nil), fragments...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y // PDF origin is bottom-left
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []line
	var current []pdf.Text
	currentY := sorted[0].Y

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, line{y: currentY, cells: splitCells(current)})
		}
		current = current[:0]
	}

	for _, frag := range sorted {
		if currentY-frag.Y > yTolerance {
			flush()
			currentY = frag.Y
		}
		current = append(current, frag)
	}
	flush()

	return lines
}

// splitCells merges fragments of one line into cells, starting a new cell
// wherever the horizontal gap exceeds cellGap. Fragments are assumed sorted
// by X.
func splitCells(fragments []pdf.Text) []string {
	sort.Slice(fragments, func(i, j int) bool { return fragments[i].X < fragments[j].X })

	var cells []string
	var sb strings.Builder
	endX := 0.0

	for i, frag := range fragments {
		if i > 0 {
			gap := frag.X - endX
			if gap > cellGap {
				cells = append(cells, strings.TrimSpace(sb.String()))
				sb.Reset()
			} else if gap > 1.0 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(frag.S)
		if right := frag.X + frag.W; right > endX {
			endX = right
		}
	}
	if sb.Len() > 0 {
		cells = append(cells, strings.TrimSpace(sb.String()))
	}

	return cells
}

// tablesFromFragments finds tabular regions on one page: contiguous runs of
// lines with at least two cells. A region keeps only rows with at least one
// non-empty cell and must retain a header plus one data row; anything that
// still cannot be shaped is dropped with a warning.
func tablesFromFragments(fragments []pdf.Text, pageNum int) ([]*model.Table, []model.Warning) {
	lines := groupLines(fragments)

	var tables []*model.Table
	var warnings []model.Warning
	var region [][]string
	tableIdx := 0

	finish := func() {
		if len(region) >= 2 {
			tableIdx++
			if t, ok := buildTable(region); ok {
				tables = append(tables, t)
			} else {
				warnings = append(warnings, model.Warning{
					Source:  "pdf",
					Page:    pageNum,
					Table:   tableIdx,
					Message: "table region could not be shaped, skipped",
				})
			}
		}
		region = nil
	}

	for _, ln := range lines {
		if len(ln.cells) >= 2 {
			region = append(region, ln.cells)
		} else {
			finish()
		}
	}
	finish()

	return tables, warnings
}

// buildTable shapes a raw region into a rectangular table: rows padded to
// the widest row, first row as header, blank rows dropped.
func buildTable(region [][]string) (*model.Table, bool) {
	width := 0
	for _, row := range region {
		if len(row) > width {
			width = len(row)
		}
	}
	if width < 2 {
		return nil, false
	}

	padded := make([][]string, 0, len(region))
	for _, row := range region {
		cells := make([]string, width)
		copy(cells, row)
		padded = append(padded, cells)
	}

	header := padded[0]
	var rows [][]string
	for _, row := range padded[1:] {
		for _, cell := range row {
			if cell != "" {
				rows = append(rows, row)
				break
			}
		}
	}
	if len(rows) == 0 {
		return nil, false
	}

	t, err := model.NewTable(header, rows)
	if err != nil {
		return nil, false
	}
	return t, true
}
