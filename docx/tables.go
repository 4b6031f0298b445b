package docx

import (
	"strings"

	"github.com/tsawler/docfuse/model"
)

// Tables extracts every embedded table in document order. The first row of
// each table becomes the header. Tables with fewer than 2 raw rows are
// silently skipped; tables whose rows cannot be shaped into a rectangle
// (e.g. merged cells producing uneven rows) are skipped with a warning.
func (r *Reader) Tables() ([]*model.Table, []model.Warning, error) {
	if r.document == nil || r.document.Body == nil {
		return nil, nil, nil
	}

	var tables []*model.Table
	var warnings []model.Warning

	for idx, tbl := range r.document.Body.Tables {
		data := make([][]string, 0, len(tbl.Rows))
		for _, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, strings.TrimSpace(cellText(cell)))
			}
			data = append(data, cells)
		}

		// Header plus at least one data row, or it isn't a table worth keeping.
		if len(data) < 2 {
			continue
		}

		t, err := model.NewTable(data[0], data[1:])
		if err != nil {
			warnings = append(warnings, model.Warning{
				Source:  "word",
				Table:   idx + 1,
				Message: err.Error(),
			})
			continue
		}
		tables = append(tables, t)
	}

	return tables, warnings, nil
}

// cellText joins a cell's paragraphs with newlines.
func cellText(cell tableCellXML) string {
	parts := make([]string, 0, len(cell.Paragraphs))
	for _, p := range cell.Paragraphs {
		parts = append(parts, paragraphText(p))
	}
	return strings.Join(parts, "\n")
}
