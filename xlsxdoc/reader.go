// Package xlsxdoc provides spreadsheet workbook parsing. Every sheet in the
// workbook becomes one table.
package xlsxdoc

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/docfuse/model"
)

// Reader provides access to a spreadsheet workbook.
type Reader struct {
	path string
	file *excelize.File

	// Load-once cache: sheet tables in workbook order.
	names  []string
	tables []*model.Table
	loaded bool
}

// Open opens a workbook for reading. Legacy binary .xls files are not ZIP
// containers and fail here, before any extraction is attempted.
func Open(path string) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	return &Reader{path: path, file: f}, nil
}

// Close releases the open workbook.
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// ensureSheets loads every sheet as a table, once.
func (r *Reader) ensureSheets() error {
	if r.loaded {
		return nil
	}
	if r.file == nil {
		return fmt.Errorf("workbook is closed")
	}

	for _, name := range r.file.GetSheetList() {
		rows, err := r.file.GetRows(name)
		if err != nil {
			return fmt.Errorf("reading sheet %q: %w", name, err)
		}
		r.names = append(r.names, name)
		r.tables = append(r.tables, model.FromRecords(rows))
	}
	r.loaded = true
	return nil
}

// SheetNames returns the workbook's sheet names in order.
func (r *Reader) SheetNames() ([]string, error) {
	if err := r.ensureSheets(); err != nil {
		return nil, err
	}
	return r.names, nil
}

// Text renders every sheet under a "=== name ===" banner.
func (r *Reader) Text() (string, error) {
	if err := r.ensureSheets(); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(r.tables))
	for i, t := range r.tables {
		parts = append(parts, fmt.Sprintf("=== %s ===\n%s", r.names[i], t.String()))
	}
	return strings.Join(parts, "\n\n"), nil
}

// Tables returns one table per sheet, in workbook order.
func (r *Reader) Tables() ([]*model.Table, []model.Warning, error) {
	if err := r.ensureSheets(); err != nil {
		return nil, nil, err
	}
	return r.tables, nil, nil
}

// Metadata returns file-level metadata.
func (r *Reader) Metadata() (model.FileMetadata, error) {
	return model.StatFile(r.path, "excel")
}

// Parse builds the complete envelope for the workbook.
//
// Note the historical asymmetry, kept for downstream compatibility:
// Metrics.RowCount and ColumnCount describe only the first sheet (the
// "primary" one), and Content.Text renders only the first sheet, while
// Content.Tables holds every sheet.
func (r *Reader) Parse() (*model.Document, []model.Warning, error) {
	if err := r.ensureSheets(); err != nil {
		return nil, nil, err
	}

	meta, err := r.Metadata()
	if err != nil {
		return nil, nil, err
	}

	var first *model.Table
	text := ""
	if len(r.tables) > 0 {
		first = r.tables[0]
		text = first.String()
	}

	rows, cols := 0, 0
	if first != nil {
		rows, cols = first.RowCount(), first.ColumnCount()
	}

	doc := &model.Document{
		Metadata: meta,
		Content: model.Content{
			Text:   text,
			Tables: r.tables,
			Structure: model.Structure{
				SheetNames: append([]string(nil), r.names...),
				SheetCount: len(r.tables),
			},
		},
		Metrics: model.Metrics{
			SheetCount:  len(r.tables),
			RowCount:    rows,
			ColumnCount: cols,
			TotalCells:  rows * cols,
		},
	}
	return doc, nil, nil
}
