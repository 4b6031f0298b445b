// Package merge provides the merge engine: it accumulates parsed envelopes
// from many source documents and writes them into a single spreadsheet
// workbook, one worksheet per table plus a generated summary sheet.
package merge

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/docfuse"
	"github.com/tsawler/docfuse/clean"
	"github.com/tsawler/docfuse/model"
)

// maxSheetName is the workbook format's sheet-name length limit.
const maxSheetName = 31

// summarySheet is the name of the generated summary worksheet. It is
// reserved before any data sheet is named, so a source file with the same
// stem gets a suffixed sheet instead of colliding with it.
const summarySheet = "Summary"

// Merger accumulates envelopes and merges them into one workbook. It owns
// the list of envelopes it has parsed and is the sole writer of the output
// file. A Merger is meant for one merge; it is not safe for concurrent use.
type Merger struct {
	sources []*model.Document
	paths   []string

	autoClean bool
	cleanCfg  clean.Config
	log       *slog.Logger
}

// Option configures a Merger.
type Option func(*Merger)

// WithAutoClean runs the cleaning engine over every table before writing it.
func WithAutoClean(cfg clean.Config) Option {
	return func(m *Merger) {
		m.autoClean = true
		m.cleanCfg = cfg
	}
}

// WithLogger sets the logger used for progress and per-file failures.
func WithLogger(log *slog.Logger) Option {
	return func(m *Merger) {
		m.log = log
	}
}

// New creates an empty Merger.
func New(opts ...Option) *Merger {
	m := &Merger{
		cleanCfg: clean.DefaultConfig(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddFile parses one file and appends its envelope to the merge queue.
// Failures (unsupported format, corrupt file) are logged and reported as
// false; they never abort a batch.
func (m *Merger) AddFile(path string) bool {
	doc, warnings, err := docfuse.Parse(path)
	if err != nil {
		m.log.Warn("skipping file", "path", path, "error", err)
		return false
	}
	if len(warnings) > 0 {
		m.log.Warn("parsed with warnings", "path", path,
			"warnings", model.FormatWarnings(warnings))
	}

	m.sources = append(m.sources, doc)
	m.paths = append(m.paths, path)
	m.log.Info("added file", "path", path, "tables", len(doc.Content.Tables))
	return true
}

// AddFiles adds every path in order and returns how many succeeded. The
// caller decides whether partial success is acceptable.
func (m *Merger) AddFiles(paths []string) int {
	success := 0
	for _, path := range paths {
		if m.AddFile(path) {
			success++
		}
	}
	return success
}

// SourceCount returns the number of envelopes queued so far.
func (m *Merger) SourceCount() int {
	return len(m.sources)
}

// MergeToExcel writes every accumulated table into a single workbook at
// outputPath, one worksheet per table, then appends a summary sheet.
// Returns false without creating the file when nothing was added, and
// false on any write failure.
func (m *Merger) MergeToExcel(outputPath string) bool {
	if len(m.sources) == 0 {
		m.log.Error("no files to merge")
		return false
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			m.log.Error("creating output directory", "dir", dir, "error", err)
			return false
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetCount := 0
	used := map[string]bool{summarySheet: true}

	for i, doc := range m.sources {
		stem := fileStem(m.paths[i])
		tables := doc.Content.Tables

		for ti, t := range tables {
			if m.autoClean {
				cleaned, report := clean.Clean(t, m.cleanCfg)
				m.log.Info("cleaned table", "source", stem, "table", ti+1,
					"shape", report.FinalShape.String())
				t = cleaned
			}

			name := dedupeSheetName(sheetName(stem, ti+1, len(tables)), used)
			if err := writeSheet(f, name, t); err != nil {
				m.log.Error("writing sheet", "sheet", name, "error", err)
				return false
			}
			used[name] = true
			sheetCount++
			m.log.Info("wrote sheet", "sheet", name,
				"rows", t.RowCount(), "columns", t.ColumnCount())
		}
	}

	if err := m.writeSummary(f, sheetCount); err != nil {
		m.log.Error("writing summary sheet", "error", err)
		return false
	}

	// Drop the workbook's default sheet unless a data sheet claimed the name.
	if !used["Sheet1"] {
		_ = f.DeleteSheet("Sheet1")
	}

	if err := f.SaveAs(outputPath); err != nil {
		m.log.Error("saving workbook", "path", outputPath, "error", err)
		return false
	}

	m.log.Info("merge complete", "path", outputPath,
		"sheets", sheetCount, "files", len(m.sources))
	return true
}

// fileStem returns the base name without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sheetName builds the worksheet name for one table: the file stem alone
// when the file contributed a single table, suffixed _T<n> otherwise.
func sheetName(stem string, tableNum, tableCount int) string {
	if tableCount > 1 {
		return fmt.Sprintf("%s_T%d", stem, tableNum)
	}
	return stem
}

// dedupeSheetName truncates name to the sheet-name limit and makes it unique
// against already-claimed names with a numeric suffix. Sources with the same
// stem (a.csv and a.xlsx) must land on distinct sheets; the workbook library
// would otherwise hand back the existing sheet and interleave both tables.
func dedupeSheetName(name string, used map[string]bool) string {
	out := truncateSheetName(name, maxSheetName)
	for n := 2; used[out]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		out = truncateSheetName(name, maxSheetName-len(suffix)) + suffix
	}
	return out
}

func truncateSheetName(name string, limit int) string {
	if runes := []rune(name); len(runes) > limit {
		return string(runes[:limit])
	}
	return name
}

// writeSheet writes one table to a new worksheet, header first, numeric and
// boolean columns written as typed cells.
func writeSheet(f *excelize.File, name string, t *model.Table) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	header := make([]any, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	kinds := make([]string, len(t.Columns))
	for i := range t.Columns {
		kinds[i] = model.InferKind(t.ColumnValues(i))
	}

	for r, row := range t.Rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = typedCell(kinds[i], cell)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, axis, &cells); err != nil {
			return err
		}
	}

	return nil
}

// typedCell converts a cell to the native type of its column where possible.
func typedCell(kind, cell string) any {
	if model.IsNull(cell) {
		return cell
	}
	v := strings.TrimSpace(cell)
	switch kind {
	case model.KindInt:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case model.KindFloat:
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			return x
		}
	case model.KindBool:
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	return cell
}

// writeSummary appends the synthetic Summary sheet: one row per source file
// plus trailing aggregate rows and the merge timestamp.
func (m *Merger) writeSummary(f *excelize.File, totalSheets int) error {
	const sheet = summarySheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Source File", "Format", "Tables", "Total Rows", "File Size (MB)", "Status"},
	}

	grandTotalRows := 0
	for _, doc := range m.sources {
		totalRows := 0
		for _, t := range doc.Content.Tables {
			totalRows += t.RowCount()
		}
		grandTotalRows += totalRows

		rows = append(rows, []any{
			doc.Metadata.Name,
			strings.ToUpper(doc.Metadata.Format),
			len(doc.Content.Tables),
			totalRows,
			doc.Metadata.SizeMB,
			"merged",
		})
	}

	rows = append(rows,
		[]any{"--- MERGE INFO ---", "", "", "", "", ""},
		[]any{"Total Files Merged", len(m.sources), totalSheets, grandTotalRows, "", ""},
		[]any{"Merge Timestamp", time.Now().Format("2006-01-02 15:04:05"), "", "", "", ""},
	)

	for r, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return err
		}
	}

	return nil
}
