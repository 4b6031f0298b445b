package clean

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/tsawler/docfuse/model"
)

// typeThreshold is the fraction of cells that must coerce successfully
// before a column's type is converted.
const typeThreshold = 0.8

// Clean runs the cleaning pipeline over a single table and returns a new
// cleaned table plus a report of everything that was done. The input table
// is never mutated. Steps run in a fixed order (deduplication, null
// handling, name normalization, type inference, outlier detection), each
// independently toggleable through cfg.
func Clean(t *model.Table, cfg Config) (*model.Table, *Report) {
	c := &cleaner{
		table:  t.Clone(),
		cfg:    cfg,
		report: newReport(t.RowCount(), t.ColumnCount()),
	}

	if cfg.RemoveDuplicates {
		c.removeDuplicates()
	}
	if cfg.HandleNulls {
		c.handleNulls()
	}
	if cfg.NormalizeNames {
		c.normalizeNames()
	}
	if cfg.InferTypes {
		c.inferTypes()
	}
	if cfg.DetectOutliers {
		c.detectOutliers()
	}

	c.report.FinalShape = Shape{Rows: c.table.RowCount(), Columns: c.table.ColumnCount()}
	return c.table, c.report
}

type cleaner struct {
	table  *model.Table
	cfg    Config
	report *Report
}

// removeDuplicates drops duplicate rows, keyed by the configured column
// subset (or the whole row), keeping the first or last occurrence.
func (c *cleaner) removeDuplicates() {
	t := c.table

	var keyCols []int
	if len(c.cfg.DuplicateSubset) > 0 {
		for _, name := range c.cfg.DuplicateSubset {
			if idx := t.Column(name); idx >= 0 {
				keyCols = append(keyCols, idx)
			}
		}
	}
	if keyCols == nil {
		keyCols = make([]int, len(t.Columns))
		for i := range t.Columns {
			keyCols[i] = i
		}
	}

	key := func(row []string) string {
		parts := make([]string, len(keyCols))
		for i, idx := range keyCols {
			parts[i] = row[idx]
		}
		return strings.Join(parts, "\x1f")
	}

	keepIdx := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		k := key(row)
		if _, seen := keepIdx[k]; !seen || c.cfg.KeepDuplicate == "last" {
			keepIdx[k] = i
		}
	}

	kept := make([][]string, 0, len(keepIdx))
	for i, row := range t.Rows {
		if keepIdx[key(row)] == i {
			kept = append(kept, row)
		}
	}

	c.report.DuplicatesRemoved = len(t.Rows) - len(kept)
	t.Rows = kept
}

// handleNulls drops columns whose null fraction exceeds the threshold, then
// fills the remaining nulls per the configured strategy. Strategies that do
// not apply to a column's type fall through to the zero/empty fallback for
// that column only.
func (c *cleaner) handleNulls() {
	t := c.table
	if t.RowCount() == 0 {
		return
	}

	// Drop columns over the threshold first.
	var dropped []string
	var keep []int
	for i, col := range t.Columns {
		nulls := 0
		for _, row := range t.Rows {
			if model.IsNull(row[i]) {
				nulls++
			}
		}
		if float64(nulls)/float64(len(t.Rows)) > c.cfg.NullThreshold {
			dropped = append(dropped, col)
		} else {
			keep = append(keep, i)
		}
	}
	if len(dropped) > 0 {
		c.dropColumns(keep)
		c.report.ColumnsDropped = append(c.report.ColumnsDropped, dropped...)
	}

	for i := 0; i < len(t.Columns); i++ {
		c.fillColumn(i)
	}
}

// fillColumn applies the fill strategy to one column.
func (c *cleaner) fillColumn(idx int) {
	t := c.table
	col := t.Columns[idx]

	nullCount := 0
	for _, row := range t.Rows {
		if model.IsNull(row[idx]) {
			nullCount++
		}
	}
	if nullCount == 0 {
		return
	}

	numeric := model.IsNumericKind(model.InferKind(t.ColumnValues(idx)))

	switch {
	case c.cfg.FillStrategy == FillDrop:
		kept := t.Rows[:0:0]
		for _, row := range t.Rows {
			if !model.IsNull(row[idx]) {
				kept = append(kept, row)
			}
		}
		t.Rows = kept

	case c.cfg.FillStrategy == FillMean && numeric:
		c.fillValue(idx, formatFloat(mean(c.numericValues(idx))))

	case c.cfg.FillStrategy == FillMedian && numeric:
		c.fillValue(idx, formatFloat(median(c.numericValues(idx))))

	case c.cfg.FillStrategy == FillMode:
		if mode, ok := c.modeValue(idx); ok {
			c.fillValue(idx, mode)
		} else {
			c.fillDefault(idx, numeric)
		}

	case c.cfg.FillStrategy == FillFFill:
		prev := ""
		havePrev := false
		for _, row := range t.Rows {
			if model.IsNull(row[idx]) {
				if havePrev {
					row[idx] = prev
				}
			} else {
				prev, havePrev = row[idx], true
			}
		}

	case c.cfg.FillStrategy == FillBFill:
		next := ""
		haveNext := false
		for i := len(t.Rows) - 1; i >= 0; i-- {
			if model.IsNull(t.Rows[i][idx]) {
				if haveNext {
					t.Rows[i][idx] = next
				}
			} else {
				next, haveNext = t.Rows[i][idx], true
			}
		}

	default:
		// Also the fallback for type-inapplicable strategies.
		c.fillDefault(idx, numeric)
	}

	c.report.NullsFilled[col] = nullCount
}

func (c *cleaner) fillValue(idx int, value string) {
	for _, row := range c.table.Rows {
		if model.IsNull(row[idx]) {
			row[idx] = value
		}
	}
}

func (c *cleaner) fillDefault(idx int, numeric bool) {
	if numeric {
		c.fillValue(idx, "0")
	} else {
		for _, row := range c.table.Rows {
			if model.IsNull(row[idx]) {
				row[idx] = ""
			}
		}
	}
}

// numericValues returns the parseable non-null values of a column.
func (c *cleaner) numericValues(idx int) []float64 {
	var vals []float64
	for _, row := range c.table.Rows {
		if model.IsNull(row[idx]) {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64); err == nil {
			vals = append(vals, v)
		}
	}
	return vals
}

// modeValue returns the most frequent non-null value, ties broken by first
// appearance.
func (c *cleaner) modeValue(idx int) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, row := range c.table.Rows {
		v := row[idx]
		if model.IsNull(v) {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, bestCount > 0
}

// dropColumns rebuilds the table keeping only the given column indices.
func (c *cleaner) dropColumns(keep []int) {
	t := c.table

	cols := make([]string, len(keep))
	for i, idx := range keep {
		cols[i] = t.Columns[idx]
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]string, len(keep))
		for i, idx := range keep {
			cells[i] = row[idx]
		}
		rows[r] = cells
	}

	t.Columns = cols
	t.Rows = rows
}

var (
	nonAlnumRe   = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// normalizeNames rewrites every column name to its canonical form: special
// characters stripped, whitespace runs collapsed to single underscores,
// lowercased. Only changed names land in the rename map.
func (c *cleaner) normalizeNames() {
	for i, col := range c.table.Columns {
		name := nonAlnumRe.ReplaceAllString(col, "")
		name = whitespaceRe.ReplaceAllString(strings.TrimSpace(name), "_")
		name = strings.ToLower(name)

		if name != col {
			c.report.ColumnsRenamed[col] = name
			c.table.Columns[i] = name
		}
	}
}

// inferTypes attempts numeric then datetime coercion on every text column.
// A conversion is adopted when at least 80% of the column's cells coerce;
// cells that do not coerce become missing.
func (c *cleaner) inferTypes() {
	t := c.table
	if t.RowCount() == 0 {
		return
	}

	for idx, col := range t.Columns {
		if model.InferKind(t.ColumnValues(idx)) != model.KindObject {
			continue
		}

		if c.coerceColumn(idx, isNumericCell) {
			c.report.TypesConverted[col] = "object -> numeric"
			continue
		}
		if c.cfg.ParseDates && c.coerceColumn(idx, normalizeDateCell) {
			c.report.TypesConverted[col] = "object -> datetime"
		}
	}
}

// coerceColumn applies convert to every cell; when at least typeThreshold of
// all cells convert, the conversion is adopted and failing cells are
// blanked. Otherwise the column is left untouched.
func (c *cleaner) coerceColumn(idx int, convert func(string) (string, bool)) bool {
	t := c.table

	converted := make([]string, len(t.Rows))
	ok := 0
	for i, row := range t.Rows {
		if model.IsNull(row[idx]) {
			converted[i] = ""
			continue
		}
		if v, fine := convert(row[idx]); fine {
			converted[i] = v
			ok++
		} else {
			converted[i] = ""
		}
	}

	if float64(ok)/float64(len(t.Rows)) < typeThreshold {
		return false
	}
	for i, row := range t.Rows {
		row[idx] = converted[i]
	}
	return true
}

func isNumericCell(cell string) (string, bool) {
	v := strings.TrimSpace(cell)
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return "", false
	}
	return v, true
}

func normalizeDateCell(cell string) (string, bool) {
	ts, err := dateparse.ParseAny(strings.TrimSpace(cell))
	if err != nil {
		return "", false
	}
	return ts.Format("2006-01-02 15:04:05"), true
}

// detectOutliers flags values outside the 1.5*IQR fences of each numeric
// column and appends a sibling <col>_outlier boolean column for every
// column with at least one flag.
func (c *cleaner) detectOutliers() {
	t := c.table
	if c.cfg.OutlierMethod != "" && c.cfg.OutlierMethod != "iqr" {
		return
	}

	type flagged struct {
		name  string
		flags []bool
	}
	var additions []flagged

	for idx, col := range t.Columns {
		if !model.IsNumericKind(model.InferKind(t.ColumnValues(idx))) {
			continue
		}

		var vals []float64
		for _, row := range t.Rows {
			if model.IsNull(row[idx]) {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64); err == nil {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}

		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		q1 := quantile(sorted, 0.25)
		q3 := quantile(sorted, 0.75)
		iqr := q3 - q1
		lo, hi := q1-1.5*iqr, q3+1.5*iqr

		flags := make([]bool, len(t.Rows))
		count := 0
		for i, row := range t.Rows {
			if model.IsNull(row[idx]) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
			if err != nil {
				continue
			}
			if v < lo || v > hi {
				flags[i] = true
				count++
			}
		}

		if count > 0 {
			additions = append(additions, flagged{name: col + "_outlier", flags: flags})
			c.report.OutliersDetected += count
		}
	}

	for _, add := range additions {
		t.Columns = append(t.Columns, add.name)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], strconv.FormatBool(add.flags[i]))
		}
	}
}

// quantile computes the q-quantile of sorted values with linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
