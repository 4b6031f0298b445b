package model

import (
	"strconv"
	"strings"
)

// Column dtype tags, pandas-style so downstream consumers see familiar names.
const (
	KindInt    = "int64"
	KindFloat  = "float64"
	KindBool   = "bool"
	KindObject = "object"
)

// IsNull reports whether a cell should be treated as missing. Empty and the
// usual NA spellings count.
func IsNull(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "n/a", "nan", "null", "none":
		return true
	}
	return false
}

// InferKind returns the dtype tag for a column of cells. Null cells are
// ignored; a column of nothing but nulls is tagged object.
func InferKind(cells []string) string {
	allInt, allFloat, allBool := true, true, true
	seen := false

	for _, cell := range cells {
		if IsNull(cell) {
			continue
		}
		seen = true
		v := strings.TrimSpace(cell)

		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			switch strings.ToLower(v) {
			case "true", "false":
			default:
				allBool = false
			}
		}
		if !allInt && !allFloat && !allBool {
			return KindObject
		}
	}

	switch {
	case !seen:
		return KindObject
	case allInt:
		return KindInt
	case allFloat:
		return KindFloat
	case allBool:
		return KindBool
	default:
		return KindObject
	}
}

// IsNumericKind reports whether a dtype tag is numeric.
func IsNumericKind(kind string) bool {
	return kind == KindInt || kind == KindFloat
}

// DataTypes infers the dtype tag of every column in a table.
func DataTypes(t *Table) map[string]string {
	types := make(map[string]string, len(t.Columns))
	for i, col := range t.Columns {
		types[col] = InferKind(t.ColumnValues(i))
	}
	return types
}
