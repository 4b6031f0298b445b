package model

import (
	"fmt"
	"strings"
)

// Warning describes a non-fatal problem encountered during extraction, such
// as a table region that could not be shaped or a lossy text decode.
// Extraction continues past warnings; they are returned beside the result.
type Warning struct {
	Source  string // extractor tag, e.g. "pdf", "word", "csv"
	Page    int    // 1-indexed page, 0 when not applicable
	Table   int    // 1-indexed table within the page/document, 0 when not applicable
	Message string
}

func (w Warning) String() string {
	var sb strings.Builder
	sb.WriteString(w.Source)
	if w.Page > 0 {
		fmt.Fprintf(&sb, " page %d", w.Page)
	}
	if w.Table > 0 {
		fmt.Fprintf(&sb, " table %d", w.Table)
	}
	sb.WriteString(": ")
	sb.WriteString(w.Message)
	return sb.String()
}

// FormatWarnings renders warnings one per line for logging.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
