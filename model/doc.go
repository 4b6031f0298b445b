// Package model provides the normalized representation shared by every
// extractor in docfuse.
//
// All parsers, whatever the source format, produce a [Document]: the
// envelope holding file metadata, extracted content (plain text plus zero or
// more tables), and scalar metrics. Downstream consumers (the merge and
// cleaning engines) operate only on these types and never see
// format-specific details.
//
// # Envelope
//
//	doc, warnings, err := docfuse.Parse("report.xlsx")
//	for _, t := range doc.Content.Tables {
//	    fmt.Println(t.ColumnCount(), "columns,", t.RowCount(), "rows")
//	}
//
// # Tables
//
// The [Table] type is strictly rectangular: an ordered list of uniquely named
// columns and an ordered list of rows, each with exactly one cell per column.
// Constructors reject ragged input, so a Table in hand is always well formed.
//
// # Warnings
//
// Non-fatal extraction problems (a malformed table region, a lossy decode)
// are reported as [Warning] values beside the result rather than aborting
// the whole document.
package model
