// Package docfuse parses heterogeneous document formats (spreadsheets,
// delimited text, word-processor documents, PDFs) into a common envelope of
// metadata, content, and metrics, ready for cleaning and merging.
//
// Basic usage:
//
//	doc, warnings, err := docfuse.Parse("report.pdf")
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", model.FormatWarnings(warnings))
//	}
//	fmt.Println(len(doc.Content.Tables), "tables extracted")
//
// For more control, Create returns the format-specific extractor; the caller
// then owns its lifecycle:
//
//	ex, err := docfuse.Create("report.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer ex.Close()
//	tables, warnings, err := ex.Tables()
package docfuse

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tsawler/docfuse/csvdoc"
	"github.com/tsawler/docfuse/docx"
	"github.com/tsawler/docfuse/format"
	"github.com/tsawler/docfuse/model"
	"github.com/tsawler/docfuse/pdfdoc"
	"github.com/tsawler/docfuse/xlsxdoc"
)

// ErrFileNotFound indicates the input path does not exist.
var ErrFileNotFound = errors.New("file not found")

// Extractor is the capability set every format-specific reader satisfies.
// Text, Tables, and Metadata may be called in any order and any number of
// times; readers cache decoded content internally. Parse assembles the full
// envelope from all three. Close releases the underlying file handle and is
// safe to call more than once.
type Extractor interface {
	// Text returns the concatenated plain-text representation of the document.
	Text() (string, error)
	// Tables returns every extracted table in document order, plus warnings
	// for table regions that were skipped.
	Tables() ([]*model.Table, []model.Warning, error)
	// Parse returns the complete envelope: metadata, content, and metrics.
	// It either succeeds fully or returns the triggering error.
	Parse() (*model.Document, []model.Warning, error)
	// Metadata returns file-level metadata. The filesystem is re-statted on
	// every call.
	Metadata() (model.FileMetadata, error)
	// Close releases resources held by the extractor.
	Close() error
}

// Resolve maps a path's extension to its parser format. Unknown extensions
// fail with a *format.UnsupportedError listing the recognized set.
func Resolve(path string) (format.Format, error) {
	f := format.Detect(path)
	if f == format.Unknown {
		return format.Unknown, &format.UnsupportedError{Ext: extOf(path)}
	}
	return f, nil
}

// Create verifies that path exists, resolves its format, and constructs the
// matching extractor. Construction-time failures (e.g. a corrupt workbook)
// pass through unmodified. The caller owns the returned extractor and must
// close it. Nothing is cached between calls.
func Create(path string) (Extractor, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := Resolve(path)
	if err != nil {
		return nil, err
	}

	switch f {
	case format.Excel:
		return xlsxdoc.Open(path)
	case format.CSV:
		return csvdoc.Open(path)
	case format.Word:
		return docx.Open(path)
	case format.PDF:
		return pdfdoc.Open(path)
	default:
		return nil, &format.UnsupportedError{Ext: extOf(path)}
	}
}

// Parse is the single-call entry point: create the extractor for path, build
// the envelope, and release the extractor. The underlying file handle is
// closed before Parse returns, on success and failure alike.
func Parse(path string) (*model.Document, []model.Warning, error) {
	ex, err := Create(path)
	if err != nil {
		return nil, nil, err
	}
	defer ex.Close()

	return ex.Parse()
}

// IsSupported reports whether path has a recognized extension.
func IsSupported(path string) bool {
	return format.Detect(path) != format.Unknown
}

// SupportedExtensions returns every recognized file extension.
func SupportedExtensions() []string {
	return format.Extensions()
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return path[i:]
		case '/', '\\':
			return ""
		}
	}
	return ""
}
