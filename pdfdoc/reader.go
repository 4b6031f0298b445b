// Package pdfdoc provides PDF parsing: per-page text extraction and
// heuristic table detection over positioned text fragments.
package pdfdoc

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/docfuse/model"
)

// Reader provides access to PDF document content. It holds the underlying
// file open for its whole lifetime; callers must Close it when done.
type Reader struct {
	path      string
	file      *os.File
	reader    *pdf.Reader
	pageCount int
}

// Open opens a PDF file for reading. A structurally unreadable PDF stream
// fails here, before any extraction is attempted.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	var pr *pdf.Reader
	err = safely(func() error {
		var e error
		pr, e = pdf.NewReader(f, info.Size())
		return e
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	r := &Reader{path: path, file: f, reader: pr}
	_ = safely(func() error {
		r.pageCount = pr.NumPage()
		return nil
	})
	return r, nil
}

// Close releases the underlying file handle. Safe to call twice.
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// PageCount returns the number of pages in the document.
func (r *Reader) PageCount() int {
	return r.pageCount
}

// safely runs fn, converting a library panic on malformed PDF structures
// into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return fn()
}

// Text returns per-page text joined with page banners. Pages yielding no
// text are omitted entirely rather than represented as empty sections.
func (r *Reader) Text() (string, error) {
	var parts []string

	for i := 1; i <= r.pageCount; i++ {
		var pageText string
		err := safely(func() error {
			page := r.reader.Page(i)
			if page.V.IsNull() {
				return nil
			}
			txt, err := page.GetPlainText(nil)
			if err != nil {
				return err
			}
			pageText = strings.TrimSpace(txt)
			return nil
		})
		if err != nil || pageText == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("=== Page %d ===\n%s", i, pageText))
	}

	return strings.Join(parts, "\n\n"), nil
}

// Tables scans every page independently for tabular regions. Malformed
// regions are skipped with a warning; a bad page never aborts the document.
func (r *Reader) Tables() ([]*model.Table, []model.Warning, error) {
	var tables []*model.Table
	var warnings []model.Warning

	for i := 1; i <= r.pageCount; i++ {
		var fragments []pdf.Text
		err := safely(func() error {
			page := r.reader.Page(i)
			if page.V.IsNull() {
				return nil
			}
			fragments = page.Content().Text
			return nil
		})
		if err != nil {
			warnings = append(warnings, model.Warning{
				Source: "pdf", Page: i, Message: err.Error(),
			})
			continue
		}
		if len(fragments) == 0 {
			continue
		}

		pageTables, pageWarnings := tablesFromFragments(fragments, i)
		tables = append(tables, pageTables...)
		warnings = append(warnings, pageWarnings...)
	}

	return tables, warnings, nil
}

// Metadata returns file-level metadata, including the page count.
func (r *Reader) Metadata() (model.FileMetadata, error) {
	meta, err := model.StatFile(r.path, "pdf")
	if err != nil {
		return model.FileMetadata{}, err
	}
	meta.PageCount = r.pageCount
	return meta, nil
}

// Parse builds the complete envelope for the document.
func (r *Reader) Parse() (*model.Document, []model.Warning, error) {
	text, err := r.Text()
	if err != nil {
		return nil, nil, err
	}

	tables, warnings, err := r.Tables()
	if err != nil {
		return nil, warnings, err
	}

	meta, err := r.Metadata()
	if err != nil {
		return nil, warnings, err
	}

	doc := &model.Document{
		Metadata: meta,
		Content: model.Content{
			Text:   text,
			Tables: tables,
			Structure: model.Structure{
				PageCount:  r.pageCount,
				TableCount: len(tables),
			},
		},
		Metrics: model.Metrics{
			PageCount:      r.pageCount,
			WordCount:      len(strings.Fields(text)),
			CharacterCount: utf8.RuneCountInString(text),
			TableCount:     len(tables),
			LineCount:      strings.Count(text, "\n") + 1,
		},
	}
	return doc, warnings, nil
}
