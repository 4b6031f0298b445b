// Package docx provides DOCX (Office Open XML) word-processor document
// parsing: paragraph text plus embedded tables.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/docfuse/model"
)

// Reader provides access to DOCX document content.
type Reader struct {
	path       string
	zipReader  *zip.ReadCloser
	document   *documentXML
	paragraphs []string // every paragraph, empty ones included
}

// Open opens a DOCX file for reading. Legacy binary .doc files are not ZIP
// containers and fail here. The archive stays open until Close.
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	r := &Reader{
		path:      filename,
		zipReader: zr,
	}

	if err := r.validate(); err != nil {
		zr.Close()
		return nil, err
	}

	if err := r.parseDocument(); err != nil {
		zr.Close()
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	return r, nil
}

// Close releases resources associated with the Reader. Safe to call twice.
func (r *Reader) Close() error {
	if r.zipReader != nil {
		err := r.zipReader.Close()
		r.zipReader = nil
		return err
	}
	return nil
}

// validate checks that required DOCX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"word/document.xml",
	}

	fileMap := make(map[string]bool)
	for _, f := range r.zipReader.File {
		fileMap[f.Name] = true
	}

	for _, name := range required {
		if !fileMap[name] {
			return fmt.Errorf("missing required file: %s", name)
		}
	}

	return nil
}

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// parseDocument parses the main document content.
func (r *Reader) parseDocument() error {
	data, err := r.getFileContent("word/document.xml")
	if err != nil {
		return err
	}

	r.document = &documentXML{}
	if err := xml.Unmarshal(data, r.document); err != nil {
		return fmt.Errorf("unmarshaling document.xml: %w", err)
	}

	if r.document.Body != nil {
		r.paragraphs = make([]string, 0, len(r.document.Body.Paragraphs))
		for _, p := range r.document.Body.Paragraphs {
			r.paragraphs = append(r.paragraphs, paragraphText(p))
		}
	}

	return nil
}

// paragraphText extracts the text of a single paragraph, walking each run's
// children in document order.
func paragraphText(p paragraphXML) string {
	var sb strings.Builder
	for _, run := range p.Runs {
		for _, el := range run.Elements {
			switch el.XMLName.Local {
			case "t":
				sb.WriteString(el.Value)
			case "tab":
				sb.WriteString("\t")
			case "br":
				if el.Type == "page" {
					sb.WriteString("\n\n")
				} else {
					sb.WriteString("\n")
				}
			}
		}
	}
	return sb.String()
}

// Text returns all non-empty paragraphs joined with newlines. Empty
// paragraphs are dropped, not preserved as blank lines.
func (r *Reader) Text() (string, error) {
	if r.document == nil {
		return "", fmt.Errorf("document not parsed")
	}

	parts := make([]string, 0, len(r.paragraphs))
	for _, p := range r.paragraphs {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// Metadata returns file-level metadata.
func (r *Reader) Metadata() (model.FileMetadata, error) {
	return model.StatFile(r.path, "word")
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

	rawTables := 0
	if r.document.Body != nil {
		rawTables = len(r.document.Body.Tables)
	}

	doc := &model.Document{
		Metadata: meta,
		Content: model.Content{
			Text:   text,
			Tables: tables,
			Structure: model.Structure{
				ParagraphCount: len(r.paragraphs),
				TableCount:     rawTables,
			},
		},
		Metrics: model.Metrics{
			WordCount:      len(strings.Fields(text)),
			CharacterCount: utf8.RuneCountInString(text),
			ParagraphCount: len(r.paragraphs),
			TableCount:     rawTables,
			LineCount:      strings.Count(text, "\n") + 1,
		},
	}
	return doc, warnings, nil
}
