// Package csvdoc provides delimited-text (CSV) parsing with automatic
// encoding detection.
package csvdoc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/tsawler/docfuse/model"
)

// ErrDecodeFailure indicates the detected encoding could not be applied.
// It is recovered internally by falling back to lossy UTF-8; callers only
// ever see it inside a warning.
var ErrDecodeFailure = errors.New("decode failure")

// sniffLen is how many leading bytes feed the encoding detector.
const sniffLen = 10000

// Reader provides access to a delimited text file as a single table.
type Reader struct {
	path     string
	encoding string // detected charset name, e.g. "UTF-8", "GBK"

	// Decode-once cache: populated on first access, reused afterwards.
	table    *model.Table
	warnings []model.Warning
}

// Open sniffs the file's encoding and returns a Reader. The file content is
// not decoded until first use.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	buf = buf[:n]

	r := &Reader{path: path, encoding: "UTF-8"}
	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil && result.Charset != "" {
		r.encoding = result.Charset
	}
	return r, nil
}

// Close releases resources associated with the Reader. The underlying file
// is only held open during decoding, so Close never fails.
func (r *Reader) Close() error {
	return nil
}

// Encoding returns the charset detected at Open time.
func (r *Reader) Encoding() string {
	return r.encoding
}

// ensureTable decodes and parses the file once, caching the result.
func (r *Reader) ensureTable() (*model.Table, error) {
	if r.table != nil {
		return r.table, nil
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	text, err := r.decode(raw)
	if err != nil {
		// Fall back to UTF-8 with replacement runes rather than failing.
		r.warnings = append(r.warnings, model.Warning{
			Source:  "csv",
			Message: fmt.Sprintf("%v, falling back to UTF-8 with replacement", err),
		})
		text = strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	r.table = model.FromRecords(records)
	return r.table, nil
}

// decode converts raw bytes to UTF-8 text using the detected charset.
func (r *Reader) decode(raw []byte) (string, error) {
	enc, name := charset.Lookup(r.encoding)
	if enc == nil {
		return "", fmt.Errorf("%w: unknown charset %q", ErrDecodeFailure, r.encoding)
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("%w: decoding as %s: %v", ErrDecodeFailure, name, err)
	}
	return string(out), nil
}

// Text returns the file rendered as fixed-width plain text.
func (r *Reader) Text() (string, error) {
	t, err := r.ensureTable()
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// Tables returns exactly one table covering the whole file.
func (r *Reader) Tables() ([]*model.Table, []model.Warning, error) {
	t, err := r.ensureTable()
	if err != nil {
		return nil, r.warnings, err
	}
	return []*model.Table{t}, r.warnings, nil
}

// Metadata returns file-level metadata.
func (r *Reader) Metadata() (model.FileMetadata, error) {
	return model.StatFile(r.path, "csv")
}

// Parse builds the complete envelope for the file.
func (r *Reader) Parse() (*model.Document, []model.Warning, error) {
	t, err := r.ensureTable()
	if err != nil {
		return nil, r.warnings, err
	}

	meta, err := r.Metadata()
	if err != nil {
		return nil, r.warnings, err
	}

	types := model.DataTypes(t)
	numeric, text := 0, 0
	for _, kind := range types {
		if model.IsNumericKind(kind) {
			numeric++
		} else {
			text++
		}
	}

	doc := &model.Document{
		Metadata: meta,
		Content: model.Content{
			Text:   t.String(),
			Tables: []*model.Table{t},
			Structure: model.Structure{
				Columns:  append([]string(nil), t.Columns...),
				RowCount: t.RowCount(),
				Encoding: r.encoding,
			},
		},
		Metrics: model.Metrics{
			RowCount:       t.RowCount(),
			ColumnCount:    t.ColumnCount(),
			DataTypes:      types,
			NumericColumns: numeric,
			TextColumns:    text,
		},
	}
	return doc, r.warnings, nil
}
