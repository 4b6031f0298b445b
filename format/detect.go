// Package format provides file format detection for the docfuse pipeline.
package format

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// Excel indicates a spreadsheet workbook (.xlsx, .xls).
	Excel
	// CSV indicates a delimited text file (.csv).
	CSV
	// Word indicates a word-processor document (.docx, .doc).
	Word
	// PDF indicates a PDF document.
	PDF
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case Excel:
		return "Excel"
	case CSV:
		return "CSV"
	case Word:
		return "Word"
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// Tag returns the envelope metadata tag for the format.
func (f Format) Tag() string {
	switch f {
	case Excel:
		return "excel"
	case CSV:
		return "csv"
	case Word:
		return "word"
	case PDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// Extensions returns every recognized file extension, in presentation order.
func Extensions() []string {
	return []string{".xlsx", ".xls", ".csv", ".docx", ".doc", ".pdf"}
}

// Detect determines file format from the filename extension,
// case-insensitively.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xls":
		return Excel
	case ".csv":
		return CSV
	case ".docx", ".doc":
		return Word
	case ".pdf":
		return PDF
	default:
		return Unknown
	}
}

// UnsupportedError reports a file extension outside the recognized set. Its
// message lists every supported extension.
type UnsupportedError struct {
	Ext string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported file format: %q (supported: %s)",
		e.Ext, strings.Join(Extensions(), ", "))
}

// DetectFromMagic checks leading magic bytes to determine format. ZIP-based
// formats (xlsx, docx) cannot be told apart from magic bytes alone; use
// DetectFromReader for those. Returns Unknown when undecidable.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}
	// PDF magic: %PDF
	if data[0] == '%' && data[1] == 'P' && data[2] == 'D' && data[3] == 'F' {
		return PDF
	}
	return Unknown
}

// IsZIP reports whether the data starts with the ZIP local-file signature
// (PK\x03\x04), the container used by both .xlsx and .docx.
func IsZIP(data []byte) bool {
	return len(data) >= 4 &&
		data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04
}

// DetectFromReader inspects content to determine format. It distinguishes
// the ZIP-based office formats by their archive layout, which is more
// reliable than the extension when files are mislabeled.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 8)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if f := DetectFromMagic(magic); f != Unknown {
		return f, nil
	}
	if IsZIP(magic) {
		return detectZIPFormat(r, size)
	}
	return Unknown, nil
}

// detectZIPFormat inspects a ZIP archive to tell xlsx from docx.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return Word, nil
		case strings.HasPrefix(f.Name, "xl/"):
			return Excel, nil
		}
	}
	return Unknown, nil
}
