package model

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Document is the envelope produced by every extractor. It is treated as
// immutable once returned from Parse.
type Document struct {
	Metadata FileMetadata
	Content  Content
	Metrics  Metrics
}

// FileMetadata describes the source file of an envelope.
type FileMetadata struct {
	Name       string    // base file name
	Path       string    // absolute path
	Format     string    // format tag: "excel", "csv", "word", "pdf"
	SizeBytes  int64
	SizeMB     float64   // rounded to 2 decimals
	ModifiedAt time.Time // filesystem mtime
	ParsedAt   time.Time // when the envelope was built
	PageCount  int       // PDF only, 0 otherwise
}

// Content holds the extracted content of a document.
type Content struct {
	Text      string
	Tables    []*Table
	Structure Structure
}

// Structure summarizes the shape of the source document. Only the fields
// that apply to the source format are populated.
type Structure struct {
	SheetNames     []string // spreadsheet
	SheetCount     int      // spreadsheet
	PageCount      int      // pdf
	ParagraphCount int      // word
	TableCount     int      // word, pdf
	Columns        []string // delimited text
	RowCount       int      // delimited text
	Encoding       string   // delimited text
}

// Metrics holds scalar statistics derived from content. Only the fields that
// apply to the source format are populated.
type Metrics struct {
	RowCount       int
	ColumnCount    int
	WordCount      int
	CharacterCount int
	LineCount      int
	SheetCount     int
	PageCount      int
	TableCount     int
	ParagraphCount int
	TotalCells     int
	DataTypes      map[string]string // column name -> dtype tag
	NumericColumns int
	TextColumns    int
}

// StatFile builds FileMetadata for path with the given format tag. It stats
// the filesystem on every call; nothing is cached.
func StatFile(path, formatTag string) (FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("stat %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	sizeMB := math.Round(float64(info.Size())/(1024*1024)*100) / 100

	return FileMetadata{
		Name:       filepath.Base(path),
		Path:       abs,
		Format:     formatTag,
		SizeBytes:  info.Size(),
		SizeMB:     sizeMB,
		ModifiedAt: info.ModTime(),
		ParsedAt:   time.Now(),
	}, nil
}
