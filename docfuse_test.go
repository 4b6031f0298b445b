package docfuse

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/docfuse/format"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestResolve(t *testing.T) {
	tests := []struct {
		path string
		want format.Format
	}{
		{"data.csv", format.CSV},
		{"book.xlsx", format.Excel},
		{"letter.docx", format.Word},
		{"manual.pdf", format.PDF},
	}

	for _, tt := range tests {
		got, err := Resolve(tt.path)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestResolveUnsupported(t *testing.T) {
	_, err := Resolve("notes.txt")
	if err == nil {
		t.Fatal("expected error for .txt")
	}

	var unsupported *format.UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error is %T, want *format.UnsupportedError", err)
	}
	if unsupported.Ext != ".txt" {
		t.Errorf("Ext = %q, want .txt", unsupported.Ext)
	}

	// The message enumerates every supported extension.
	for _, ext := range SupportedExtensions() {
		if !strings.Contains(err.Error(), ext) {
			t.Errorf("error missing %q: %v", ext, err)
		}
	}
}

func TestCreateMissingFile(t *testing.T) {
	_, err := Create("no/such/file.csv")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("error should wrap ErrFileNotFound, got %v", err)
	}
}

func TestCreateUnsupported(t *testing.T) {
	path := writeFixture(t, "notes.txt", "hello")

	_, err := Create(path)
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}

	var unsupported *format.UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Errorf("error is %T, want *format.UnsupportedError", err)
	}
}

func TestParseCSV(t *testing.T) {
	path := writeFixture(t, "people.csv", "name,age\nalice,30\n")

	doc, warnings, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if doc.Metadata.Format != "csv" {
		t.Errorf("Format = %q, want csv", doc.Metadata.Format)
	}
	if doc.Metadata.Name != "people.csv" {
		t.Errorf("Name = %q, want people.csv", doc.Metadata.Name)
	}
	if len(doc.Content.Tables) != 1 {
		t.Fatalf("Tables = %d, want 1", len(doc.Content.Tables))
	}
	if doc.Content.Tables[0].Rows[0][0] != "alice" {
		t.Errorf("cell = %q, want alice", doc.Content.Tables[0].Rows[0][0])
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("a.csv") || !IsSupported("b.PDF") {
		t.Error("recognized extensions reported unsupported")
	}
	if IsSupported("c.txt") || IsSupported("noext") {
		t.Error("unrecognized extensions reported supported")
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	if len(exts) != 6 {
		t.Fatalf("expected 6 extensions, got %d: %v", len(exts), exts)
	}
	for _, want := range []string{".xlsx", ".xls", ".csv", ".docx", ".doc", ".pdf"} {
		found := false
		for _, ext := range exts {
			if ext == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing extension %q in %v", want, exts)
		}
	}
}
