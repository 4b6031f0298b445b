package docx

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTestDOCX creates a minimal DOCX file for testing.
func createTestDOCX(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	docxPath := filepath.Join(tmpDir, "test.docx")

	f, err := os.Create(docxPath)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	zw := zip.NewWriter(f)

	contentTypes := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`
	w, _ := zw.Create("[Content_Types].xml")
	w.Write([]byte(contentTypes))

	rels := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
	w, _ = zw.Create("_rels/.rels")
	w.Write([]byte(rels))

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>` + content + `</w:body>
</w:document>`
	w, _ = zw.Create("word/document.xml")
	w.Write([]byte(document))

	zw.Close()
	f.Close()

	return docxPath
}

func para(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func cell(text string) string {
	return `<w:tc>` + para(text) + `</w:tc>`
}

func TestOpenMissing(t *testing.T) {
	_, err := Open("nonexistent.docx")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestOpenNotADocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.doc")
	if err := os.WriteFile(path, []byte("legacy binary format"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err := Open(path)
	if err == nil {
		t.Error("expected error for a non-ZIP file")
	}
}

func TestText(t *testing.T) {
	path := createTestDOCX(t,
		para("First paragraph.")+
			`<w:p></w:p>`+ // empty, dropped from text
			para("Second paragraph."))

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	text, err := r.Text()
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}

	want := "First paragraph.\nSecond paragraph."
	if text != want {
		t.Errorf("Text = %q, want %q", text, want)
	}
}

func TestTextRunsAndBreaks(t *testing.T) {
	// Tabs and breaks must land where they occur inside the run, not after
	// the run's text.
	path := createTestDOCX(t,
		`<w:p><w:r><w:t>before</w:t><w:tab/><w:t>after</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>first</w:t><w:br/><w:t>second</w:t></w:r></w:p>`)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	text, err := r.Text()
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), text)
	}
	if lines[0] != "before\tafter" {
		t.Errorf("tab placement = %q, want %q", lines[0], "before\tafter")
	}
	if lines[1] != "first" || lines[2] != "second" {
		t.Errorf("break placement = %q", text)
	}
}

func TestTextRunProperties(t *testing.T) {
	// Run property elements contribute no text.
	path := createTestDOCX(t,
		`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r></w:p>`)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	text, err := r.Text()
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if text != "bold" {
		t.Errorf("Text = %q, want bold", text)
	}
}

func TestTables(t *testing.T) {
	// One real table and one single-row table that should be skipped.
	content := `<w:tbl>` +
		`<w:tr>` + cell("name") + cell("age") + `</w:tr>` +
		`<w:tr>` + cell("alice") + cell("30") + `</w:tr>` +
		`<w:tr>` + cell("bob") + cell("25") + `</w:tr>` +
		`</w:tbl>` +
		`<w:tbl>` +
		`<w:tr>` + cell("lonely header") + `</w:tr>` +
		`</w:tbl>`

	path := createTestDOCX(t, content)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	tables, warnings, err := r.Tables()
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table (single-row table skipped), got %d", len(tables))
	}

	tbl := tables[0]
	if tbl.Columns[0] != "name" || tbl.Columns[1] != "age" {
		t.Errorf("header = %v", tbl.Columns)
	}
	if tbl.RowCount() != 2 {
		t.Errorf("RowCount = %d, want 2", tbl.RowCount())
	}
	if tbl.Rows[1][0] != "bob" {
		t.Errorf("cell = %q, want bob", tbl.Rows[1][0])
	}
}

func TestTablesRaggedRows(t *testing.T) {
	// Second data row has one cell too few; the table is skipped with a warning.
	content := `<w:tbl>` +
		`<w:tr>` + cell("a") + cell("b") + `</w:tr>` +
		`<w:tr>` + cell("1") + cell("2") + `</w:tr>` +
		`<w:tr>` + cell("3") + `</w:tr>` +
		`</w:tbl>`

	path := createTestDOCX(t, content)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	tables, warnings, err := r.Tables()
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("expected no tables, got %d", len(tables))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Source != "word" || warnings[0].Table != 1 {
		t.Errorf("warning = %+v", warnings[0])
	}
}

func TestParse(t *testing.T) {
	content := para("Hello world from a document.") +
		para("Another line here.") +
		`<w:tbl>` +
		`<w:tr>` + cell("k") + cell("v") + `</w:tr>` +
		`<w:tr>` + cell("x") + cell("1") + `</w:tr>` +
		`</w:tbl>`

	path := createTestDOCX(t, content)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	doc, _, err := r.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Metadata.Format != "word" {
		t.Errorf("Format = %q, want word", doc.Metadata.Format)
	}
	if doc.Metrics.ParagraphCount != 2 {
		t.Errorf("ParagraphCount = %d, want 2", doc.Metrics.ParagraphCount)
	}
	if doc.Metrics.TableCount != 1 {
		t.Errorf("TableCount = %d, want 1", doc.Metrics.TableCount)
	}
	if doc.Metrics.WordCount != 8 {
		t.Errorf("WordCount = %d, want 8", doc.Metrics.WordCount)
	}
	if doc.Metrics.LineCount != 2 {
		t.Errorf("LineCount = %d, want 2", doc.Metrics.LineCount)
	}
	if len(doc.Content.Tables) != 1 {
		t.Errorf("Tables = %d, want 1", len(doc.Content.Tables))
	}
}

func TestCloseTwice(t *testing.T) {
	path := createTestDOCX(t, para("x"))

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
