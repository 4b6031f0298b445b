package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"report.xlsx", Excel},
		{"report.xls", Excel},
		{"data.csv", CSV},
		{"letter.docx", Word},
		{"letter.doc", Word},
		{"manual.pdf", PDF},
		{"REPORT.XLSX", Excel},
		{"Data.Csv", CSV},
		{"archive.tar.csv", CSV},
		{"notes.txt", Unknown},
		{"image.png", Unknown},
		{"noextension", Unknown},
		{"archive.zip", Unknown},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestUnsupportedError(t *testing.T) {
	err := &UnsupportedError{Ext: ".txt"}

	if !strings.Contains(err.Error(), ".txt") {
		t.Errorf("error should name the offending extension: %v", err)
	}

	// The message must enumerate every supported extension.
	for _, ext := range Extensions() {
		if !strings.Contains(err.Error(), ext) {
			t.Errorf("error missing supported extension %q: %v", ext, err)
		}
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		f    Format
		name string
		tag  string
	}{
		{Excel, "Excel", "excel"},
		{CSV, "CSV", "csv"},
		{Word, "Word", "word"},
		{PDF, "PDF", "pdf"},
		{Unknown, "Unknown", "unknown"},
	}

	for _, tt := range tests {
		if got := tt.f.String(); got != tt.name {
			t.Errorf("%d.String() = %q, want %q", tt.f, got, tt.name)
		}
		if got := tt.f.Tag(); got != tt.tag {
			t.Errorf("%d.Tag() = %q, want %q", tt.f, got, tt.tag)
		}
	}
}

func TestDetectFromMagic(t *testing.T) {
	if got := DetectFromMagic([]byte("%PDF-1.7\n...")); got != PDF {
		t.Errorf("DetectFromMagic(pdf header) = %v, want PDF", got)
	}
	if got := DetectFromMagic([]byte("plain text")); got != Unknown {
		t.Errorf("DetectFromMagic(text) = %v, want Unknown", got)
	}
	if got := DetectFromMagic([]byte{0x25}); got != Unknown {
		t.Errorf("DetectFromMagic(truncated) = %v, want Unknown", got)
	}
}

func TestIsZIP(t *testing.T) {
	if !IsZIP([]byte{0x50, 0x4b, 0x03, 0x04, 0x00}) {
		t.Error("expected PK header to be detected as ZIP")
	}
	if IsZIP([]byte("%PDF-1.4")) {
		t.Error("PDF header should not be ZIP")
	}
	if IsZIP([]byte{0x50}) {
		t.Error("truncated header should not be ZIP")
	}
}

func TestDetectFromReader(t *testing.T) {
	data := []byte("%PDF-1.5 content")
	got, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader failed: %v", err)
	}
	if got != PDF {
		t.Errorf("DetectFromReader = %v, want PDF", got)
	}
}
