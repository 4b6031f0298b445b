package model

import "testing"

func TestWarningString(t *testing.T) {
	tests := []struct {
		w    Warning
		want string
	}{
		{Warning{Source: "csv", Message: "lossy decode"}, "csv: lossy decode"},
		{Warning{Source: "pdf", Page: 3, Message: "bad region"}, "pdf page 3: bad region"},
		{Warning{Source: "pdf", Page: 2, Table: 1, Message: "skipped"}, "pdf page 2 table 1: skipped"},
		{Warning{Source: "word", Table: 4, Message: "ragged rows"}, "word table 4: ragged rows"},
	}

	for _, tt := range tests {
		if got := tt.w.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatWarnings(t *testing.T) {
	if got := FormatWarnings(nil); got != "" {
		t.Errorf("FormatWarnings(nil) = %q, want empty", got)
	}

	got := FormatWarnings([]Warning{
		{Source: "csv", Message: "one"},
		{Source: "pdf", Page: 1, Message: "two"},
	})
	want := "csv: one\npdf page 1: two"
	if got != want {
		t.Errorf("FormatWarnings = %q, want %q", got, want)
	}
}
