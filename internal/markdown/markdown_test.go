package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"paragraph", "hello world", "<p>hello world</p>"},
		{"emphasis", "*hi*", "<em>hi</em>"},
		{"heading gets anchor id", "# Title", `id="title"`},
		{"gfm strikethrough", "~~gone~~", "<del>gone</del>"},
		{"gfm table", "| a | b |\n|---|---|\n| 1 | 2 |", "<table>"},
		{"typographer quotes", `"quoted"`, "&ldquo;quoted&rdquo;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	got, err := ToHTML(`<script>alert("x")</script>`)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML should be escaped, got %q", got)
	}
}

func TestToHTMLHighlightsCode(t *testing.T) {
	got, err := ToHTML("```go\nfunc main() {}\n```")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(got, "<pre") {
		t.Errorf("fenced code block should produce a <pre> element, got %q", got)
	}
}
