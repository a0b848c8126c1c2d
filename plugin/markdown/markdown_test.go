package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_RenderHTML(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name     string
		source   string
		contains []string
	}{
		{name: "paragraph", source: "Hello **world**", contains: []string{"<p>Hello <strong>world</strong></p>"}},
		{name: "heading", source: "# Title", contains: []string{`<h1 id="title">Title</h1>`}},
		{name: "fenced code", source: "```go\nfunc main() {}\n```", contains: []string{`<code class="language-go">`, "func main() {}"}},
		{name: "table", source: "| a | b |\n|---|---|\n| 1 | 2 |", contains: []string{"<table>", "<td>1</td>"}},
		{name: "strikethrough", source: "~~old~~", contains: []string{"<del>old</del>"}},
		{name: "task list", source: "- [x] done", contains: []string{`type="checkbox"`}},
		{name: "autolink", source: "see https://example.com", contains: []string{`<a href="https://example.com">`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := r.RenderHTML(tt.source)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, html, want)
			}
		})
	}
}

func TestRenderer_OmitsRawHTML(t *testing.T) {
	html, err := NewRenderer().RenderHTML("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
