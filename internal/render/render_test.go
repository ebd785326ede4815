package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		src      string
		contains []string
		excludes []string
	}{
		{
			name:     "paragraph and emphasis",
			src:      "hello *world*",
			contains: []string{"<p>hello <em>world</em></p>"},
		},
		{
			name:     "script stripped",
			src:      "before\n\n<script>alert(1)</script>\n\nafter",
			contains: []string{"before", "after"},
			excludes: []string{"<script", "alert(1)"},
		},
		{
			name:     "external link hardened",
			src:      "[site](https://example.com)",
			contains: []string{`href="https://example.com"`, "noreferrer", `target="_blank"`},
		},
		{
			name:     "javascript link removed",
			src:      "[x](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "event handler removed",
			src:      `<img src="https://example.com/a.png" onerror="alert(1)">`,
			excludes: []string{"onerror"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(r.Markdown(tt.src))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}

func TestMarkdown_Blank(t *testing.T) {
	assert.Empty(t, string(New().Markdown("  \n ")))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short text", Excerpt("short   text", 50))
	assert.Equal(t, "bold words", Excerpt("<b>bold</b> words", 50))
	assert.Equal(t, "abc...", Excerpt("abcdef", 3))
	assert.Equal(t, "fish & chips", Excerpt("fish &amp; chips", 50))
	assert.Equal(t, "héll...", Excerpt("héllo wörld", 4))

	long := strings.Repeat("word ", 100)
	assert.Equal(t, strings.TrimSpace(long), Excerpt(long, 0))
}
