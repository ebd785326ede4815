// Package render turns user and backend supplied text into safe HTML for templates.
//
// Post content and news details are treated as markdown. The generated HTML is
// passed through an allow-list policy before it reaches a template, so raw HTML
// embedded in the source never survives unchecked.
package render

import (
	"bytes"
	"html"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "del", "h2", "h3", "h4",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AllowAttrs("src", "alt").OnElements("img")

	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: p,
	}
}

// renders markdown source to sanitized HTML
func (r *Renderer) Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}

	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// returns at most n runes of the plain text of src, with an ellipsis when cut
func Excerpt(src string, n int) string {
	text := strings.Join(strings.Fields(html.UnescapeString(bluemonday.StrictPolicy().Sanitize(src))), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "..."
}

// template helpers for use with template.FuncMap
func (r *Renderer) Funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": r.Markdown,
		"excerpt":  Excerpt,
	}
}
