package web

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// markdownRenderer turns generated documents into HTML safe to embed in the
// generator preview.
type markdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newMarkdownRenderer() *markdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	policy := bluemonday.UGCPolicy()
	// GFM task lists render as disabled checkboxes.
	policy.AllowAttrs("type", "checked", "disabled").OnElements("input")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	// Links leave the page so the unsaved document stays in the form.
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &markdownRenderer{md: md, policy: policy}
}

func (r *markdownRenderer) render(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return r.policy.Sanitize(src)
	}
	return r.policy.Sanitize(buf.String())
}

var preview = newMarkdownRenderer()

// RenderMarkdown converts generated markdown to sanitized HTML for the
// preview pane. Returns empty string for empty input.
func RenderMarkdown(src string) string {
	return preview.render(src)
}
