// Package markup renders story content to sanitized HTML.
package markup

import (
	"bytes"
	"fmt"
	"go-success-stories/internal/data"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts content of a given markup type to HTML.
type Renderer struct {
	markdown    goldmark.Markdown
	sanitizer   *bluemonday.Policy
	defaultType string
}

// New creates a Renderer. defaultType is used when content has no markup type.
func New(defaultType string) *Renderer {
	if defaultType == "" {
		defaultType = data.MarkupMarkdown
	}
	// UGCPolicy keeps basic formatting like links, lists and emphasis
	// while stripping scripts and event handlers.
	return &Renderer{
		markdown:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer:   bluemonday.UGCPolicy(),
		defaultType: defaultType,
	}
}

// DefaultType returns the markup type assigned to content without one.
func (r *Renderer) DefaultType() string {
	return r.defaultType
}

// Render returns the sanitized HTML form of content.
func (r *Renderer) Render(markupType, content string) (string, error) {
	if markupType == "" {
		markupType = r.defaultType
	}

	var out string
	switch markupType {
	case data.MarkupMarkdown:
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(content), &buf); err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
		out = buf.String()
	case data.MarkupHTML:
		out = content
	case data.MarkupPlain, data.MarkupRestructuredText:
		// reStructuredText is shown as plain text.
		out = plainToHTML(content)
	default:
		return "", fmt.Errorf("unsupported markup type %q", markupType)
	}

	return r.sanitizer.Sanitize(out), nil
}

// plainToHTML escapes text and turns blank-line separated blocks into paragraphs.
func plainToHTML(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var b strings.Builder
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>\n")
	}
	return b.String()
}
