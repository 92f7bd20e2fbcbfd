// Package markdown renders article bodies to sanitized HTML.
package markdown

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/dmitrymomot/inkwell/pkg/sanitizer"
)

var ErrRender = errors.New("markdown: render failed")

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with GitHub-flavoured extensions. Raw HTML in
// the source is escaped, and the output is sanitized again before return.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// HTML renders src.
func (r *Renderer) HTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.Join(ErrRender, err)
	}
	return sanitizer.ArticleHTML(buf.String()), nil
}

// Excerpt returns up to n runes of the body's plain text, cut at a word
// boundary when possible and suffixed with an ellipsis when shortened.
func (r *Renderer) Excerpt(src string, n int) (string, error) {
	html, err := r.HTML(src)
	if err != nil {
		return "", err
	}

	text := strings.Join(strings.Fields(sanitizer.Text(html)), " ")
	if utf8.RuneCountInString(text) <= n {
		return text, nil
	}

	cut := string([]rune(text)[:n])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…", nil
}
