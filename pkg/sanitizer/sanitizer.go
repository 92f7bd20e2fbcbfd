// Package sanitizer cleans user-supplied text and HTML.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plainPolicy   = sync.OnceValue(bluemonday.StrictPolicy)
	articlePolicy = sync.OnceValue(func() *bluemonday.Policy {
		p := bluemonday.NewPolicy()
		p.AllowStandardURLs()
		p.AllowElements(
			"p", "br", "hr",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"strong", "b", "em", "i", "del",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
			"table", "thead", "tbody", "tr", "th", "td",
		)
		p.AllowAttrs("href", "title").OnElements("a")
		p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		return p
	})
)

// Text strips every tag from s, unescapes entities and trims whitespace.
// Titles and category names go through it before validation.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy().Sanitize(s)))
}

// ArticleHTML keeps the formatting subset rendered article bodies use and
// drops scripts, styles, event handlers and unsafe URLs.
func ArticleHTML(s string) string {
	return articlePolicy().Sanitize(s)
}
