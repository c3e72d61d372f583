// Package htmlsanitize strips dangerous markup from caller-supplied
// rich text (entity descriptions, email bodies) before it is stored or
// rendered.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// Extra inline formatting beyond the UGC defaults.
	p.AllowElements("u", "s", "sub", "sup", "mark", "hr")

	// Tables with presentation attributes.
	p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption")
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	p.AllowAttrs("class", "style").OnElements("table", "thead", "tbody", "tr", "th", "td")

	return p
}

// Sanitize removes script, event handlers, iframes, forms, and other
// unsafe markup while keeping common formatting, lists, links, images,
// and tables.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return policy.Sanitize(html)
}

// IsPlainText reports whether s carries no HTML tags. A lone < or > is
// still plain text.
func IsPlainText(s string) bool {
	lt := strings.Index(s, "<")
	if lt == -1 {
		return true
	}
	return !strings.Contains(s[lt:], ">")
}

// PlainTextToHTML escapes plain text and wraps it in a paragraph,
// converting newlines to <br>.
func PlainTextToHTML(text string) string {
	if text == "" {
		return ""
	}
	escaped := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(text)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}
