// Package sanitize strips markup from user-provided text before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes HTML tags, decodes entities and strips again so encoded
// tags do not survive.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = html.UnescapeString(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes multi-line free text such as event descriptions. Line
// breaks are kept.
func Text(s string) string {
	return StripHTML(s)
}

// Line sanitizes single-line values such as names and locations: markup is
// stripped and any run of whitespace becomes one space.
func Line(s string) string {
	return strings.Join(strings.Fields(StripHTML(s)), " ")
}
